package models

import (
	"database/sql"
	"testing"
)

func owned(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

func TestCanView(t *testing.T) {
	owner := Actor{ID: 1, Authenticated: true}
	stranger := Actor{ID: 2, Authenticated: true}
	mod := Actor{ID: 3, Authenticated: true, Moderator: true}
	super := Actor{ID: 4, Authenticated: true, Superuser: true}

	public := &Image{ID: 10, UserID: owned(1)}
	private := &Image{ID: 11, UserID: owned(1), IsPrivate: true}
	orphanPrivate := &Image{ID: 12, IsPrivate: true}

	cases := []struct {
		name  string
		actor Actor
		img   *Image
		want  bool
	}{
		{"anonymous sees public", Anonymous, public, true},
		{"anonymous never sees private", Anonymous, private, false},
		{"owner sees own private", owner, private, true},
		{"stranger blocked from private", stranger, private, false},
		{"moderator sees private", mod, private, true},
		{"superuser sees private", super, private, true},
		{"stranger sees public", stranger, public, true},
		{"owner id never matches null owner", owner, orphanPrivate, false},
		{"staff sees ownerless private", mod, orphanPrivate, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanView(tc.actor, tc.img); got != tc.want {
				t.Errorf("CanView() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanModify(t *testing.T) {
	owner := Actor{ID: 1, Authenticated: true}
	stranger := Actor{ID: 2, Authenticated: true}
	mod := Actor{ID: 3, Authenticated: true, Moderator: true}

	cases := []struct {
		name    string
		actor   Actor
		ownerID sql.NullInt64
		want    bool
	}{
		{"owner may modify", owner, owned(1), true},
		{"stranger may not", stranger, owned(1), false},
		{"staff may modify anything", mod, owned(1), true},
		{"anonymous may never modify", Anonymous, owned(1), false},
		{"guest content is staff-only", owner, sql.NullInt64{}, false},
		{"staff modifies guest content", mod, sql.NullInt64{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanModify(tc.actor, tc.ownerID); got != tc.want {
				t.Errorf("CanModify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("Expected %q to be valid", c)
		}
	}
	if ValidCategory("spaceships") {
		t.Error("Expected unknown category to be invalid")
	}
	if ValidCategory("") {
		t.Error("Expected empty category to be invalid")
	}
}
