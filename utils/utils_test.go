package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  IMG_2024-01.JPG  ", "img-2024-01-jpg"},
		{"---", ""},
		{"über café", "über-café"},
		{"already-slugged", "already-slugged"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitleFromFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Sunset Beach.jpg", "sunset-beach"},
		{"/tmp/dir/IMG_001.PNG", "img-001"},
		{"noext", "noext"},
	}
	for _, tc := range cases {
		if got := TitleFromFilename(tc.in); got != tc.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := NewSessionToken("secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}
	userID, err := ParseSessionToken("secret", token)
	if err != nil {
		t.Fatalf("ParseSessionToken failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("Expected user 42, got %d", userID)
	}

	if _, err := ParseSessionToken("wrong-secret", token); err == nil {
		t.Error("Expected token signed with another secret to be rejected")
	}
	if _, err := ParseSessionToken("secret", "garbage"); err == nil {
		t.Error("Expected garbage token to be rejected")
	}
}

func TestExpiredSessionToken(t *testing.T) {
	token, err := NewSessionToken("secret", 7, -time.Minute)
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}
	if _, err := ParseSessionToken("secret", token); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "hunter2hunter2") {
		t.Error("Expected correct password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("Expected wrong password to fail")
	}
}

func TestFetchURL(t *testing.T) {
	payload := strings.Repeat("x", 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photo.jpg":
			w.Write([]byte(payload))
		case "/missing.jpg":
			http.NotFound(w, r)
		case "/empty.jpg":
			// 200 with no body
		}
	}))
	defer server.Close()

	data, filename, err := FetchURL(context.Background(), server.URL+"/photo.jpg", 4096, 5*time.Second)
	if err != nil {
		t.Fatalf("FetchURL failed: %v", err)
	}
	if len(data) != len(payload) {
		t.Errorf("Expected %d bytes, got %d", len(payload), len(data))
	}
	if filename != "photo.jpg" {
		t.Errorf("Expected filename photo.jpg, got %q", filename)
	}

	if _, _, err := FetchURL(context.Background(), server.URL+"/missing.jpg", 4096, 5*time.Second); err == nil {
		t.Error("Expected error for 404 response")
	}
	if _, _, err := FetchURL(context.Background(), server.URL+"/empty.jpg", 4096, 5*time.Second); err == nil {
		t.Error("Expected error for empty body")
	}
	if _, _, err := FetchURL(context.Background(), server.URL+"/photo.jpg", 512, 5*time.Second); err == nil {
		t.Error("Expected error when the body exceeds the byte cap")
	}
	if _, _, err := FetchURL(context.Background(), "ftp://example.com/a.jpg", 4096, 5*time.Second); err == nil {
		t.Error("Expected error for non-http scheme")
	}
}
