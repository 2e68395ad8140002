package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"fotohub/config"
)

func sessionCookieFrom(rec interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == config.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterOpensSession(t *testing.T) {
	app := setupTestApp(t)

	form := url.Values{
		"username": {"alice"},
		"email":    {"alice@test.local"},
		"password": {"a-long-password"},
	}
	rec := doRequest(app, http.MethodPost, "/api/auth/register",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookieFrom(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("Expected a session cookie on registration")
	}

	profile := doRequest(app, http.MethodGet, "/api/profile", nil, "", cookie)
	if profile.Code != http.StatusOK {
		t.Fatalf("Expected 200 from profile, got %d", profile.Code)
	}
	var result struct {
		User userView `json:"user"`
	}
	decodeBody(t, profile, &result)
	if result.User.Username != "alice" {
		t.Errorf("Expected username alice, got %q", result.User.Username)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	app := setupTestApp(t)
	createTestUser(t, app, "alice")

	form := url.Values{"username": {"alice"}, "password": {"another-password"}}
	rec := doRequest(app, http.MethodPost, "/api/auth/register",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate username, got %d", rec.Code)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	app := setupTestApp(t)

	form := url.Values{"username": {"bob"}, "password": {"short"}}
	rec := doRequest(app, http.MethodPost, "/api/auth/register",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for short password, got %d", rec.Code)
	}
	if n := countRows(t, app, "SELECT COUNT(*) FROM users"); n != 0 {
		t.Errorf("Expected no user rows, got %d", n)
	}
}

func TestLoginAndLogout(t *testing.T) {
	app := setupTestApp(t)
	createTestUser(t, app, "alice")

	form := url.Values{"username": {"alice"}, "password": {"test-password-123"}}
	rec := doRequest(app, http.MethodPost, "/api/auth/login",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cookie := sessionCookieFrom(rec); cookie == nil || cookie.Value == "" {
		t.Fatal("Expected a session cookie on login")
	}

	wrong := url.Values{"username": {"alice"}, "password": {"wrong"}}
	rec = doRequest(app, http.MethodPost, "/api/auth/login",
		strings.NewReader(wrong.Encode()), "application/x-www-form-urlencoded", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad password, got %d", rec.Code)
	}

	rec = doRequest(app, http.MethodPost, "/api/auth/logout", nil, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if cookie := sessionCookieFrom(rec); cookie == nil || cookie.MaxAge != -1 {
		t.Error("Expected logout to expire the session cookie")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	app := setupTestApp(t)

	form := url.Values{"username": {"ghost"}, "password": {"whatever"}}
	rec := doRequest(app, http.MethodPost, "/api/auth/login",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown user, got %d", rec.Code)
	}
}

func TestEditProfile(t *testing.T) {
	app := setupTestApp(t)
	userID, cookie := createTestUser(t, app, "alice")
	createTestUser(t, app, "bob")

	form := url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Adams"},
	}
	rec := doRequest(app, http.MethodPost, "/api/profile",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, err := app.db.GetUserByID(userID)
	if err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if user.FirstName != "Alice" || user.LastName != "Adams" {
		t.Errorf("Name not updated: %q %q", user.FirstName, user.LastName)
	}
	if user.Username != "alice" {
		t.Errorf("Username changed unexpectedly: %q", user.Username)
	}

	// taking another account's username is rejected
	form = url.Values{"username": {"bob"}}
	rec = doRequest(app, http.MethodPost, "/api/profile",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for taken username, got %d", rec.Code)
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	app := setupTestApp(t)

	if rec := doRequest(app, http.MethodGet, "/api/profile", nil, "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}

	bad := &http.Cookie{Name: config.SessionCookieName, Value: "not-a-token"}
	if rec := doRequest(app, http.MethodGet, "/api/profile", nil, "", bad); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for garbage token, got %d", rec.Code)
	}
}
