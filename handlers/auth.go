// fotohub/handlers/auth.go
package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"fotohub/config"
	"fotohub/utils"
)

func setSessionCookie(w http.ResponseWriter, token string, app App) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(app.SessionTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleRegister creates an account, emails a welcome message and opens a session.
func HandleRegister(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleRegister")

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password are required."}, app)
		return
	}
	if len(username) > config.MaxUsernameLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Username is too long."}, app)
		return
	}
	if len(password) < config.MinPasswordLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Password is too short."}, app)
		return
	}

	taken, err := app.DB().UsernameTaken(username)
	if err != nil {
		logger.Error("Failed to check username", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	if taken {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Username is already taken."}, app)
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create account."}, app)
		return
	}

	userID, err := app.DB().CreateUser(username, email, hash)
	if err != nil {
		logger.Error("Failed to create user", "username", username, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create account."}, app)
		return
	}

	// Welcome mail is best-effort and must not block registration.
	if email != "" {
		go func() {
			body := fmt.Sprintf("Hi %s,\n\nWelcome to FotoHub! Your account is ready.\n", username)
			if err := app.Mailer().Send("Welcome to FotoHub", body, app.FromAddress(), []string{email}); err != nil {
				app.Logger().Error("Failed to send welcome email", "user_id", userID, "error", err)
			}
		}()
	}

	token, err := utils.NewSessionToken(app.SessionSecret(), userID, app.SessionTTL())
	if err != nil {
		logger.Error("Failed to issue session token", "user_id", userID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to open session."}, app)
		return
	}
	setSessionCookie(w, token, app)

	logger.Info("User registered", "user_id", userID, "username", username)
	respondJSON(w, http.StatusCreated, map[string]interface{}{"id": userID, "username": username}, app)
}

// HandleLogin verifies credentials and opens a session.
func HandleLogin(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleLogin")

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password are required."}, app)
		return
	}

	userID, hash, err := app.DB().GetCredentials(username)
	if err == sql.ErrNoRows {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password."}, app)
		return
	}
	if err != nil {
		logger.Error("Failed to load credentials", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	if !utils.CheckPassword(hash, password) {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password."}, app)
		return
	}

	token, err := utils.NewSessionToken(app.SessionSecret(), userID, app.SessionTTL())
	if err != nil {
		logger.Error("Failed to issue session token", "user_id", userID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to open session."}, app)
		return
	}
	setSessionCookie(w, token, app)

	logger.Info("User logged in", "user_id", userID, "username", username)
	respondJSON(w, http.StatusOK, map[string]interface{}{"id": userID, "username": username}, app)
}

// HandleLogout drops the session cookie.
func HandleLogout(w http.ResponseWriter, r *http.Request, app App) {
	clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "Logged out."}, app)
}

// HandleProfile returns the current account with its usage counters.
func HandleProfile(w http.ResponseWriter, r *http.Request, app App) {
	actor := ActorFromContext(r.Context())

	user, err := app.DB().GetUserByID(actor.ID)
	if err != nil {
		notFoundOrError(w, r, app, err, "User")
		return
	}
	albums, images, favorites, err := app.DB().UserStats(actor.ID)
	if err != nil {
		app.Logger().Error("Failed to load user stats", "user_id", actor.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":      newUserView(user),
		"albums":    albums,
		"images":    images,
		"favorites": favorites,
	}, app)
}

// HandleEditProfile updates username, email and display name.
func HandleEditProfile(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleEditProfile")
	actor := ActorFromContext(r.Context())

	user, err := app.DB().GetUserByID(actor.ID)
	if err != nil {
		notFoundOrError(w, r, app, err, "User")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		username = user.Username
	}
	if len(username) > config.MaxUsernameLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Username is too long."}, app)
		return
	}
	if username != user.Username {
		taken, err := app.DB().UsernameTaken(username)
		if err != nil {
			logger.Error("Failed to check username", "error", err)
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
			return
		}
		if taken {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Username is already taken."}, app)
			return
		}
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		email = user.Email
	}
	first := strings.TrimSpace(r.FormValue("first_name"))
	last := strings.TrimSpace(r.FormValue("last_name"))

	if err := app.DB().UpdateUserProfile(actor.ID, username, email, first, last); err != nil {
		logger.Error("Failed to update profile", "user_id", actor.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update profile."}, app)
		return
	}

	logger.Info("Profile updated", "user_id", actor.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "Profile updated."}, app)
}
