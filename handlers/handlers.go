// fotohub/handlers/handlers.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"fotohub/database"
	"fotohub/models"
)

// App is an interface that defines the dependencies our handlers need.
type App interface {
	DB() *database.DatabaseService
	Logger() *slog.Logger
	Storage() models.StorageService
	Mailer() models.Mailer
	RateLimiter() *models.RateLimiter
	UploadDir() string
	SessionSecret() string
	SessionTTL() time.Duration
	FetchTimeout() time.Duration
	FromAddress() string
}

// respondJSON sends a JSON response with a given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}, app App) {
	response, err := json.Marshal(payload)
	if err != nil {
		app.Logger().Error("Failed to marshal JSON payload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte(`{"error":"Failed to marshal JSON response"}`)); werr != nil {
			app.Logger().Error("Failed to write internal server error response", "error", werr)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		app.Logger().Error("Failed to write JSON response", "error", err)
	}
}

// MakeHandler adapts an app-aware handler function to http.HandlerFunc.
func MakeHandler(app App, fn func(http.ResponseWriter, *http.Request, App)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, app)
	}
}

// pageParam parses the "page" query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return page
}

// totalPages computes the page count for a listing.
func totalPages(total, pageSize int) int {
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// imageView is the JSON shape of an image in listings and detail responses.
type imageView struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	FilePath   string    `json:"file_path"`
	Format     string    `json:"format"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
	UserID     *int64    `json:"user_id"`
	AlbumID    *int64    `json:"album_id"`
	IsPrivate  bool      `json:"is_private"`
	Category   string    `json:"category"`
}

func newImageView(img *models.Image) imageView {
	v := imageView{
		ID:         img.ID,
		Title:      img.Title,
		FilePath:   img.FilePath,
		Format:     img.Format,
		Width:      img.Width,
		Height:     img.Height,
		SizeBytes:  img.SizeBytes,
		UploadedAt: img.UploadedAt,
		IsPrivate:  img.IsPrivate,
	}
	if img.UserID.Valid {
		v.UserID = &img.UserID.Int64
	}
	if img.AlbumID.Valid {
		v.AlbumID = &img.AlbumID.Int64
	}
	if img.Category.Valid {
		v.Category = img.Category.String
	}
	return v
}

func imageViews(images []models.Image) []imageView {
	views := make([]imageView, 0, len(images))
	for i := range images {
		views = append(views, newImageView(&images[i]))
	}
	return views
}

// userView is the JSON shape of an account in admin listings and profiles.
type userView struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsSuperuser bool      `json:"is_superuser"`
	IsModerator bool      `json:"is_moderator"`
	JoinedAt    time.Time `json:"joined_at"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsSuperuser: u.IsSuperuser,
		IsModerator: u.IsModerator,
		JoinedAt:    u.JoinedAt,
	}
}

// notFoundOrError translates store lookup failures at the handler boundary.
func notFoundOrError(w http.ResponseWriter, r *http.Request, app App, err error, what string) {
	if err == sql.ErrNoRows {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found."}, app)
		return
	}
	app.Logger().Error("Database error", "path", r.URL.Path, "error", err)
	respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
}
