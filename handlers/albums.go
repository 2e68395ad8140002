// fotohub/handlers/albums.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fotohub/config"
	"fotohub/models"
)

// HandleListAlbums returns the current user's albums.
func HandleListAlbums(w http.ResponseWriter, r *http.Request, app App) {
	actor := ActorFromContext(r.Context())

	albums, err := app.DB().ListAlbumsByUser(actor.ID)
	if err != nil {
		app.Logger().Error("Failed to list albums", "user_id", actor.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"albums": albums}, app)
}

// HandleCreateAlbum creates an empty album for the current user.
func HandleCreateAlbum(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleCreateAlbum")
	actor := ActorFromContext(r.Context())

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Album title is required."}, app)
		return
	}
	if len(title) > config.MaxTitleLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Album title is too long."}, app)
		return
	}

	id, err := app.DB().CreateAlbum(title, actor.ID)
	if err != nil {
		logger.Error("Failed to create album", "user_id", actor.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create album."}, app)
		return
	}

	logger.Info("Album created", "album_id", id, "user_id", actor.ID)
	respondJSON(w, http.StatusCreated, models.Album{ID: id, Title: title, UserID: actor.ID}, app)
}

// HandleAlbumImages lists the images in one album. Only the owner and
// staff can open an album; albums collect private images too.
func HandleAlbumImages(w http.ResponseWriter, r *http.Request, app App) {
	actor := ActorFromContext(r.Context())

	albumID, err := strconv.ParseInt(chi.URLParam(r, "albumID"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid album id."}, app)
		return
	}
	album, err := app.DB().GetAlbum(albumID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Album")
		return
	}
	if album.UserID != actor.ID && !actor.IsStaff() {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "You do not have access to this album."}, app)
		return
	}

	images, err := app.DB().ListImagesByAlbum(albumID)
	if err != nil {
		app.Logger().Error("Failed to list album images", "album_id", albumID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"album":  album,
		"images": imageViews(images),
	}, app)
}

// HandleDeleteAlbum removes an album and every image in it, files included.
func HandleDeleteAlbum(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleDeleteAlbum")
	actor := ActorFromContext(r.Context())

	albumID, err := strconv.ParseInt(chi.URLParam(r, "albumID"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid album id."}, app)
		return
	}
	album, err := app.DB().GetAlbum(albumID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Album")
		return
	}
	if album.UserID != actor.ID && !actor.IsStaff() {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "You cannot delete this album."}, app)
		return
	}

	if err := app.DB().DeleteAlbum(albumID, app.Storage()); err != nil {
		logger.Error("Failed to delete album", "album_id", albumID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete album."}, app)
		return
	}

	logger.Info("Album deleted", "album_id", albumID, "user_id", actor.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "Album deleted."}, app)
}
