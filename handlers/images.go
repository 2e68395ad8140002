// fotohub/handlers/images.go
package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // webp decode support

	"fotohub/config"
	"fotohub/database"
	"fotohub/models"
	"fotohub/utils"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type processedImage struct {
	Path      string
	Name      string
	Format    string
	Width     int
	Height    int
	SizeBytes int64
}

// processAndStoreImage validates raw upload bytes, normalizes the encoding
// and writes the result to storage. PNG stays PNG to keep transparency;
// everything else is re-encoded as JPEG. Re-encoding also strips any
// malicious payload hiding behind an image MIME type.
func processAndStoreImage(data []byte, app App) (*processedImage, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	if len(data) > config.MaxFileSize {
		return nil, fmt.Errorf("file exceeds the %dMB limit", config.MaxFileSize/(1024*1024))
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("unsupported file type %q", contentType)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	format := "jpeg"
	ext := ".jpg"
	outType := "image/jpeg"
	if contentType == "image/png" {
		format = "png"
		ext = ".png"
		outType = "image/png"
	}

	var buf bytes.Buffer
	if format == "png" {
		err = imaging.Encode(&buf, src, imaging.PNG)
	} else {
		err = imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(config.JPEGQuality))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	name := uuid.New().String() + ext
	path, err := app.Storage().SaveFile(name, buf.Bytes(), outType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	bounds := src.Bounds()
	return &processedImage{
		Path:      path,
		Name:      name,
		Format:    format,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		SizeBytes: int64(buf.Len()),
	}, nil
}

// resizeStoredImage re-renders an image at the exact requested dimensions,
// overwriting the stored file in place. Nothing is persisted to the
// database here; the caller commits the new dimensions afterwards.
func resizeStoredImage(app App, img *models.Image, width, height int) (int64, error) {
	data, err := app.Storage().OpenFile(img.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open stored file: %w", err)
	}
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to decode stored file: %w", err)
	}

	resized := imaging.Resize(src, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	outType := "image/jpeg"
	if img.Format == "png" {
		outType = "image/png"
		err = imaging.Encode(&buf, resized, imaging.PNG)
	} else {
		err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(config.JPEGQuality))
	}
	if err != nil {
		return 0, fmt.Errorf("failed to encode resized image: %w", err)
	}

	if _, err := app.Storage().SaveFile(img.FileName, buf.Bytes(), outType); err != nil {
		return 0, fmt.Errorf("failed to store resized image: %w", err)
	}
	return int64(buf.Len()), nil
}

func imageIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "imageID"), 10, 64)
}

func parseBoolField(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// resolveAlbum validates an optional album_id form value against the actor.
func resolveAlbum(r *http.Request, actor models.Actor, app App) (sql.NullInt64, error) {
	raw := strings.TrimSpace(r.FormValue("album_id"))
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	albumID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sql.NullInt64{}, errors.New("invalid album id")
	}
	owned, err := app.DB().AlbumOwnedBy(albumID, actor.ID)
	if err != nil {
		return sql.NullInt64{}, err
	}
	if !owned {
		return sql.NullInt64{}, errors.New("album not found")
	}
	return sql.NullInt64{Int64: albumID, Valid: true}, nil
}

func resolveCategory(r *http.Request) (sql.NullString, error) {
	category := strings.TrimSpace(r.FormValue("category"))
	if category == "" {
		return sql.NullString{}, nil
	}
	if !models.ValidCategory(category) {
		return sql.NullString{}, fmt.Errorf("unknown category %q", category)
	}
	return sql.NullString{String: category, Valid: true}, nil
}

// HandleRecentImages lists public images, newest first, with an optional
// category filter.
func HandleRecentImages(w http.ResponseWriter, r *http.Request, app App) {
	category := r.URL.Query().Get("category")
	if category != "" && !models.ValidCategory(category) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown category."}, app)
		return
	}
	page := pageParam(r)

	images, total, err := app.DB().ListRecentImages(category, page, config.ImagePageSize)
	if err != nil {
		app.Logger().Error("Failed to list recent images", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"images":      imageViews(images),
		"page":        page,
		"total":       total,
		"total_pages": totalPages(total, config.ImagePageSize),
		"categories":  models.Categories,
	}, app)
}

// HandleMyImages lists the current user's images, private ones included.
func HandleMyImages(w http.ResponseWriter, r *http.Request, app App) {
	actor := ActorFromContext(r.Context())
	category := r.URL.Query().Get("category")
	if category != "" && !models.ValidCategory(category) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown category."}, app)
		return
	}
	page := pageParam(r)

	images, total, err := app.DB().ListImagesByUser(actor.ID, category, page, config.ImagePageSize)
	if err != nil {
		app.Logger().Error("Failed to list user images", "user_id", actor.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	categories, err := app.DB().UserCategories(actor.ID)
	if err != nil {
		app.Logger().Error("Failed to list user categories", "user_id", actor.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"images":      imageViews(images),
		"page":        page,
		"total":       total,
		"total_pages": totalPages(total, config.ImagePageSize),
		"categories":  categories,
	}, app)
}

// HandleMyFavorites lists images the current user has favorited.
func HandleMyFavorites(w http.ResponseWriter, r *http.Request, app App) {
	actor := ActorFromContext(r.Context())

	images, err := app.DB().ListFavoriteImages(actor.ID)
	if err != nil {
		app.Logger().Error("Failed to list favorites", "user_id", actor.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"images": imageViews(images)}, app)
}

// HandleImageBatch returns the given images in one response, typically to
// confirm a bulk upload. Images the caller may not view are omitted.
func HandleImageBatch(w http.ResponseWriter, r *http.Request, app App) {
	actor := ActorFromContext(r.Context())

	var ids []int64
	for _, part := range strings.Split(r.URL.Query().Get("ids"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid image id list."}, app)
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "No image ids given."}, app)
		return
	}

	images, err := app.DB().ListImagesByIDs(ids)
	if err != nil {
		app.Logger().Error("Failed to load image batch", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}

	visible := make([]models.Image, 0, len(images))
	for i := range images {
		if models.CanView(actor, &images[i]) {
			visible = append(visible, images[i])
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"images": imageViews(visible)}, app)
}

// readUploadSource extracts the raw bytes for an upload, either from the
// attached file or by fetching the given URL. Exactly one source must be
// provided.
func readUploadSource(r *http.Request, app App) ([]byte, string, error) {
	file, header, fileErr := r.FormFile("image")
	rawURL := strings.TrimSpace(r.FormValue("url"))

	hasFile := fileErr == nil
	if hasFile {
		defer file.Close()
	}
	if hasFile == (rawURL != "") {
		return nil, "", errors.New("provide exactly one of an image file or a source URL")
	}

	if hasFile {
		data, err := io.ReadAll(io.LimitReader(file, config.MaxFileSize+1))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read upload: %w", err)
		}
		if len(data) > config.MaxFileSize {
			return nil, "", fmt.Errorf("file exceeds the %dMB limit", config.MaxFileSize/(1024*1024))
		}
		return data, header.Filename, nil
	}

	data, filename, err := utils.FetchURL(r.Context(), rawURL, config.MaxFileSize, app.FetchTimeout())
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	return data, filename, nil
}

// HandleUpload stores a single image from a file or a URL. Anonymous
// uploads are accepted; they have no owner, land in no album and are
// always public.
func HandleUpload(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleUpload")
	actor := ActorFromContext(r.Context())

	if err := r.ParseMultipartForm(config.MaxFileSize + 1024); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid upload request."}, app)
		return
	}

	data, filename, err := readUploadSource(r, app)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
		return
	}

	category, err := resolveCategory(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
		return
	}

	var albumID sql.NullInt64
	var ownerID sql.NullInt64
	isPrivate := false
	if actor.Authenticated {
		ownerID = sql.NullInt64{Int64: actor.ID, Valid: true}
		isPrivate = parseBoolField(r.FormValue("is_private"))
		albumID, err = resolveAlbum(r, actor, app)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
			return
		}
	}

	stored, err := processAndStoreImage(data, app)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = utils.TitleFromFilename(filename)
	}
	if len(title) > config.MaxTitleLen {
		title = title[:config.MaxTitleLen]
	}

	img := &models.Image{
		Title:     title,
		FilePath:  stored.Path,
		FileName:  stored.Name,
		Format:    stored.Format,
		Width:     stored.Width,
		Height:    stored.Height,
		SizeBytes: stored.SizeBytes,
		UserID:    ownerID,
		AlbumID:   albumID,
		IsPrivate: isPrivate,
		Category:  category,
	}
	id, err := app.DB().CreateImage(img)
	if err != nil {
		logger.Error("Failed to create image row", "error", err)
		// best effort: don't leave the stored file orphaned
		if derr := app.Storage().DeleteFile(stored.Path); derr != nil {
			logger.Error("Failed to remove orphaned file", "path", stored.Path, "error", derr)
		}
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save image."}, app)
		return
	}
	img.ID = id

	logger.Info("Image uploaded", "image_id", id, "user_id", actor.ID, "size", stored.SizeBytes)
	respondJSON(w, http.StatusCreated, newImageView(img), app)
}

// HandleBulkUpload stores several files in one request. Files are
// processed independently; one bad file does not fail the rest.
func HandleBulkUpload(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleBulkUpload")
	actor := ActorFromContext(r.Context())

	if err := r.ParseMultipartForm(config.MaxFileSize + 1024); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid upload request."}, app)
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "No files attached."}, app)
		return
	}

	category, err := resolveCategory(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
		return
	}

	var albumID sql.NullInt64
	var ownerID sql.NullInt64
	isPrivate := false
	if actor.Authenticated {
		ownerID = sql.NullInt64{Int64: actor.ID, Valid: true}
		isPrivate = parseBoolField(r.FormValue("is_private"))
		albumID, err = resolveAlbum(r, actor, app)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
			return
		}
	}

	var created []imageView
	var failed []string
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			failed = append(failed, header.Filename)
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, config.MaxFileSize+1))
		f.Close()
		if err != nil || len(data) > config.MaxFileSize {
			failed = append(failed, header.Filename)
			continue
		}

		stored, err := processAndStoreImage(data, app)
		if err != nil {
			logger.Warn("Skipping file in bulk upload", "filename", header.Filename, "error", err)
			failed = append(failed, header.Filename)
			continue
		}

		img := &models.Image{
			Title:     utils.TitleFromFilename(header.Filename),
			FilePath:  stored.Path,
			FileName:  stored.Name,
			Format:    stored.Format,
			Width:     stored.Width,
			Height:    stored.Height,
			SizeBytes: stored.SizeBytes,
			UserID:    ownerID,
			AlbumID:   albumID,
			IsPrivate: isPrivate,
			Category:  category,
		}
		id, err := app.DB().CreateImage(img)
		if err != nil {
			logger.Error("Failed to create image row", "filename", header.Filename, "error", err)
			if derr := app.Storage().DeleteFile(stored.Path); derr != nil {
				logger.Error("Failed to remove orphaned file", "path", stored.Path, "error", derr)
			}
			failed = append(failed, header.Filename)
			continue
		}
		img.ID = id
		created = append(created, newImageView(img))
	}

	logger.Info("Bulk upload finished", "user_id", actor.ID, "created", len(created), "failed", len(failed))
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"uploaded": created,
		"failed":   failed,
	}, app)
}

// HandleImageDetail returns one image with its comments and social counters.
func HandleImageDetail(w http.ResponseWriter, r *http.Request, app App) {
	actor := ActorFromContext(r.Context())

	imageID, err := imageIDParam(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid image id."}, app)
		return
	}
	img, err := app.DB().GetImage(imageID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Image")
		return
	}
	if !models.CanView(actor, img) {
		if !actor.Authenticated {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required."}, app)
			return
		}
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "You do not have access to this image."}, app)
		return
	}

	comments, err := app.DB().ListComments(imageID)
	if err != nil {
		app.Logger().Error("Failed to list comments", "image_id", imageID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	likes, err := app.DB().LikeCount(imageID)
	if err != nil {
		app.Logger().Error("Failed to count likes", "image_id", imageID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}

	liked, favorited := false, false
	if actor.Authenticated {
		if liked, err = app.DB().HasLiked(actor.ID, imageID); err != nil {
			app.Logger().Error("Failed to check like", "image_id", imageID, "error", err)
		}
		if favorited, err = app.DB().HasFavorited(actor.ID, imageID); err != nil {
			app.Logger().Error("Failed to check favorite", "image_id", imageID, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"image":     newImageView(img),
		"comments":  comments,
		"likes":     likes,
		"liked":     liked,
		"favorited": favorited,
		"editable":  models.CanModify(actor, img.UserID),
	}, app)
}

// HandleEditImage updates an image's metadata and optionally re-renders it
// at new dimensions. The edit is all-or-nothing: the resize happens before
// the database row changes, so a failed resize leaves the record untouched.
func HandleEditImage(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleEditImage")
	actor := ActorFromContext(r.Context())

	imageID, err := imageIDParam(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid image id."}, app)
		return
	}
	img, err := app.DB().GetImage(imageID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Image")
		return
	}
	if !models.CanModify(actor, img.UserID) {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "You cannot edit this image."}, app)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = img.Title
	}
	if len(title) > config.MaxTitleLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Title is too long."}, app)
		return
	}

	category, err := resolveCategory(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
		return
	}
	if !category.Valid {
		category = img.Category
	}

	albumID, err := resolveAlbum(r, actor, app)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
		return
	}
	if !albumID.Valid {
		albumID = img.AlbumID
	}

	isPrivate := img.IsPrivate
	if v := r.FormValue("is_private"); v != "" {
		isPrivate = parseBoolField(v)
	}

	width, height := img.Width, img.Height
	sizeBytes := img.SizeBytes
	wantWidth, _ := strconv.Atoi(r.FormValue("width"))
	wantHeight, _ := strconv.Atoi(r.FormValue("height"))
	if wantWidth > 0 && wantHeight > 0 {
		if wantWidth > config.MaxResizeWidth || wantHeight > config.MaxResizeHeight {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("Dimensions may not exceed %dx%d.", config.MaxResizeWidth, config.MaxResizeHeight),
			}, app)
			return
		}
		if wantWidth != img.Width || wantHeight != img.Height {
			newSize, err := resizeStoredImage(app, img, wantWidth, wantHeight)
			if err != nil {
				logger.Error("Failed to resize image", "image_id", imageID, "error", err)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to resize image."}, app)
				return
			}
			width, height, sizeBytes = wantWidth, wantHeight, newSize
		}
	}

	update := database.ImageUpdate{
		Title:     title,
		AlbumID:   albumID,
		Category:  category,
		IsPrivate: isPrivate,
		Width:     width,
		Height:    height,
		SizeBytes: sizeBytes,
	}
	if err := app.DB().UpdateImage(imageID, update); err != nil {
		notFoundOrError(w, r, app, err, "Image")
		return
	}

	img, err = app.DB().GetImage(imageID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Image")
		return
	}
	logger.Info("Image edited", "image_id", imageID, "user_id", actor.ID)
	respondJSON(w, http.StatusOK, newImageView(img), app)
}

// HandleDeleteImage removes an image, its file and all attached social rows.
func HandleDeleteImage(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleDeleteImage")
	actor := ActorFromContext(r.Context())

	imageID, err := imageIDParam(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid image id."}, app)
		return
	}
	img, err := app.DB().GetImage(imageID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Image")
		return
	}
	if !models.CanModify(actor, img.UserID) {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "You cannot delete this image."}, app)
		return
	}

	if err := app.DB().DeleteImage(imageID, app.Storage()); err != nil {
		logger.Error("Failed to delete image", "image_id", imageID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete image."}, app)
		return
	}

	logger.Info("Image deleted", "image_id", imageID, "user_id", actor.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "Image deleted."}, app)
}

// HandleImageAction toggles likes and favorites on an image.
func HandleImageAction(w http.ResponseWriter, r *http.Request, app App) {
	actor := ActorFromContext(r.Context())

	imageID, err := imageIDParam(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid image id."}, app)
		return
	}
	img, err := app.DB().GetImage(imageID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Image")
		return
	}
	if !models.CanView(actor, img) {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "You do not have access to this image."}, app)
		return
	}

	action := r.FormValue("action")
	switch action {
	case "like":
		err = app.DB().SetLike(actor.ID, imageID)
	case "unlike":
		err = app.DB().RemoveLike(actor.ID, imageID)
	case "favorite":
		err = app.DB().SetFavorite(actor.ID, imageID)
	case "unfavorite":
		err = app.DB().RemoveFavorite(actor.ID, imageID)
	default:
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown action."}, app)
		return
	}
	if err != nil {
		app.Logger().Error("Failed to apply image action", "image_id", imageID, "action", action, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}

	likes, err := app.DB().LikeCount(imageID)
	if err != nil {
		app.Logger().Error("Failed to count likes", "image_id", imageID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "likes": likes}, app)
}

// HandleAddComment attaches a comment to an image.
func HandleAddComment(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleAddComment")
	actor := ActorFromContext(r.Context())

	imageID, err := imageIDParam(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid image id."}, app)
		return
	}
	img, err := app.DB().GetImage(imageID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Image")
		return
	}
	if !models.CanView(actor, img) {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "You do not have access to this image."}, app)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Comment text is required."}, app)
		return
	}
	if len(text) > config.MaxCommentLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Comment is too long."}, app)
		return
	}

	commentID, err := app.DB().AddComment(actor.ID, imageID, text)
	if err != nil {
		logger.Error("Failed to add comment", "image_id", imageID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to add comment."}, app)
		return
	}

	comment, err := app.DB().GetComment(commentID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment, app)
}

// HandleDeleteComment removes a comment. Allowed for the comment author,
// the image owner and staff.
func HandleDeleteComment(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleDeleteComment")
	actor := ActorFromContext(r.Context())

	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid comment id."}, app)
		return
	}
	comment, err := app.DB().GetComment(commentID)
	if err != nil {
		notFoundOrError(w, r, app, err, "Comment")
		return
	}

	allowed := actor.IsStaff() || comment.UserID == actor.ID
	if !allowed {
		img, err := app.DB().GetImage(comment.ImageID)
		if err == nil && img.UserID.Valid && img.UserID.Int64 == actor.ID {
			allowed = true
		}
	}
	if !allowed {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "You cannot delete this comment."}, app)
		return
	}

	if err := app.DB().DeleteComment(commentID); err != nil {
		logger.Error("Failed to delete comment", "comment_id", commentID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete comment."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "Comment deleted."}, app)
}
