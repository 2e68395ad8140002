// fotohub/database/images.go
package database

import (
	"database/sql"
	"fmt"

	"fotohub/models"
	"fotohub/utils"
)

const imageColumns = "id, title, file_path, file_name, format, width, height, size_bytes, uploaded_at, user_id, album_id, is_private, category"

func scanImage(row interface{ Scan(...interface{}) error }) (*models.Image, error) {
	var img models.Image
	err := row.Scan(&img.ID, &img.Title, &img.FilePath, &img.FileName, &img.Format,
		&img.Width, &img.Height, &img.SizeBytes, &img.UploadedAt,
		&img.UserID, &img.AlbumID, &img.IsPrivate, &img.Category)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// CreateImage inserts a new image row and returns its ID.
func (ds *DatabaseService) CreateImage(img *models.Image) (int64, error) {
	res, err := ds.DB.Exec(`
		INSERT INTO images (title, file_path, file_name, format, width, height, size_bytes, uploaded_at, user_id, album_id, is_private, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.Title, img.FilePath, img.FileName, img.Format, img.Width, img.Height,
		img.SizeBytes, utils.GetSQLTime(), img.UserID, img.AlbumID, img.IsPrivate, img.Category)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image: %w", err)
	}
	return res.LastInsertId()
}

// GetImage fetches a single image row. Returns sql.ErrNoRows when absent.
func (ds *DatabaseService) GetImage(id int64) (*models.Image, error) {
	return scanImage(ds.DB.QueryRow("SELECT "+imageColumns+" FROM images WHERE id = ?", id))
}

func (ds *DatabaseService) queryImages(query string, args ...interface{}) ([]models.Image, error) {
	rows, err := ds.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close image rows", "error", err)
		}
	}()

	var images []models.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			ds.logger.Error("Failed to scan image row", "error", err)
			continue
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// ListRecentImages returns a page of the public feed, newest first,
// optionally filtered by category, plus the total match count.
func (ds *DatabaseService) ListRecentImages(category string, page, pageSize int) ([]models.Image, int, error) {
	where := " WHERE is_private = 0"
	args := []interface{}{}
	if category != "" {
		where += " AND category = ?"
		args = append(args, category)
	}

	var total int
	if err := ds.DB.QueryRow("SELECT COUNT(*) FROM images"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	images, err := ds.queryImages(
		"SELECT "+imageColumns+" FROM images"+where+" ORDER BY uploaded_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, pageSize, offset)...)
	return images, total, err
}

// ListImagesByUser returns a page of a user's uploads, newest first,
// optionally filtered by category.
func (ds *DatabaseService) ListImagesByUser(userID int64, category string, page, pageSize int) ([]models.Image, int, error) {
	where := " WHERE user_id = ?"
	args := []interface{}{userID}
	if category != "" {
		where += " AND category = ?"
		args = append(args, category)
	}

	var total int
	if err := ds.DB.QueryRow("SELECT COUNT(*) FROM images"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	images, err := ds.queryImages(
		"SELECT "+imageColumns+" FROM images"+where+" ORDER BY uploaded_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, pageSize, offset)...)
	return images, total, err
}

// ListImagesByAlbum returns all images in an album, newest first.
func (ds *DatabaseService) ListImagesByAlbum(albumID int64) ([]models.Image, error) {
	return ds.queryImages("SELECT "+imageColumns+" FROM images WHERE album_id = ? ORDER BY uploaded_at DESC, id DESC", albumID)
}

// ListFavoriteImages returns the images a user marked favorite, most
// recently favorited first.
func (ds *DatabaseService) ListFavoriteImages(userID int64) ([]models.Image, error) {
	return ds.queryImages(`
		SELECT i.id, i.title, i.file_path, i.file_name, i.format, i.width, i.height, i.size_bytes, i.uploaded_at, i.user_id, i.album_id, i.is_private, i.category
		FROM images i JOIN favorites f ON f.image_id = i.id
		WHERE f.user_id = ? ORDER BY f.created_at DESC, f.id DESC`, userID)
}

// ListImagesByIDs returns the images with the given ids, used by the
// post-upload confirmation listing. Unknown ids are silently skipped.
func (ds *DatabaseService) ListImagesByIDs(ids []int64) ([]models.Image, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := "?"
	args := []interface{}{ids[0]}
	for _, id := range ids[1:] {
		placeholders += ",?"
		args = append(args, id)
	}
	return ds.queryImages("SELECT "+imageColumns+" FROM images WHERE id IN ("+placeholders+") ORDER BY id", args...)
}

// UserCategories returns the distinct non-empty categories among a user's
// uploads, for the category filter on the my-photos listing.
func (ds *DatabaseService) UserCategories(userID int64) ([]string, error) {
	rows, err := ds.DB.Query("SELECT DISTINCT category FROM images WHERE user_id = ? AND category IS NOT NULL AND category != '' ORDER BY category", userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in UserCategories", "error", err)
		}
	}()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err == nil {
			categories = append(categories, c)
		}
	}
	return categories, rows.Err()
}

// ImageUpdate holds the full replacement state for an image edit. The edit
// is all-or-nothing: callers perform any resize first and pass the resulting
// dimensions here, so either everything persists or nothing does.
type ImageUpdate struct {
	Title     string
	AlbumID   sql.NullInt64
	Category  sql.NullString
	IsPrivate bool
	Width     int
	Height    int
	SizeBytes int64
}

// UpdateImage applies an edit to an image row.
func (ds *DatabaseService) UpdateImage(id int64, up ImageUpdate) error {
	res, err := ds.DB.Exec(`
		UPDATE images SET title = ?, album_id = ?, category = ?, is_private = ?, width = ?, height = ?, size_bytes = ?
		WHERE id = ?`,
		up.Title, up.AlbumID, up.Category, up.IsPrivate, up.Width, up.Height, up.SizeBytes, id)
	if err != nil {
		return fmt.Errorf("failed to update image: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteImage removes an image row, cascading its comments, likes, favorites
// and any report, and removes the stored file best effort.
func (ds *DatabaseService) DeleteImage(id int64, storage models.StorageService) error {
	tx, err := ds.DB.Begin()
	if err != nil {
		return err
	}
	defer ds.rollback(tx, "DeleteImage")

	var filePath string
	if err := tx.QueryRow("SELECT file_path FROM images WHERE id = ?", id).Scan(&filePath); err != nil {
		return fmt.Errorf("image not found: %w", err)
	}

	if storage.FileExists(filePath) {
		if err := storage.DeleteFile(filePath); err != nil {
			ds.logger.Warn("Failed to remove image file", "path", filePath, "error", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM images WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	return tx.Commit()
}
