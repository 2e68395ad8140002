// fotohub/database/albums.go
package database

import (
	"fmt"

	"fotohub/models"
)

// CreateAlbum inserts a new album owned by userID.
func (ds *DatabaseService) CreateAlbum(title string, userID int64) (int64, error) {
	res, err := ds.DB.Exec("INSERT INTO albums (title, user_id) VALUES (?, ?)", title, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert album: %w", err)
	}
	return res.LastInsertId()
}

// GetAlbum fetches an album row. Returns sql.ErrNoRows when absent.
func (ds *DatabaseService) GetAlbum(id int64) (*models.Album, error) {
	var a models.Album
	err := ds.DB.QueryRow("SELECT id, title, user_id FROM albums WHERE id = ?", id).Scan(&a.ID, &a.Title, &a.UserID)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAlbumsByUser returns all albums owned by a user.
func (ds *DatabaseService) ListAlbumsByUser(userID int64) ([]models.Album, error) {
	rows, err := ds.DB.Query("SELECT id, title, user_id FROM albums WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in ListAlbumsByUser", "error", err)
		}
	}()

	var albums []models.Album
	for rows.Next() {
		var a models.Album
		if err := rows.Scan(&a.ID, &a.Title, &a.UserID); err != nil {
			ds.logger.Error("Failed to scan album row", "error", err)
			continue
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

// AlbumOwnedBy reports whether albumID exists and belongs to userID. Used to
// validate the album choice on uploads and edits.
func (ds *DatabaseService) AlbumOwnedBy(albumID, userID int64) (bool, error) {
	var count int
	err := ds.DB.QueryRow("SELECT COUNT(*) FROM albums WHERE id = ? AND user_id = ?", albumID, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteAlbum removes an album and, via cascade, the images in it together
// with their comments, likes, favorites and reports. Stored files for those
// images are removed best effort before the rows go away.
func (ds *DatabaseService) DeleteAlbum(albumID int64, storage models.StorageService) error {
	tx, err := ds.DB.Begin()
	if err != nil {
		return err
	}
	defer ds.rollback(tx, "DeleteAlbum")

	rows, err := tx.Query("SELECT file_path FROM images WHERE album_id = ?", albumID)
	if err != nil {
		return fmt.Errorf("failed to enumerate album images: %w", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err == nil {
			paths = append(paths, p)
		}
	}
	if err := rows.Close(); err != nil {
		ds.logger.Warn("Failed to close rows enumerating album images", "error", err)
	}

	for _, p := range paths {
		if !storage.FileExists(p) {
			continue
		}
		if err := storage.DeleteFile(p); err != nil {
			ds.logger.Warn("Failed to remove image file during album deletion", "path", p, "error", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM albums WHERE id = ?", albumID); err != nil {
		return fmt.Errorf("failed to delete album record: %w", err)
	}

	return tx.Commit()
}
