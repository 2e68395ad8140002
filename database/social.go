// fotohub/database/social.go
package database

import (
	"fmt"

	"fotohub/models"
	"fotohub/utils"
)

// AddComment inserts a comment on an image. User and image are both
// required; the schema rejects a null on either side.
func (ds *DatabaseService) AddComment(userID, imageID int64, text string) (int64, error) {
	res, err := ds.DB.Exec(
		"INSERT INTO comments (user_id, image_id, text, created_at) VALUES (?, ?, ?, ?)",
		userID, imageID, text, utils.GetSQLTime())
	if err != nil {
		return 0, fmt.Errorf("failed to insert comment: %w", err)
	}
	return res.LastInsertId()
}

// GetComment fetches a comment row. Returns sql.ErrNoRows when absent.
func (ds *DatabaseService) GetComment(id int64) (*models.Comment, error) {
	var c models.Comment
	err := ds.DB.QueryRow(`
		SELECT c.id, c.user_id, u.username, c.image_id, c.text, c.created_at
		FROM comments c JOIN users u ON c.user_id = u.id WHERE c.id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.Username, &c.ImageID, &c.Text, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteComment removes a comment row.
func (ds *DatabaseService) DeleteComment(id int64) error {
	_, err := ds.DB.Exec("DELETE FROM comments WHERE id = ?", id)
	return err
}

// ListComments returns an image's comments, newest first.
func (ds *DatabaseService) ListComments(imageID int64) ([]models.Comment, error) {
	rows, err := ds.DB.Query(`
		SELECT c.id, c.user_id, u.username, c.image_id, c.text, c.created_at
		FROM comments c JOIN users u ON c.user_id = u.id
		WHERE c.image_id = ? ORDER BY c.created_at DESC, c.id DESC`, imageID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in ListComments", "error", err)
		}
	}()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.Username, &c.ImageID, &c.Text, &c.CreatedAt); err != nil {
			ds.logger.Error("Failed to scan comment row", "error", err)
			continue
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// SetLike records a like. Idempotent: the unique (user, image) index makes a
// repeat insert a no-op.
func (ds *DatabaseService) SetLike(userID, imageID int64) error {
	_, err := ds.DB.Exec(
		"INSERT OR IGNORE INTO likes (user_id, image_id, created_at) VALUES (?, ?, ?)",
		userID, imageID, utils.GetSQLTime())
	return err
}

// RemoveLike deletes a like if present.
func (ds *DatabaseService) RemoveLike(userID, imageID int64) error {
	_, err := ds.DB.Exec("DELETE FROM likes WHERE user_id = ? AND image_id = ?", userID, imageID)
	return err
}

// SetFavorite records a favorite. Idempotent like SetLike.
func (ds *DatabaseService) SetFavorite(userID, imageID int64) error {
	_, err := ds.DB.Exec(
		"INSERT OR IGNORE INTO favorites (user_id, image_id, created_at) VALUES (?, ?, ?)",
		userID, imageID, utils.GetSQLTime())
	return err
}

// RemoveFavorite deletes a favorite if present.
func (ds *DatabaseService) RemoveFavorite(userID, imageID int64) error {
	_, err := ds.DB.Exec("DELETE FROM favorites WHERE user_id = ? AND image_id = ?", userID, imageID)
	return err
}

// LikeCount returns how many users like an image.
func (ds *DatabaseService) LikeCount(imageID int64) (int, error) {
	var count int
	err := ds.DB.QueryRow("SELECT COUNT(*) FROM likes WHERE image_id = ?", imageID).Scan(&count)
	return count, err
}

// HasLiked reports whether a user likes an image.
func (ds *DatabaseService) HasLiked(userID, imageID int64) (bool, error) {
	var count int
	err := ds.DB.QueryRow("SELECT COUNT(*) FROM likes WHERE user_id = ? AND image_id = ?", userID, imageID).Scan(&count)
	return count > 0, err
}

// HasFavorited reports whether a user has favorited an image.
func (ds *DatabaseService) HasFavorited(userID, imageID int64) (bool, error) {
	var count int
	err := ds.DB.QueryRow("SELECT COUNT(*) FROM favorites WHERE user_id = ? AND image_id = ?", userID, imageID).Scan(&count)
	return count > 0, err
}
