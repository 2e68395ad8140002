// fotohub/database/users.go
package database

import (
	"database/sql"
	"fmt"

	"fotohub/models"
	"fotohub/utils"
)

const userColumns = "id, username, email, first_name, last_name, is_superuser, is_moderator, joined_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsSuperuser, &u.IsModerator, &u.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new account and returns its ID. The username is
// unique; a duplicate insert fails at the schema level.
func (ds *DatabaseService) CreateUser(username, email, passwordHash string) (int64, error) {
	res, err := ds.DB.Exec(
		"INSERT INTO users (username, email, password_hash, joined_at) VALUES (?, ?, ?, ?)",
		username, email, passwordHash, utils.GetSQLTime())
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return res.LastInsertId()
}

// GetUserByID fetches a user row. Returns sql.ErrNoRows when absent.
func (ds *DatabaseService) GetUserByID(id int64) (*models.User, error) {
	return scanUser(ds.DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetCredentials returns the stored password hash for a username.
func (ds *DatabaseService) GetCredentials(username string) (int64, string, error) {
	var id int64
	var hash string
	err := ds.DB.QueryRow("SELECT id, password_hash FROM users WHERE username = ?", username).Scan(&id, &hash)
	if err != nil {
		return 0, "", err
	}
	return id, hash, nil
}

// UsernameTaken reports whether a username is already registered.
func (ds *DatabaseService) UsernameTaken(username string) (bool, error) {
	var count int
	if err := ds.DB.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUserProfile updates the editable profile fields of an account.
func (ds *DatabaseService) UpdateUserProfile(id int64, username, email, firstName, lastName string) error {
	_, err := ds.DB.Exec(
		"UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, updated_at = ? WHERE id = ?",
		username, email, firstName, lastName, utils.GetSQLTime(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// SearchUsers returns a page of users, optionally filtered by a substring
// match over username, first name, or last name, plus the total match count.
func (ds *DatabaseService) SearchUsers(query string, page, pageSize int) ([]models.User, int, error) {
	where := ""
	args := []interface{}{}
	if query != "" {
		where = " WHERE username LIKE ? OR first_name LIKE ? OR last_name LIKE ?"
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	if err := ds.DB.QueryRow("SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := ds.DB.Query(
		"SELECT "+userColumns+" FROM users"+where+" ORDER BY username LIMIT ? OFFSET ?",
		append(args, pageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in SearchUsers", "error", err)
		}
	}()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			ds.logger.Error("Failed to scan user row", "error", err)
			continue
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UserStats returns the album, uploaded-image, and favorite counts shown on
// a profile page.
func (ds *DatabaseService) UserStats(userID int64) (albums, images, favorites int, err error) {
	if err = ds.DB.QueryRow("SELECT COUNT(*) FROM albums WHERE user_id = ?", userID).Scan(&albums); err != nil {
		return
	}
	if err = ds.DB.QueryRow("SELECT COUNT(*) FROM images WHERE user_id = ?", userID).Scan(&images); err != nil {
		return
	}
	err = ds.DB.QueryRow("SELECT COUNT(*) FROM favorites WHERE user_id = ?", userID).Scan(&favorites)
	return
}

// DeleteUserAccount removes an account and everything it owns: stored image
// files, albums, images (cascading comments, likes, favorites and reports),
// and finally the user row. Database mutations are a single transaction.
// File removals happen before the rows go away (the path is only resolvable
// from the row) and are best effort: a file already gone is not an error,
// and files removed before a late rollback stay removed.
func (ds *DatabaseService) DeleteUserAccount(userID int64, storage models.StorageService) error {
	tx, err := ds.DB.Begin()
	if err != nil {
		return err
	}
	defer ds.rollback(tx, "DeleteUserAccount")

	rows, err := tx.Query("SELECT file_path FROM images WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to enumerate images for account deletion: %w", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err == nil {
			paths = append(paths, p)
		}
	}
	if err := rows.Close(); err != nil {
		ds.logger.Warn("Failed to close rows enumerating account images", "error", err)
	}

	for _, p := range paths {
		if !storage.FileExists(p) {
			continue
		}
		if err := storage.DeleteFile(p); err != nil {
			ds.logger.Warn("Failed to remove image file during account deletion", "path", p, "error", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM albums WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete albums: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM images WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	res, err := tx.Exec("DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}
