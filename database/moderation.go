// fotohub/database/moderation.go
package database

import (
	"fmt"

	"fotohub/models"
	"fotohub/utils"
)

// ReportImage files a report against an image and forces it private. The
// unique index on reports(image_id) serializes concurrent submissions:
// inside one transaction, INSERT OR IGNORE either claims the single report
// slot or does nothing, and the privacy flip is applied only when the row
// was actually inserted. A repeat report is a silent success.
func (ds *DatabaseService) ReportImage(imageID, reporterID int64, reason string) (bool, error) {
	tx, err := ds.DB.Begin()
	if err != nil {
		return false, err
	}
	defer ds.rollback(tx, "ReportImage")

	res, err := tx.Exec(
		"INSERT OR IGNORE INTO reports (image_id, reporter_id, reason, created_at) VALUES (?, ?, ?, ?)",
		imageID, reporterID, reason, utils.GetSQLTime())
	if err != nil {
		return false, fmt.Errorf("failed to insert report: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		// Already reported; leave the image as-is.
		return false, tx.Commit()
	}

	if _, err := tx.Exec("UPDATE images SET is_private = 1 WHERE id = ?", imageID); err != nil {
		return false, fmt.Errorf("failed to mark reported image private: %w", err)
	}

	return true, tx.Commit()
}

// GetReport fetches a report row. Returns sql.ErrNoRows when absent.
func (ds *DatabaseService) GetReport(id int64) (*models.Report, error) {
	var rep models.Report
	err := ds.DB.QueryRow(
		"SELECT id, image_id, reporter_id, reason, created_at FROM reports WHERE id = ?", id).
		Scan(&rep.ID, &rep.ImageID, &rep.ReporterID, &rep.Reason, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListReports returns all open reports with their image details, newest
// first, for the moderation queue.
func (ds *DatabaseService) ListReports() ([]models.Report, error) {
	rows, err := ds.DB.Query(`
		SELECT r.id, r.image_id, r.reporter_id, r.reason, r.created_at,
		       i.id, i.title, i.file_path, i.user_id, i.is_private
		FROM reports r JOIN images i ON r.image_id = i.id
		ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			ds.logger.Error("Failed to close rows in ListReports", "error", err)
		}
	}()

	var reports []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.ImageID, &rep.ReporterID, &rep.Reason, &rep.CreatedAt,
			&rep.Image.ID, &rep.Image.Title, &rep.Image.FilePath, &rep.Image.UserID, &rep.Image.IsPrivate); err != nil {
			ds.logger.Error("Failed to scan report row", "error", err)
			continue
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// ResolveReportDelete resolves a report by deleting the offending image.
// The image row cascade removes its comments, likes, favorites and the
// report itself; the stored file is removed best effort first. Terminal for
// the image.
func (ds *DatabaseService) ResolveReportDelete(reportID int64, storage models.StorageService) error {
	tx, err := ds.DB.Begin()
	if err != nil {
		return err
	}
	defer ds.rollback(tx, "ResolveReportDelete")

	var imageID int64
	var filePath string
	err = tx.QueryRow(`
		SELECT i.id, i.file_path FROM reports r JOIN images i ON r.image_id = i.id
		WHERE r.id = ?`, reportID).Scan(&imageID, &filePath)
	if err != nil {
		return fmt.Errorf("report not found: %w", err)
	}

	if storage.FileExists(filePath) {
		if err := storage.DeleteFile(filePath); err != nil {
			ds.logger.Warn("Failed to remove reported image file", "path", filePath, "error", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM images WHERE id = ?", imageID); err != nil {
		return fmt.Errorf("failed to delete reported image: %w", err)
	}

	return tx.Commit()
}

// ResolveReportCancel dismisses a report: the report row is deleted and the
// image made public again, returning it to the reportable state.
func (ds *DatabaseService) ResolveReportCancel(reportID int64) error {
	tx, err := ds.DB.Begin()
	if err != nil {
		return err
	}
	defer ds.rollback(tx, "ResolveReportCancel")

	var imageID int64
	if err := tx.QueryRow("SELECT image_id FROM reports WHERE id = ?", reportID).Scan(&imageID); err != nil {
		return fmt.Errorf("report not found: %w", err)
	}

	if _, err := tx.Exec("UPDATE images SET is_private = 0 WHERE id = ?", imageID); err != nil {
		return fmt.Errorf("failed to restore image visibility: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM reports WHERE id = ?", reportID); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	return tx.Commit()
}
