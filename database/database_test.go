package database

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"fotohub/models"
	"fotohub/utils"
)

type testStore struct {
	ds      *DatabaseService
	storage models.StorageService
}

func setupTestStore(t *testing.T) *testStore {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	dbDir, err := os.MkdirTemp("", "fotohub_store_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	dbPath := filepath.Join(dbDir, "test.db?mode=memory&cache=shared&_journal_mode=WAL&_foreign_keys=on")
	ds, err := InitDB(dbPath, logger)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	uploadDir, err := os.MkdirTemp("", "fotohub_store_uploads_*")
	if err != nil {
		t.Fatalf("Failed to create temp upload dir: %v", err)
	}

	t.Cleanup(func() {
		ds.DB.Close()
		os.RemoveAll(dbDir)
		os.RemoveAll(uploadDir)
	})

	return &testStore{ds: ds, storage: &utils.LocalStorage{UploadDir: uploadDir}}
}

func (s *testStore) createUser(t *testing.T, username string) int64 {
	t.Helper()
	id, err := s.ds.CreateUser(username, username+"@test.local", "x")
	if err != nil {
		t.Fatalf("CreateUser(%q) failed: %v", username, err)
	}
	return id
}

func (s *testStore) createImage(t *testing.T, ownerID int64, private bool) *models.Image {
	t.Helper()
	path, err := s.storage.SaveFile("img-"+uuid.New().String()+".jpg", []byte("fake image bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	img := &models.Image{
		Title:     "test image",
		FilePath:  path,
		FileName:  filepath.Base(path),
		Format:    "jpeg",
		Width:     100,
		Height:    100,
		SizeBytes: 16,
		UserID:    sql.NullInt64{Int64: ownerID, Valid: true},
		IsPrivate: private,
	}
	id, err := s.ds.CreateImage(img)
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	img.ID = id
	return img
}

func (s *testStore) count(t *testing.T, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := s.ds.DB.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	return n
}

func TestReportImageIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	owner := s.createUser(t, "owner")
	reporterA := s.createUser(t, "a")
	reporterB := s.createUser(t, "b")
	img := s.createImage(t, owner, false)

	created, err := s.ds.ReportImage(img.ID, reporterA, "first")
	if err != nil {
		t.Fatalf("First report failed: %v", err)
	}
	if !created {
		t.Error("Expected the first report to be created")
	}

	created, err = s.ds.ReportImage(img.ID, reporterB, "second")
	if err != nil {
		t.Fatalf("Second report errored: %v", err)
	}
	if created {
		t.Error("Expected the second report to be a no-op")
	}

	if n := s.count(t, "SELECT COUNT(*) FROM reports WHERE image_id = ?", img.ID); n != 1 {
		t.Errorf("Expected 1 report row, got %d", n)
	}
	got, err := s.ds.GetImage(img.ID)
	if err != nil {
		t.Fatalf("GetImage failed: %v", err)
	}
	if !got.IsPrivate {
		t.Error("Expected reported image to be private")
	}
	reports, err := s.ds.ListReports()
	if err != nil || len(reports) != 1 {
		t.Fatalf("ListReports: %d reports, err %v", len(reports), err)
	}
	if reports[0].Reason != "first" {
		t.Errorf("Expected the first reason to win, got %q", reports[0].Reason)
	}
}

func TestResolveReportCancelMakesImageReportable(t *testing.T) {
	s := setupTestStore(t)
	owner := s.createUser(t, "owner")
	reporter := s.createUser(t, "reporter")
	img := s.createImage(t, owner, false)

	if _, err := s.ds.ReportImage(img.ID, reporter, "reason"); err != nil {
		t.Fatalf("ReportImage failed: %v", err)
	}
	reports, err := s.ds.ListReports()
	if err != nil || len(reports) != 1 {
		t.Fatalf("Expected 1 report, got %d (%v)", len(reports), err)
	}

	if err := s.ds.ResolveReportCancel(reports[0].ID); err != nil {
		t.Fatalf("ResolveReportCancel failed: %v", err)
	}

	got, err := s.ds.GetImage(img.ID)
	if err != nil {
		t.Fatalf("GetImage failed: %v", err)
	}
	if got.IsPrivate {
		t.Error("Expected canceled report to restore public visibility")
	}

	created, err := s.ds.ReportImage(img.ID, reporter, "again")
	if err != nil || !created {
		t.Errorf("Expected image to be reportable again, created=%v err=%v", created, err)
	}
}

func TestResolveReportDeleteRemovesImageAndFile(t *testing.T) {
	s := setupTestStore(t)
	owner := s.createUser(t, "owner")
	reporter := s.createUser(t, "reporter")
	img := s.createImage(t, owner, false)

	if _, err := s.ds.ReportImage(img.ID, reporter, "bad"); err != nil {
		t.Fatalf("ReportImage failed: %v", err)
	}
	reports, _ := s.ds.ListReports()

	if err := s.ds.ResolveReportDelete(reports[0].ID, s.storage); err != nil {
		t.Fatalf("ResolveReportDelete failed: %v", err)
	}

	if _, err := s.ds.GetImage(img.ID); err != sql.ErrNoRows {
		t.Errorf("Expected image gone, got err=%v", err)
	}
	if s.storage.FileExists(img.FilePath) {
		t.Error("Expected stored file removed")
	}
	if n := s.count(t, "SELECT COUNT(*) FROM reports"); n != 0 {
		t.Errorf("Expected reports cleared, got %d", n)
	}
}

func TestDeleteUserAccountCascades(t *testing.T) {
	s := setupTestStore(t)
	victim := s.createUser(t, "victim")
	other := s.createUser(t, "other")

	albumID, err := s.ds.CreateAlbum("holiday", victim)
	if err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	img := s.createImage(t, victim, false)
	if err := s.ds.UpdateImage(img.ID, ImageUpdate{
		Title:     img.Title,
		AlbumID:   sql.NullInt64{Int64: albumID, Valid: true},
		IsPrivate: img.IsPrivate,
		Width:     img.Width,
		Height:    img.Height,
		SizeBytes: img.SizeBytes,
	}); err != nil {
		t.Fatalf("UpdateImage failed: %v", err)
	}

	otherImg := s.createImage(t, other, false)
	if _, err := s.ds.AddComment(victim, otherImg.ID, "hi"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if err := s.ds.SetLike(victim, otherImg.ID); err != nil {
		t.Fatalf("SetLike failed: %v", err)
	}
	if _, err := s.ds.ReportImage(otherImg.ID, victim, "meh"); err != nil {
		t.Fatalf("ReportImage failed: %v", err)
	}

	if err := s.ds.DeleteUserAccount(victim, s.storage); err != nil {
		t.Fatalf("DeleteUserAccount failed: %v", err)
	}

	if n := s.count(t, "SELECT COUNT(*) FROM users WHERE id = ?", victim); n != 0 {
		t.Error("User row survived")
	}
	if n := s.count(t, "SELECT COUNT(*) FROM albums WHERE user_id = ?", victim); n != 0 {
		t.Error("Albums survived")
	}
	if n := s.count(t, "SELECT COUNT(*) FROM images WHERE user_id = ?", victim); n != 0 {
		t.Error("Images survived")
	}
	if s.storage.FileExists(img.FilePath) {
		t.Error("File survived account deletion")
	}
	if n := s.count(t, "SELECT COUNT(*) FROM comments WHERE user_id = ?", victim); n != 0 {
		t.Error("Comments survived")
	}
	if n := s.count(t, "SELECT COUNT(*) FROM likes WHERE user_id = ?", victim); n != 0 {
		t.Error("Likes survived")
	}
	if n := s.count(t, "SELECT COUNT(*) FROM reports WHERE reporter_id = ?", victim); n != 0 {
		t.Error("Reports survived")
	}

	// the other user's content is untouched
	if _, err := s.ds.GetImage(otherImg.ID); err != nil {
		t.Errorf("Other user's image affected: %v", err)
	}
	if !s.storage.FileExists(otherImg.FilePath) {
		t.Error("Other user's file removed")
	}
}

func TestDeleteUnknownUser(t *testing.T) {
	s := setupTestStore(t)
	if err := s.ds.DeleteUserAccount(9999, s.storage); err != sql.ErrNoRows {
		t.Errorf("Expected sql.ErrNoRows, got %v", err)
	}
}

func TestSetLikeIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	owner := s.createUser(t, "owner")
	fan := s.createUser(t, "fan")
	img := s.createImage(t, owner, false)

	for i := 0; i < 3; i++ {
		if err := s.ds.SetLike(fan, img.ID); err != nil {
			t.Fatalf("SetLike attempt %d failed: %v", i+1, err)
		}
	}
	n, err := s.ds.LikeCount(img.ID)
	if err != nil {
		t.Fatalf("LikeCount failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 like, got %d", n)
	}

	if err := s.ds.RemoveLike(fan, img.ID); err != nil {
		t.Fatalf("RemoveLike failed: %v", err)
	}
	if liked, _ := s.ds.HasLiked(fan, img.ID); liked {
		t.Error("Expected like removed")
	}
}

func TestListRecentImagesExcludesPrivate(t *testing.T) {
	s := setupTestStore(t)
	owner := s.createUser(t, "owner")
	s.createImage(t, owner, true)
	public := s.createImage(t, owner, false)

	images, total, err := s.ds.ListRecentImages("", 1, 10)
	if err != nil {
		t.Fatalf("ListRecentImages failed: %v", err)
	}
	if total != 1 || len(images) != 1 || images[0].ID != public.ID {
		t.Errorf("Expected only the public image, got total=%d images=%+v", total, images)
	}

	// the owner's own listing includes private images
	images, total, err = s.ds.ListImagesByUser(owner, "", 1, 10)
	if err != nil {
		t.Fatalf("ListImagesByUser failed: %v", err)
	}
	if total != 2 || len(images) != 2 {
		t.Errorf("Expected both images for the owner, got total=%d", total)
	}
}

func TestUpdateImageUnknownID(t *testing.T) {
	s := setupTestStore(t)
	err := s.ds.UpdateImage(424242, ImageUpdate{Title: "x", Width: 1, Height: 1})
	if err != sql.ErrNoRows {
		t.Errorf("Expected sql.ErrNoRows, got %v", err)
	}
}
