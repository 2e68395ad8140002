package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fotohub/config"
	"fotohub/database"
	"fotohub/models"
	"fotohub/utils"
)

const testSessionSecret = "handler-test-secret"

// MockApplication holds dependencies for handler tests.
type MockApplication struct {
	db          *database.DatabaseService
	rateLimiter *models.RateLimiter
	logger      *slog.Logger
	storage     models.StorageService
	mailer      models.Mailer
	uploadDir   string
}

func (a *MockApplication) DB() *database.DatabaseService  { return a.db }
func (a *MockApplication) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *MockApplication) Logger() *slog.Logger           { return a.logger }
func (a *MockApplication) Storage() models.StorageService { return a.storage }
func (a *MockApplication) Mailer() models.Mailer          { return a.mailer }
func (a *MockApplication) UploadDir() string              { return a.uploadDir }
func (a *MockApplication) SessionSecret() string          { return testSessionSecret }
func (a *MockApplication) SessionTTL() time.Duration      { return time.Hour }
func (a *MockApplication) FetchTimeout() time.Duration    { return 5 * time.Second }
func (a *MockApplication) FromAddress() string            { return "noreply@test.local" }

// setupTestApp creates a full application stack with a test database for
// integration testing.
func setupTestApp(t *testing.T) *MockApplication {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	dbDir, err := os.MkdirTemp("", "fotohub_test_db_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir for test DB: %v", err)
	}
	dbPath := filepath.Join(dbDir, "test.db?mode=memory&cache=shared&_journal_mode=WAL&_foreign_keys=on")
	dbService, err := database.InitDB(dbPath, logger)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	uploadDir, err := os.MkdirTemp("", "fotohub_test_uploads_*")
	if err != nil {
		t.Fatalf("Failed to create temp upload dir: %v", err)
	}

	app := &MockApplication{
		db:          dbService,
		rateLimiter: models.NewRateLimiter(time.Millisecond, 1000, time.Hour, 24*time.Hour),
		logger:      logger,
		storage:     &utils.LocalStorage{UploadDir: uploadDir},
		mailer:      &utils.LogMailer{Logger: logger},
		uploadDir:   uploadDir,
	}

	t.Cleanup(func() {
		app.db.DB.Close()
		os.RemoveAll(dbDir)
		os.RemoveAll(uploadDir)
	})

	return app
}

// createTestUser registers an account directly in the store and returns
// its id together with a session cookie for it.
func createTestUser(t *testing.T, app *MockApplication, username string) (int64, *http.Cookie) {
	t.Helper()

	hash, err := utils.HashPassword("test-password-123")
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	id, err := app.db.CreateUser(username, username+"@test.local", hash)
	if err != nil {
		t.Fatalf("Failed to create test user %q: %v", username, err)
	}
	token, err := utils.NewSessionToken(testSessionSecret, id, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return id, &http.Cookie{Name: config.SessionCookieName, Value: token}
}

func makeModerator(t *testing.T, app *MockApplication, userID int64) {
	t.Helper()
	if _, err := app.db.DB.Exec("UPDATE users SET is_moderator = 1 WHERE id = ?", userID); err != nil {
		t.Fatalf("Failed to promote user %d to moderator: %v", userID, err)
	}
}

func makeSuperuser(t *testing.T, app *MockApplication, userID int64) {
	t.Helper()
	if _, err := app.db.DB.Exec("UPDATE users SET is_superuser = 1 WHERE id = ?", userID); err != nil {
		t.Fatalf("Failed to promote user %d to superuser: %v", userID, err)
	}
}

// pngBytes renders a solid-color PNG at the given dimensions.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

// multipartBody assembles a multipart form with optional file parts and
// plain fields.
func multipartBody(t *testing.T, files map[string][][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, blobs := range files {
		for i, blob := range blobs {
			part, err := writer.CreateFormFile(field, fmt.Sprintf("photo-%d.png", i))
			if err != nil {
				t.Fatalf("Failed to create form file: %v", err)
			}
			if _, err := part.Write(blob); err != nil {
				t.Fatalf("Failed to write form file: %v", err)
			}
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// doRequest runs one request through the full router.
func doRequest(app *MockApplication, method, path string, body io.Reader, contentType string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	SetupRouter(app).ServeHTTP(rec, req)
	return rec
}

// uploadTestImage pushes a PNG through the upload endpoint and returns the
// stored image row.
func uploadTestImage(t *testing.T, app *MockApplication, cookie *http.Cookie, width, height int, fields map[string]string) *models.Image {
	t.Helper()
	body, contentType := multipartBody(t, map[string][][]byte{"image": {pngBytes(t, width, height)}}, fields)
	rec := doRequest(app, http.MethodPost, "/api/images", body, contentType, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Upload failed: status %d, body %s", rec.Code, rec.Body.String())
	}
	var view imageView
	decodeBody(t, rec, &view)
	img, err := app.db.GetImage(view.ID)
	if err != nil {
		t.Fatalf("Uploaded image %d not found in store: %v", view.ID, err)
	}
	return img
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %s: %v", rec.Body.String(), err)
	}
}

func countRows(t *testing.T, app *MockApplication, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := app.db.DB.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	return n
}
