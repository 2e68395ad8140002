// fotohub/main.go
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fotohub/config"
	"fotohub/database"
	"fotohub/handlers"
	"fotohub/models"
	"fotohub/utils"
)

type Application struct {
	db            *database.DatabaseService
	rateLimiter   *models.RateLimiter
	logger        *slog.Logger
	storage       models.StorageService
	mailer        models.Mailer
	uploadDir     string
	sessionSecret string
	sessionTTL    time.Duration
	fetchTimeout  time.Duration
	fromAddress   string
}

// Methods to satisfy the handlers.App interface
func (a *Application) DB() *database.DatabaseService  { return a.db }
func (a *Application) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *Application) Logger() *slog.Logger           { return a.logger }
func (a *Application) Storage() models.StorageService { return a.storage }
func (a *Application) Mailer() models.Mailer          { return a.mailer }
func (a *Application) UploadDir() string              { return a.uploadDir }
func (a *Application) SessionSecret() string          { return a.sessionSecret }
func (a *Application) SessionTTL() time.Duration      { return a.sessionTTL }
func (a *Application) FetchTimeout() time.Duration    { return a.fetchTimeout }
func (a *Application) FromAddress() string            { return a.fromAddress }

func parseDurationEnv(logger *slog.Logger, key, fallback string) time.Duration {
	raw := utils.GetEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	port := utils.GetEnv("FOTOHUB_PORT", "8080")
	dbPath := utils.GetEnv("FOTOHUB_DB_PATH", "./fotohub.db?_journal_mode=WAL&_foreign_keys=on")
	uploadDir := utils.GetEnv("FOTOHUB_UPLOAD_DIR", "./uploads")
	fromAddress := utils.GetEnv("FOTOHUB_FROM_ADDRESS", "noreply@fotohub.local")

	sessionSecret := os.Getenv("FOTOHUB_SESSION_SECRET")
	if sessionSecret == "" {
		// Generated secrets invalidate sessions on restart, fine for dev.
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			logger.Error("Failed to generate session secret", "error", err)
			os.Exit(1)
		}
		sessionSecret = hex.EncodeToString(secretBytes)
		logger.Warn("FOTOHUB_SESSION_SECRET not set, generated an ephemeral secret")
	}

	sessionTTL := parseDurationEnv(logger, "FOTOHUB_SESSION_TTL", config.DefaultSessionTTL)
	fetchTimeout := parseDurationEnv(logger, "FOTOHUB_FETCH_TIMEOUT", config.DefaultFetchTimeout)

	rateLimitEvery := parseDurationEnv(logger, "FOTOHUB_RATE_EVERY", config.DefaultRateLimitEvery)
	rateLimitBurst, err := strconv.Atoi(utils.GetEnv("FOTOHUB_RATE_BURST", strconv.Itoa(config.DefaultRateLimitBurst)))
	if err != nil {
		logger.Warn("Invalid FOTOHUB_RATE_BURST integer, using default", "default", config.DefaultRateLimitBurst)
		rateLimitBurst = config.DefaultRateLimitBurst
	}
	rateLimitPrune := parseDurationEnv(logger, "FOTOHUB_RATE_PRUNE", config.DefaultRateLimitPrune)
	rateLimitExpire := parseDurationEnv(logger, "FOTOHUB_RATE_EXPIRE", config.DefaultRateLimitExpire)

	dbService, err := database.InitDB(dbPath, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbService.DB.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	// --- Storage Service Init ---
	var storageService models.StorageService
	if utils.GetEnv("FOTOHUB_S3_ENABLED", "false") == "true" {
		endpoint := utils.GetEnv("FOTOHUB_S3_ENDPOINT", "")
		accessKey := utils.GetEnv("FOTOHUB_S3_ACCESS_KEY", "")
		secretKey := utils.GetEnv("FOTOHUB_S3_SECRET_KEY", "")
		bucket := utils.GetEnv("FOTOHUB_S3_BUCKET", "")
		region := utils.GetEnv("FOTOHUB_S3_REGION", "us-east-1")
		publicURL := utils.GetEnv("FOTOHUB_S3_PUBLIC_URL", "")
		useSSL := utils.GetEnv("FOTOHUB_S3_USE_SSL", "true") == "true"

		storageService, err = utils.NewS3Storage(endpoint, accessKey, secretKey, bucket, region, publicURL, useSSL)
		if err != nil {
			logger.Error("Failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		uploadDir = "" // S3 serves files itself
		logger.Info("S3 Storage initialized", "endpoint", endpoint, "bucket", bucket)
	} else {
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			logger.Error("FATAL: Could not create uploads directory", "path", uploadDir, "error", err)
			os.Exit(1)
		}
		storageService = &utils.LocalStorage{UploadDir: uploadDir}
		logger.Info("Local Storage initialized", "dir", uploadDir)
	}

	// --- Mailer Init ---
	var mailer models.Mailer
	if smtpHost := utils.GetEnv("FOTOHUB_SMTP_HOST", ""); smtpHost != "" {
		mailer = utils.NewSMTPMailer(
			smtpHost,
			utils.GetEnv("FOTOHUB_SMTP_PORT", "587"),
			utils.GetEnv("FOTOHUB_SMTP_USER", ""),
			utils.GetEnv("FOTOHUB_SMTP_PASSWORD", ""),
		)
		logger.Info("SMTP mailer initialized", "host", smtpHost)
	} else {
		mailer = &utils.LogMailer{Logger: logger}
		logger.Info("No SMTP host configured, mail goes to the log")
	}

	app := &Application{
		db:            dbService,
		rateLimiter:   models.NewRateLimiter(rateLimitEvery, rateLimitBurst, rateLimitPrune, rateLimitExpire),
		logger:        logger,
		storage:       storageService,
		mailer:        mailer,
		uploadDir:     uploadDir,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
		fetchTimeout:  fetchTimeout,
		fromAddress:   fromAddress,
	}

	mux := handlers.SetupRouter(app)

	// --- Graceful Shutdown ---
	server := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("fotohub server started successfully",
		"version", config.AppVersion,
		"address", "http://localhost:"+port,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
