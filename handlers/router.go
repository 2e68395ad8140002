// fotohub/handlers/router.go
package handlers

import (
	"net/http"

	"fotohub/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(app App) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(NewStructuredLogger(app))
	mux.Use(middleware.Recoverer)
	mux.Use(NewSecurityHeadersMiddleware())
	mux.Use(ActorMiddleware(app))

	// Local storage serves files directly; with S3 the file_path is a
	// public object URL and this tree stays empty.
	if app.UploadDir() != "" {
		mux.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.UploadDir()))))
	}

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": config.AppVersion}, app)
	})

	mux.Route("/api", func(r chi.Router) {
		// Accounts & sessions
		r.Post("/auth/register", MakeHandler(app, HandleRegister))
		r.Post("/auth/login", MakeHandler(app, HandleLogin))
		r.Post("/auth/logout", MakeHandler(app, HandleLogout))

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(app))
			r.Get("/profile", MakeHandler(app, HandleProfile))
			r.Post("/profile", MakeHandler(app, HandleEditProfile))
		})

		// Public browsing & anonymous-friendly uploads
		r.Get("/images/recent", MakeHandler(app, HandleRecentImages))
		r.Get("/images/batch", MakeHandler(app, HandleImageBatch))
		r.With(RateLimitMiddleware(app)).Post("/images", MakeHandler(app, HandleUpload))
		r.With(RateLimitMiddleware(app)).Post("/images/bulk", MakeHandler(app, HandleBulkUpload))
		r.Get("/image/{imageID}", MakeHandler(app, HandleImageDetail))

		// Image management & social actions
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(app))
			r.Get("/images/mine", MakeHandler(app, HandleMyImages))
			r.Get("/images/favorites", MakeHandler(app, HandleMyFavorites))
			r.Post("/image/{imageID}/edit", MakeHandler(app, HandleEditImage))
			r.Post("/image/{imageID}/delete", MakeHandler(app, HandleDeleteImage))
			r.Post("/image/{imageID}/action", MakeHandler(app, HandleImageAction))
			r.Post("/image/{imageID}/comment", MakeHandler(app, HandleAddComment))
			r.With(RateLimitMiddleware(app)).Post("/image/{imageID}/report", MakeHandler(app, HandleReportImage))
			r.Post("/comment/{commentID}/delete", MakeHandler(app, HandleDeleteComment))

			r.Get("/albums", MakeHandler(app, HandleListAlbums))
			r.Post("/albums", MakeHandler(app, HandleCreateAlbum))
			r.Get("/album/{albumID}/images", MakeHandler(app, HandleAlbumImages))
			r.Post("/album/{albumID}/delete", MakeHandler(app, HandleDeleteAlbum))
		})

		r.With(RateLimitMiddleware(app)).Post("/contact", MakeHandler(app, HandleContact))

		// Moderation & administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireStaff(app))
			r.Get("/reported", MakeHandler(app, HandleReportedImages))
			r.Post("/reported/{reportID}/resolve", MakeHandler(app, HandleResolveReport))
			r.Get("/users", MakeHandler(app, HandleAdminUserList))
			r.Get("/user/{userID}", MakeHandler(app, HandleAdminUserDetail))
			r.Get("/user/{userID}/images", MakeHandler(app, HandleAdminUserImages))
			r.Get("/user/{userID}/albums", MakeHandler(app, HandleAdminUserAlbums))
			r.With(RequireSuperuser(app)).Post("/user/{userID}/delete", MakeHandler(app, HandleAdminDeleteUser))
		})
	})

	return mux
}
