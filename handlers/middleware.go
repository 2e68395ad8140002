// fotohub/handlers/middleware.go
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"fotohub/config"
	"fotohub/models"
	"fotohub/utils"
)

type contextKey string

const actorContextKey = contextKey("actor")

// ActorFromContext returns the actor resolved for this request.
// Requests that never passed through ActorMiddleware are anonymous.
func ActorFromContext(ctx context.Context) models.Actor {
	if actor, ok := ctx.Value(actorContextKey).(models.Actor); ok {
		return actor
	}
	return models.Anonymous
}

// ActorMiddleware resolves the session cookie to an actor snapshot.
// The user row is re-read on every request so privilege changes and
// deleted accounts take effect immediately; a stale or invalid token
// simply degrades to anonymous.
func ActorMiddleware(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := models.Anonymous
			if cookie, err := r.Cookie(config.SessionCookieName); err == nil && cookie.Value != "" {
				if userID, err := utils.ParseSessionToken(app.SessionSecret(), cookie.Value); err == nil {
					user, err := app.DB().GetUserByID(userID)
					switch {
					case err == sql.ErrNoRows:
						// account deleted after the token was issued
					case err != nil:
						app.Logger().Error("Failed to resolve session user", "user_id", userID, "error", err)
					default:
						actor = models.Actor{
							ID:            user.ID,
							Username:      user.Username,
							Authenticated: true,
							Superuser:     user.IsSuperuser,
							Moderator:     user.IsModerator,
						}
					}
				}
			}
			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ActorFromContext(r.Context()).Authenticated {
				respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required."}, app)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff rejects requests from actors without moderator or superuser rights.
func RequireStaff(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if !actor.Authenticated {
				respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required."}, app)
				return
			}
			if !actor.IsStaff() {
				respondJSON(w, http.StatusForbidden, map[string]string{"error": "Staff access required."}, app)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperuser rejects everyone but superusers.
func RequireSuperuser(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if !actor.Authenticated {
				respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required."}, app)
				return
			}
			if !actor.Superuser {
				respondJSON(w, http.StatusForbidden, map[string]string{"error": "Superuser access required."}, app)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// NewStructuredLogger logs one line per request with method, path,
// status, duration and client IP.
func NewStructuredLogger(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			app.Logger().Info("Request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", utils.GetIPAddress(r),
			)
		})
	}
}

// NewSecurityHeadersMiddleware sets baseline security headers on every response.
func NewSecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware applies the shared per-IP token bucket.
func RateLimitMiddleware(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.GetIPAddress(r)
			if !app.RateLimiter().GetLimiter(ip).Allow() {
				respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Rate limit exceeded. Please slow down."}, app)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
