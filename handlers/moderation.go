// fotohub/handlers/moderation.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fotohub/config"
)

// HandleReportImage files a report against an image and hides it from the
// public feed. A second report against the same image is a silent no-op,
// so concurrent reporters all see success and exactly one report row and
// one privacy flip happen.
func HandleReportImage(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleReportImage")
	actor := ActorFromContext(r.Context())

	imageID, err := imageIDParam(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid image id."}, app)
		return
	}
	if _, err := app.DB().GetImage(imageID); err != nil {
		notFoundOrError(w, r, app, err, "Image")
		return
	}

	reason := strings.TrimSpace(r.FormValue("reason"))
	if reason == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "A reason is required."}, app)
		return
	}
	if len(reason) > config.MaxReasonLen {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Reason is too long."}, app)
		return
	}

	created, err := app.DB().ReportImage(imageID, actor.ID, reason)
	if err != nil {
		logger.Error("Failed to file report", "image_id", imageID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to file report."}, app)
		return
	}
	if created {
		logger.Info("Image reported", "image_id", imageID, "reporter_id", actor.ID)
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "Report received. The image is hidden pending review."}, app)
}

type reportView struct {
	ID         int64     `json:"id"`
	Reason     string    `json:"reason"`
	ReporterID int64     `json:"reporter_id"`
	CreatedAt  time.Time `json:"created_at"`
	Image      imageView `json:"image"`
}

// HandleReportedImages lists open reports for the moderation queue.
func HandleReportedImages(w http.ResponseWriter, r *http.Request, app App) {
	reports, err := app.DB().ListReports()
	if err != nil {
		app.Logger().Error("Failed to list reports", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}

	views := make([]reportView, 0, len(reports))
	for i := range reports {
		views = append(views, reportView{
			ID:         reports[i].ID,
			Reason:     reports[i].Reason,
			ReporterID: reports[i].ReporterID,
			CreatedAt:  reports[i].CreatedAt,
			Image:      newImageView(&reports[i].Image),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": views,
		"total":   len(views),
	}, app)
}

// HandleResolveReport closes a report. Action "delete" removes the image
// and its file; action "cancel" restores the image to public view. Either
// way the image becomes reportable again.
func HandleResolveReport(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleResolveReport")
	actor := ActorFromContext(r.Context())

	reportID, err := strconv.ParseInt(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid report id."}, app)
		return
	}
	if _, err := app.DB().GetReport(reportID); err != nil {
		notFoundOrError(w, r, app, err, "Report")
		return
	}

	action := r.FormValue("action")
	switch action {
	case "delete":
		err = app.DB().ResolveReportDelete(reportID, app.Storage())
	case "cancel":
		err = app.DB().ResolveReportCancel(reportID)
	default:
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Action must be \"delete\" or \"cancel\"."}, app)
		return
	}
	if err != nil {
		logger.Error("Failed to resolve report", "report_id", reportID, "action", action, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to resolve report."}, app)
		return
	}

	logger.Info("Report resolved", "report_id", reportID, "action", action, "moderator_id", actor.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "Report resolved.", "action": action}, app)
}

// HandleAdminUserList lists accounts with an optional search query.
func HandleAdminUserList(w http.ResponseWriter, r *http.Request, app App) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page := pageParam(r)

	users, total, err := app.DB().SearchUsers(query, page, config.UserPageSize)
	if err != nil {
		app.Logger().Error("Failed to search users", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users":       views,
		"page":        page,
		"total":       total,
		"total_pages": totalPages(total, config.UserPageSize),
	}, app)
}

func adminUserIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
}

// HandleAdminUserDetail returns one account with its usage counters.
func HandleAdminUserDetail(w http.ResponseWriter, r *http.Request, app App) {
	userID, err := adminUserIDParam(r)
	if err != nil {
		respondJSONBadID(w, app)
		return
	}
	user, err := app.DB().GetUserByID(userID)
	if err != nil {
		notFoundOrError(w, r, app, err, "User")
		return
	}
	albums, images, favorites, err := app.DB().UserStats(userID)
	if err != nil {
		app.Logger().Error("Failed to load user stats", "user_id", userID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":      newUserView(user),
		"albums":    albums,
		"images":    images,
		"favorites": favorites,
	}, app)
}

func respondJSONBadID(w http.ResponseWriter, app App) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid user id."}, app)
}

// HandleAdminUserImages lists every image a user owns, private ones included.
func HandleAdminUserImages(w http.ResponseWriter, r *http.Request, app App) {
	userID, err := adminUserIDParam(r)
	if err != nil {
		respondJSONBadID(w, app)
		return
	}
	if _, err := app.DB().GetUserByID(userID); err != nil {
		notFoundOrError(w, r, app, err, "User")
		return
	}
	page := pageParam(r)

	images, total, err := app.DB().ListImagesByUser(userID, r.URL.Query().Get("category"), page, config.ImagePageSize)
	if err != nil {
		app.Logger().Error("Failed to list user images", "user_id", userID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"images":      imageViews(images),
		"page":        page,
		"total":       total,
		"total_pages": totalPages(total, config.ImagePageSize),
	}, app)
}

// HandleAdminUserAlbums lists a user's albums.
func HandleAdminUserAlbums(w http.ResponseWriter, r *http.Request, app App) {
	userID, err := adminUserIDParam(r)
	if err != nil {
		respondJSONBadID(w, app)
		return
	}
	if _, err := app.DB().GetUserByID(userID); err != nil {
		notFoundOrError(w, r, app, err, "User")
		return
	}
	albums, err := app.DB().ListAlbumsByUser(userID)
	if err != nil {
		app.Logger().Error("Failed to list user albums", "user_id", userID, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"albums": albums}, app)
}

// HandleAdminDeleteUser removes an account with everything it owns:
// albums, images, stored files, comments, likes, favorites and reports.
func HandleAdminDeleteUser(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleAdminDeleteUser")
	actor := ActorFromContext(r.Context())

	userID, err := adminUserIDParam(r)
	if err != nil {
		respondJSONBadID(w, app)
		return
	}
	if userID == actor.ID {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "You cannot delete your own account here."}, app)
		return
	}

	if err := app.DB().DeleteUserAccount(userID, app.Storage()); err != nil {
		notFoundOrError(w, r, app, err, "User")
		return
	}

	logger.Info("User account deleted", "user_id", userID, "deleted_by", actor.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "User deleted."}, app)
}
