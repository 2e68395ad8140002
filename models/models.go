// fotohub/models/models.go
package models

import (
	"database/sql"
	"time"
)

// --- Core Data Models ---

type User struct {
	ID          int64
	Username    string
	Email       string
	FirstName   string
	LastName    string
	IsSuperuser bool
	IsModerator bool
	JoinedAt    time.Time
}

type Album struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	UserID int64  `json:"user_id"`
}

type Image struct {
	ID         int64
	Title      string
	FilePath   string // public path, e.g. /uploads/<name> or an S3 URL
	FileName   string // storage key
	Format     string // "jpeg" or "png" after upload normalization
	Width      int
	Height     int
	SizeBytes  int64
	UploadedAt time.Time
	UserID     sql.NullInt64 // null for guest uploads
	AlbumID    sql.NullInt64
	IsPrivate  bool
	Category   sql.NullString
}

type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ImageID   int64     `json:"image_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Report struct {
	ID         int64     `json:"id"`
	ImageID    int64     `json:"image_id"`
	ReporterID int64     `json:"reporter_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
	Image      Image     `json:"image"` // joined image details for the moderation queue
}

// Categories lists the accepted image categories.
var Categories = []string{
	"animal", "human", "nature", "sports", "food", "architecture",
	"technology", "travel", "music", "art", "other",
}

// ValidCategory reports whether c names a known category. The empty string
// is valid and means uncategorized.
func ValidCategory(c string) bool {
	if c == "" {
		return true
	}
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
