// fotohub/database/migrations.go
package database

// migration represents a single database schema migration.
type migration struct {
	Version uint
	Query   string
}

// allMigrations holds all schema changes in order.
var allMigrations = []migration{
	{
		Version: 1,
		Query: `
-- Track the last profile update so moderators can spot churned accounts
ALTER TABLE users ADD COLUMN updated_at DATETIME;

CREATE INDEX IF NOT EXISTS idx_images_private ON images(is_private);
		`,
	},
}
