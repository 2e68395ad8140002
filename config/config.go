// fotohub/config/config.go
package config

const (
	AppVersion = "1.2.0"

	// Form & Content Limits
	MaxTitleLen    = 255
	MaxCommentLen  = 4000
	MaxReasonLen   = 1000
	MaxUsernameLen = 150
	MinPasswordLen = 8

	// File Upload Limits
	MaxFileSize     = 15 * 1024 * 1024 // 15MB
	MaxResizeWidth  = 4000
	MaxResizeHeight = 4000
	JPEGQuality     = 90

	// Listing Page Sizes
	ImagePageSize = 12
	UserPageSize  = 20

	// Session Defaults
	DefaultSessionTTL = "168h" // one week
	SessionCookieName = "fotohub_session"

	// Outbound Fetch Defaults
	DefaultFetchTimeout = "15s"

	// Rate Limiting Defaults
	DefaultRateLimitEvery  = "10s"
	DefaultRateLimitBurst  = 5
	DefaultRateLimitPrune  = "1h"
	DefaultRateLimitExpire = "24h"
)
