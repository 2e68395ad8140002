// fotohub/utils/utils.go
package utils

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Slugify lowercases a string and collapses anything that is not a letter or
// digit into single hyphens. Used to derive image titles from filenames.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// TitleFromFilename derives a default image title from an uploaded filename.
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	return Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}
