// Package checksum fingerprints byte content for change detection and
// HTTP validators.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag returns a strong entity tag for data, quoted as HTTP requires.
func ETag(data []byte) string {
	return `"` + Sum(data) + `"`
}

// MatchesETag reports whether an If-None-Match header value matches etag.
// The header may list several tags, weak tags compare by their opaque part,
// and "*" matches anything.
func MatchesETag(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
