// Package checksum fingerprints journal files for change detection and
// optimistic concurrency.
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

// Matches reports whether tag (an If-Match value, optionally quoted) equals
// the checksum of data. An empty tag always matches.
func Matches(data []byte, tag string) bool {
	tag = strings.Trim(strings.TrimSpace(tag), `"`)
	return tag == "" || tag == Sum(data)
}
