// Package checksum computes content revisions for notes and exports.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// String returns the digest of s.
func String(s string) string {
	return Sum([]byte(s))
}

// ETag returns s's digest as a strong HTTP entity tag, quotes included.
func ETag(s string) string {
	return `"` + String(s) + `"`
}

// Matches reports whether an If-None-Match header value names etag. It
// accepts "*", weak tags and comma-separated lists.
func Matches(header, etag string) bool {
	for len(header) > 0 {
		var tag string
		tag, header = nextTag(header)
		if tag == "*" || tag == etag || tag == "W/"+etag {
			return true
		}
	}
	return false
}

func nextTag(h string) (tag, rest string) {
	for len(h) > 0 && (h[0] == ' ' || h[0] == ',') {
		h = h[1:]
	}
	for i := 0; i < len(h); i++ {
		if h[i] == ',' {
			return trimSpace(h[:i]), h[i+1:]
		}
	}
	return trimSpace(h), ""
}

func trimSpace(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
