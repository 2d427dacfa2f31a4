// Package util holds the small key and name helpers shared by storage and caching.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
	"unicode/utf8"
)

const maxObjectNameLen = 96

// Digest hashes parts joined by NUL and returns the first n hex characters.
// n outside 1..64 yields the full digest.
func Digest(n int, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	out := hex.EncodeToString(sum[:])
	if n <= 0 || n >= len(out) {
		return out
	}
	return out[:n]
}

// OwnerKey is the namespace for everything stored on behalf of userID.
// Account and guest ids never appear in object paths or cache keys verbatim.
func OwnerKey(userID string) string {
	return Digest(0, strings.TrimSpace(userID))
}

// SafeObjectName reduces an uploaded file name to a single path element made
// of [A-Za-z0-9._-]. It returns false when nothing usable remains.
func SafeObjectName(name string) (string, bool) {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := path.Base(name)
	if base == "." || base == ".." || base == "/" {
		return "", false
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		case r == utf8.RuneError:
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "", false
	}
	if len(out) > maxObjectNameLen {
		ext := path.Ext(out)
		if len(ext) > 10 {
			ext = ""
		}
		out = out[:maxObjectNameLen-len(ext)] + ext
	}
	return out, true
}
