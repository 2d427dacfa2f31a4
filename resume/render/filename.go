package render

import (
	"strings"
	"unicode"
)

// FileName builds the download name "{fullName}_{title}.{ext}". Whitespace runs
// collapse to one underscore; characters unsafe in a Content-Disposition header
// are dropped.
func FileName(fullName, title, ext string) string {
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = "Resume"
	}
	base := name
	if t := strings.TrimSpace(title); t != "" {
		base += "_" + t
	}
	base = strings.Join(strings.Fields(base), "_")

	var b strings.Builder
	for _, r := range base {
		switch {
		case r == '"' || r == '\\' || r == '/' || r == ':' || r == ';':
			continue
		case unicode.IsControl(r):
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		out = "Resume"
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return out
	}
	return out + "." + ext
}
