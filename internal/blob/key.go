package blob

import (
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const keyTimeFormat = "20060102T150405Z"

// NewKey derives a fresh object key from the submitted file name, or the store
// id when no file name was given, plus a UTC timestamp and a random suffix.
func NewKey(prefix, storeID, filename, contentType string, now time.Time) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	if filename == "" || base == "" || base == "." || base == "/" {
		base = storeID
	}
	base = sanitize(base)
	if base == "" {
		base = "upload"
	}

	ext := sanitize(path.Ext(filename))
	if ext == "" || ext == "." {
		ext = extensionFor(contentType)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := base + "_" + now.UTC().Format(keyTimeFormat) + "_" + suffix + ext

	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	case "image/tiff":
		return ".tiff"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
