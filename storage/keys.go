package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultImagePrefix    = "images"
	defaultImageExt       = "png"
	defaultDocumentPrefix = "documents"
	packagePrefix         = "packages/"
)

// ImageKey returns "<prefix>/<YYYY-MM-DD>/<uuid>.<ext>".
func ImageKey(prefix, ext string, now time.Time) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultImagePrefix
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = defaultImageExt
	}
	return fmt.Sprintf("%s/%s/%s.%s", prefix, now.Format("2006-01-02"), uuid.NewString(), ext)
}

// DocumentKey returns "<prefix>/<user_id>/<unix_ms>_<uuid>.md".
func DocumentKey(prefix string, userID uint, now time.Time) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultDocumentPrefix
	}
	return fmt.Sprintf("%s/%d/%d_%s.md", prefix, userID, now.UnixMilli(), uuid.NewString())
}

// IconKey is where a package icon named by its md5 lives.
func IconKey(name string) string {
	return "package_icons/" + name + ".png"
}

// ManifestKey maps a package key such as "packages/app/1.0.ipa" to
// "packages/plists/app/1.0.plist".
func ManifestKey(packageKey string) string {
	name := strings.TrimPrefix(packageKey, packagePrefix)
	name = strings.TrimSuffix(name, path.Ext(name))
	return packagePrefix + "plists/" + name + ".plist"
}
