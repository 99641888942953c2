package media

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// ObjectKey names an uploaded file: <dir>/<unix ms>-<slug of base name><ext>.
func ObjectKey(dir, filename string, now time.Time) string {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "file"
	}
	return dir + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + name + ext
}

// URL is the public path an object key is served from.
func URL(key string) string {
	return "/uploads/" + key
}
