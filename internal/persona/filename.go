package persona

import "strings"

var fileExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DownloadFilename names a transformed image after its background and
// expression, e.g. "persona-berlin-natural.png".
func DownloadFilename(cfg Config, mimeType string) string {
	ext, ok := fileExtensions[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		ext = ".png"
	}
	return "persona-" + string(cfg.Background) + "-" + string(cfg.Expression) + ext
}
