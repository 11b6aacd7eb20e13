package media

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var listableExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
	".mp4":  {},
	".mov":  {},
}

var uploadMimeTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// IsListable reports whether name has a media extension shown in product galleries.
func IsListable(name string) bool {
	_, ok := listableExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// SafeName slugs an uploaded filename: accents stripped, lowercase, runs of other
// characters collapsed to a single dash. The extension is kept lowercased.
func SafeName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	slug := slugify(stem)
	if slug == "" {
		slug = "archivo"
	}
	ext = "." + slugify(strings.TrimPrefix(ext, "."))
	if ext == "." {
		ext = ""
	}
	return slug + ext
}

func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
