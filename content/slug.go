package content

import (
	"strings"

	"github.com/gosimple/slug"
)

// Slugify derives the URL-safe key for a title or category name.
func Slugify(s string) string {
	return slug.Make(strings.TrimSpace(s))
}
