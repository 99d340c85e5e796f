package app

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DefaultCategory is used when the caller supplies no usable category.
const DefaultCategory = "cities"

var (
	categoryStrip  = regexp.MustCompile(`[^a-z0-9-_]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	filenameStrip  = regexp.MustCompile(`[^A-Za-z0-9.\-_]`)
)

// MakeKey derives the storage key for an upload:
// {category}/{uuid}-{sanitized filename}.
// The category keeps only [a-z0-9-_] after lower-casing; the filename has
// whitespace runs collapsed to "-" and everything outside [A-Za-z0-9.-_]
// dropped. The fresh uuid makes two uploads of the same filename
// collision-free, so no store lookup is needed here.
func MakeKey(category, filename string) string {
	cat := categoryStrip.ReplaceAllString(strings.ToLower(category), "")
	if cat == "" {
		cat = DefaultCategory
	}

	name := whitespaceRuns.ReplaceAllString(filename, "-")
	name = filenameStrip.ReplaceAllString(name, "")

	return cat + "/" + uuid.New().String() + "-" + name
}
