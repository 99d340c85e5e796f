package app

import "time"

// Photo represents a single catalog entry derived from the object store.
// Nothing here is persisted locally; every listing is a live query.
type Photo struct {
	// The key (object name) of the photo in the bucket.
	Name string `json:"name"`

	// The publicly resolvable URL of the photo.
	URL string `json:"url"`

	// Store-reported last-modified timestamp. Nil when the store did not
	// report one; such objects sort as oldest.
	LastModified *time.Time `json:"lastModified,omitempty"`
}
