// Package mediastore is the client side of the external media host. Uploads
// return an opaque identifier plus a public URL; deletes are idempotent.
package mediastore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyFile is returned when an upload has no content.
var ErrEmptyFile = errors.New("mediastore: empty file")

// File is a single upload.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Media identifies a stored object.
type Media struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Store is the external media host.
type Store interface {
	Upload(ctx context.Context, f File) (Media, error)
	// Delete removes the object. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
	// URL derives the public URL for a stored ID without a network call.
	URL(id string) string
}

// newObjectID builds "<prefix>/<uuid><ext>" keeping the original extension.
func newObjectID(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 6 {
		ext = ""
	}
	id := uuid.NewString() + ext
	if prefix == "" {
		return id
	}
	return strings.TrimSuffix(prefix, "/") + "/" + id
}

// Unwrap walks wrapper stores down to the innermost one.
func Unwrap(s Store) Store {
	for {
		w, ok := s.(interface{ Unwrap() Store })
		if !ok {
			return s
		}
		s = w.Unwrap()
	}
}
