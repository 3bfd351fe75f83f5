package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"socialhub/internal/mediastore"
)

// ErrUpload is the default failure returned by MediaStore when an upload is
// configured to fail.
var ErrUpload = errors.New("media store unavailable")

// MediaStore is a mediastore.Store double recording every call.
type MediaStore struct {
	mu      sync.Mutex
	seq     int
	uploads []string
	deletes []string

	// FailUploadAt makes the n-th upload call (1-based) fail. Zero disables.
	FailUploadAt int
	// UploadErr overrides ErrUpload.
	UploadErr error
	// DeleteErr is returned by every Delete call, after it is recorded.
	DeleteErr error
}

var _ mediastore.Store = (*MediaStore)(nil)

func (m *MediaStore) Upload(ctx context.Context, f mediastore.File) (mediastore.Media, error) {
	if err := ctx.Err(); err != nil {
		return mediastore.Media{}, err
	}
	if f.Content != nil {
		_, _ = io.Copy(io.Discard, f.Content)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if m.FailUploadAt > 0 && m.seq == m.FailUploadAt {
		if m.UploadErr != nil {
			return mediastore.Media{}, m.UploadErr
		}
		return mediastore.Media{}, ErrUpload
	}
	id := fmt.Sprintf("media/%03d-%s", m.seq, f.Filename)
	m.uploads = append(m.uploads, id)
	return mediastore.Media{ID: id, URL: m.url(id)}, nil
}

func (m *MediaStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	return m.DeleteErr
}

func (m *MediaStore) URL(id string) string {
	return m.url(id)
}

func (m *MediaStore) url(id string) string {
	if id == "" {
		return ""
	}
	return "https://media.test/" + id
}

// Uploads returns the IDs of successful uploads in call order.
func (m *MediaStore) Uploads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}

// Deletes returns every ID passed to Delete, in call order.
func (m *MediaStore) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// Reset forgets recorded calls.
func (m *MediaStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = nil
	m.deletes = nil
}
