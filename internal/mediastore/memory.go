package mediastore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

// MemoryStore keeps media in process memory. It backs local development
// when no object storage is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

type memoryObject struct {
	contentType string
	data        []byte
}

// NewMemoryStore creates an empty store serving URLs under baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *MemoryStore) Upload(ctx context.Context, f File) (Media, error) {
	if err := ctx.Err(); err != nil {
		return Media{}, err
	}
	if f.Content == nil {
		return Media{}, ErrEmptyFile
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f.Content); err != nil {
		return Media{}, err
	}
	if buf.Len() == 0 {
		return Media{}, ErrEmptyFile
	}

	id := newObjectID("media", f.Filename)
	s.mu.Lock()
	s.objects[id] = memoryObject{contentType: f.ContentType, data: buf.Bytes()}
	s.mu.Unlock()

	return Media{ID: id, URL: s.URL(id)}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) URL(id string) string {
	if id == "" {
		return ""
	}
	return s.baseURL + "/" + id
}

// Get returns the stored bytes and content type.
func (s *MemoryStore) Get(id string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	return obj.data, obj.contentType, ok
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
