package storage

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryStore is an in-process Store. Deleted objects are kept so Restore
// behaves like a versioned bucket.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	deleted map[string][]byte

	// UploadErr and DeleteErr, when set, are returned by every Upload and
	// Delete call.
	UploadErr error
	DeleteErr error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
		deleted: make(map[string][]byte),
	}
}

func (m *MemoryStore) Upload(_ context.Context, r io.Reader, key, _ string) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to read upload")
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return m.PublicURL(key), nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.objects[key]; ok {
		m.deleted[key] = data
		delete(m.objects, key)
	}
	return nil
}

func (m *MemoryStore) Restore(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.deleted[key]
	if !ok {
		return ErrNotFound
	}
	m.objects[key] = data
	delete(m.deleted, key)
	return nil
}

func (m *MemoryStore) SignURL(key string, ttl time.Duration) (SignedURL, error) {
	return SignedURL{URL: m.PublicURL(key) + "?signed=GET", Method: "GET", Key: key, Expires: time.Now().Add(ttl)}, nil
}

func (m *MemoryStore) SignUploadURL(key, contentType string, ttl time.Duration) (SignedURL, error) {
	return SignedURL{URL: m.PublicURL(key) + "?signed=PUT", Method: "PUT", Key: key, ContentType: contentType, Expires: time.Now().Add(ttl)}, nil
}

func (m *MemoryStore) PublicURL(key string) string {
	return m.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Object returns the stored bytes of key.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
