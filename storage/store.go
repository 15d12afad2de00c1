package storage

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Restore when no earlier version of the object exists.
var ErrNotFound = errors.New("object not found")

// SignedURL is a time-limited URL for a single object operation.
type SignedURL struct {
	URL         string    `json:"url"`
	Method      string    `json:"method"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type,omitempty"`
	Expires     time.Time `json:"expiration"`
}

// Store is the object storage used for packages, icons, manifests and images.
type Store interface {
	// Upload writes r under key and returns the public URL of the object.
	Upload(ctx context.Context, r io.Reader, key, contentType string) (string, error)
	// Delete removes key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// Restore brings back the most recently deleted version of key.
	Restore(ctx context.Context, key string) error
	SignURL(key string, ttl time.Duration) (SignedURL, error)
	SignUploadURL(key, contentType string, ttl time.Duration) (SignedURL, error)
	PublicURL(key string) string
}
