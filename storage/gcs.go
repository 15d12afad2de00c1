package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const uploadTimeout = 50 * time.Second

// GCSStore keeps objects in a Google Cloud Storage bucket. Restore needs
// object versioning enabled on the bucket.
type GCSStore struct {
	cl         *gcs.Client
	bucketName string
	baseURL    string
}

// NewGCSStore connects with credentialsFile when it exists and with the
// default credentials otherwise.
func NewGCSStore(ctx context.Context, bucketName, credentialsFile, baseURL string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err == nil {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create storage client")
	}
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucketName
	}
	return &GCSStore{cl: client, bucketName: bucketName, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *GCSStore) Close() error {
	return s.cl.Close()
}

func (s *GCSStore) bucket() *gcs.BucketHandle {
	return s.cl.Bucket(s.bucketName)
}

func (s *GCSStore) Upload(ctx context.Context, r io.Reader, key, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	wc := s.bucket().Object(key).NewWriter(ctx)
	if contentType != "" {
		wc.ContentType = contentType
	}
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.bucket().Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		log.WithField("key", key).Warn("object already gone")
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s", key)
	}
	return nil
}

// Restore copies the newest noncurrent generation of key back to live.
func (s *GCSStore) Restore(ctx context.Context, key string) error {
	it := s.bucket().Objects(ctx, &gcs.Query{Prefix: key, Versions: true})

	var generation int64
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "failed to list versions of %s", key)
		}
		if attrs.Name == key && attrs.Generation > generation {
			generation = attrs.Generation
		}
	}
	if generation == 0 {
		return ErrNotFound
	}

	src := s.bucket().Object(key).Generation(generation)
	if _, err := s.bucket().Object(key).CopierFrom(src).Run(ctx); err != nil {
		return errors.Wrapf(err, "failed to restore %s", key)
	}
	return nil
}

func (s *GCSStore) sign(key, method, contentType string, ttl time.Duration) (SignedURL, error) {
	expires := time.Now().Add(ttl)
	opts := &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      method,
		ContentType: contentType,
		Expires:     expires,
	}

	url, err := s.bucket().SignedURL(key, opts)
	if err != nil {
		return SignedURL{}, errors.Wrap(err, "failed to generate signed URL")
	}
	return SignedURL{URL: url, Method: method, Key: key, ContentType: contentType, Expires: expires}, nil
}

func (s *GCSStore) SignURL(key string, ttl time.Duration) (SignedURL, error) {
	return s.sign(key, "GET", "", ttl)
}

func (s *GCSStore) SignUploadURL(key, contentType string, ttl time.Duration) (SignedURL, error) {
	return s.sign(key, "PUT", contentType, ttl)
}

func (s *GCSStore) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
