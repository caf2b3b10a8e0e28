package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Service wraps the rationale-images bucket. Objects are keyed under the
// owning document's id so a document delete can clear them by prefix.
type Service struct {
	client *gcs.Client
	bucket string
}

func NewService(ctx context.Context, bucketName string) (*Service, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("storage bucket name is empty")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	log.Printf("INFO: Object storage initialized for bucket %s", bucketName)
	return &Service{client: client, bucket: bucketName}, nil
}

// UploadObject writes one object and returns its public URL.
func (s *Service) UploadObject(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.CacheControl = "public, max-age=3600"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer for object %q: %w", key, err)
	}

	return s.PublicURL(key), nil
}

func (s *Service) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	keys := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// DeletePrefix removes every object under prefix. Per-object failures are
// logged and skipped; a leftover object never blocks the caller's delete.
func (s *Service) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := s.ListKeys(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
			log.Printf("WARNING: Failed to delete object %s: %v", key, err)
		}
	}
	return nil
}

func (s *Service) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}

// ExtensionForContentType picks the file extension used in object keys.
func ExtensionForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	case "image/tiff":
		return ".tiff"
	default:
		return ".png"
	}
}
