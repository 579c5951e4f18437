package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore keeps uploaded blobs.
type ObjectStore interface {
	// Put stores size bytes of body under key and reports what the store
	// actually kept.
	Put(ctx context.Context, key string, body io.Reader, size int64) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet signs a download URL for key without checking that the
	// object still exists.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ObjectInfo struct {
	Key  string
	Size int64
	// ETag as returned by the provider, usually a quoted hex md5.
	ETag string
}
