// Package storage contains the S3-compatible object store abstraction used as the cloud target.
package storage

import (
	"context"
	"io"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; -1 lets the backend buffer.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a single-bucket object store client. Put overwrites existing keys.
// There is no delete: objects written here are backups and are never removed by this service.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// BucketReady reports whether the configured bucket exists and is reachable.
	BucketReady(ctx context.Context) (bool, error)
	// EnsureBucket creates the bucket when it is missing.
	EnsureBucket(ctx context.Context) error
	// Bucket returns the bucket name.
	Bucket() string
}
