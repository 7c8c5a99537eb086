// Package filestore defines the object-storage contract for the
// optional remote dataset source. The dashboard treats a bucket of CSV
// and Parquet objects exactly like the local datasets directory.
package filestore

import (
	"context"
	"io"
	"time"
)

// Store is the interface an object-storage provider must implement.
// Scoped to the read operations the dataset browser needs.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// ListObjects returns all objects in the configured bucket whose
	// key starts with prefix, recursively.
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// GetObject opens a streaming handle to the object at key.
	// The caller must close it after reading.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// Close releases any held resources.
	Close() error
}

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Config holds the settings for an object-storage dataset source.
type Config struct {
	// Endpoint is the host:port of the storage server.
	Endpoint string

	// AccessKey and SecretKey are the S3-style credentials.
	AccessKey string
	SecretKey string

	// Bucket is the single bucket the dataset browser reads from.
	Bucket string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool
}
