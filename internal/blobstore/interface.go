package blobstore

import (
	"context"
	"io"
)

// BlobStore is the byte-storage abstraction used by AttachmentService.
// ResolveURL and KeyFromURL are exact inverses: any URL produced by
// ResolveURL parses back to the original key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	ResolveURL(key string) (string, error)
	KeyFromURL(url string) (string, error)
	Delete(ctx context.Context, key string) error
}
