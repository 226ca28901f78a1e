package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore stores blob bytes under a local root, addressed by the
// storage keys the attachment layer derives. URLs embed the
// path-escaped key after a fixed base, so deletion can recover the
// key without guessing.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a local blob store rooted at root. baseURL is
// the public prefix embedded in resolved URLs.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob root is required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("blob base url is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: abs, baseURL: baseURL}, nil
}

// Put streams bytes to a temp file and renames it into place under
// key. Returns the number of bytes written.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return 0, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dst, err := s.pathFromKey(key)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), "put-*")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return 0, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return 0, err
	}

	return n, nil
}

// Open returns a reader for blob key content.
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.pathFromKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// ResolveURL returns the public URL for a stored key.
func (s *LocalStore) ResolveURL(key string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("blob store is not configured")
	}
	if _, err := s.pathFromKey(key); err != nil {
		return "", err
	}
	return s.baseURL + "/" + url.PathEscape(key), nil
}

// KeyFromURL inverts ResolveURL. It fails when rawURL was not minted
// by this store.
func (s *LocalStore) KeyFromURL(rawURL string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("blob store is not configured")
	}
	rawURL = strings.TrimSpace(rawURL)
	escaped, ok := strings.CutPrefix(rawURL, s.baseURL+"/")
	if !ok || escaped == "" {
		return "", fmt.Errorf("url does not address this blob store")
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("malformed blob url: %w", err)
	}
	if _, err := s.pathFromKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes a blob object. Missing files are ignored.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if s == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFromKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) pathFromKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("blob key is required")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("blob key must be relative")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.Contains(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob key")
	}
	return filepath.Join(s.root, clean), nil
}

var _ BlobStore = (*LocalStore)(nil)
