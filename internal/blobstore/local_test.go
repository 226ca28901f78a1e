package blobstore

import (
	"context"
	"io"
	"strings"
	"testing"
)

func newLocalStoreForTest(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir(), "taskdeck://blobs")
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	return s
}

func TestPutOpenDelete_RoundTrip(t *testing.T) {
	s := newLocalStoreForTest(t)
	ctx := context.Background()

	n, err := s.Put(ctx, "tasks/files/notes.txt", strings.NewReader("remember the milk"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != int64(len("remember the milk")) {
		t.Fatalf("wrote %d bytes", n)
	}

	rc, err := s.Open(ctx, "tasks/files/notes.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "remember the milk" {
		t.Fatalf("body = %q", body)
	}

	if err := s.Delete(ctx, "tasks/files/notes.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Open(ctx, "tasks/files/notes.txt"); err == nil {
		t.Fatal("expected open to fail after delete")
	}
}

func TestPut_OverwritesExistingKey(t *testing.T) {
	s := newLocalStoreForTest(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, "k.txt", strings.NewReader("old")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "k.txt", strings.NewReader("new")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	rc, err := s.Open(ctx, "k.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "new" {
		t.Fatalf("body = %q, want new", body)
	}
}

func TestDelete_MissingKeyIsSilent(t *testing.T) {
	s := newLocalStoreForTest(t)
	if err := s.Delete(context.Background(), "never/was.txt"); err != nil {
		t.Fatalf("delete of missing key: %v", err)
	}
}

func TestResolveURLAndKeyFromURL_AreInverses(t *testing.T) {
	s := newLocalStoreForTest(t)

	tests := []string{
		"tasks/files/report_1756710000000_a1b2c3.pdf",
		"tasks/images/photo with space.png",
		"tasks/files/ünïcode.txt",
	}
	for _, key := range tests {
		resolved, err := s.ResolveURL(key)
		if err != nil {
			t.Fatalf("resolve %q: %v", key, err)
		}
		if !strings.HasPrefix(resolved, "taskdeck://blobs/") {
			t.Fatalf("url = %q, want base prefix", resolved)
		}
		back, err := s.KeyFromURL(resolved)
		if err != nil {
			t.Fatalf("key from %q: %v", resolved, err)
		}
		if back != key {
			t.Fatalf("round trip gave %q, want %q", back, key)
		}
	}
}

func TestKeyFromURL_RejectsForeignURLs(t *testing.T) {
	s := newLocalStoreForTest(t)

	tests := []string{
		"",
		"https://bucket.example/tasks/files/x.txt",
		"taskdeck://blobs",
		"taskdeck://blobs/",
	}
	for _, raw := range tests {
		if _, err := s.KeyFromURL(raw); err == nil {
			t.Fatalf("expected rejection for %q", raw)
		}
	}
}

func TestPathTraversalKeysRejected(t *testing.T) {
	s := newLocalStoreForTest(t)
	ctx := context.Background()

	tests := []string{
		"",
		"/etc/passwd",
		"../outside.txt",
		"tasks/../../outside.txt",
	}
	for _, key := range tests {
		if _, err := s.Put(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("put accepted bad key %q", key)
		}
		if _, err := s.ResolveURL(key); err == nil {
			t.Fatalf("resolve accepted bad key %q", key)
		}
	}
}

func TestNewLocalStore_RequiresRootAndBaseURL(t *testing.T) {
	if _, err := NewLocalStore("", "taskdeck://blobs"); err == nil {
		t.Fatal("expected missing root error")
	}
	if _, err := NewLocalStore(t.TempDir(), "  "); err == nil {
		t.Fatal("expected missing base url error")
	}
}
