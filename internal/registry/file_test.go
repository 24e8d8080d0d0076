package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.json")
	s, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestFileStoreMissingFileLoadsEmpty(t *testing.T) {
	s, _ := newTestFileStore(t)

	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(doc) != "{}" {
		t.Errorf("missing file should load as empty document, got %s", doc)
	}
}

func TestFileStoreReplaceRoundTrip(t *testing.T) {
	s, path := newTestFileStore(t)
	ctx := context.Background()

	want := []byte(`{"services":{"parks":{}}}`)
	if err := s.Replace(ctx, want); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Load = %s, want %s", got, want)
	}

	// The published file must match and the temp file must be gone.
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read published file: %v", err)
	}
	if string(onDisk) != string(want) {
		t.Errorf("on-disk document = %s, want %s", onDisk, want)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after rename")
	}
}

func TestFileStoreDetectsExternalWrite(t *testing.T) {
	s, path := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Replace(ctx, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	// Simulate a hand edit going around the store.
	if err := os.WriteFile(path, []byte(`{"v":2}`), 0o600); err != nil {
		t.Fatalf("external write: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		doc, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if string(doc) == `{"v":2}` {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("external write was never picked up")
}
