package registry

import (
	"context"
	"testing"
)

func newTestBadgerStore(t *testing.T, name string) *BadgerStore {
	t.Helper()
	db, err := OpenBadger(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBadgerStore(db, name)
}

func TestBadgerStoreEmptyLoad(t *testing.T) {
	s := newTestBadgerStore(t, "services")

	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(doc) != "{}" {
		t.Errorf("empty store should load as empty document, got %s", doc)
	}
}

func TestBadgerStoreReplaceRoundTrip(t *testing.T) {
	s := newTestBadgerStore(t, "clients")
	ctx := context.Background()

	want := `{"clients":{"ck_x":{"name":"n"}}}`
	if err := s.Replace(ctx, []byte(want)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != want {
		t.Errorf("Load = %s, want %s", got, want)
	}
}

func TestBadgerStoreDocumentsAreIndependent(t *testing.T) {
	db, err := OpenBadger(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	services := NewBadgerStore(db, "services")
	clients := NewBadgerStore(db, "clients")

	if err := services.Replace(ctx, []byte(`{"services":{}}`)); err != nil {
		t.Fatalf("Replace services: %v", err)
	}

	doc, err := clients.Load(ctx)
	if err != nil {
		t.Fatalf("Load clients: %v", err)
	}
	if string(doc) != "{}" {
		t.Errorf("clients document should be untouched, got %s", doc)
	}
}
