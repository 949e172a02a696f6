package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hubs-api/hubs-api/internal/hubs"
)

func TestFileStoreContract(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("store init error: %v", err)
	}
	runDatabaseContract(t, st)
}

func TestFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestFileStoreRecoversSequenceOnReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("store init error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := st.Add(ctx, hubs.Fields{"n": i}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	hub, err := reopened.Add(ctx, hubs.Fields{"n": 3})
	if err != nil {
		t.Fatalf("add after reopen: %v", err)
	}
	if hub.ID != 4 {
		t.Fatalf("expected id 4 after reopen, got %d", hub.ID)
	}

	all, err := reopened.Find(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 hubs on disk, got %d", len(all))
	}
}

func TestFileStoreLeavesNoTempFilesAndIgnoresJunk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "abc.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("store init error: %v", err)
	}
	if _, err := st.Add(ctx, hubs.Fields{"name": "alpha"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := st.Update(ctx, "1", hubs.Fields{"name": "beta"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, ".hub-*"))
	if len(matches) != 0 {
		t.Fatalf("temporary files should be cleaned up, found %v", matches)
	}
	if _, err := os.Stat(filepath.Join(dir, "1.json")); err != nil {
		t.Fatalf("expected document file: %v", err)
	}

	all, err := st.Find(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(all) != 1 || all[0].Fields["name"] != "beta" {
		t.Fatalf("unexpected hubs %+v", all)
	}
}

func TestFileStoreCorruptDocumentIsAnError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "1.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt doc: %v", err)
	}
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("store init error: %v", err)
	}
	if _, err := st.FindByID(context.Background(), "1"); err == nil {
		t.Fatalf("expected decode error for corrupt document")
	}
}
