package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/quire/internal/collection"
	"github.com/starford/quire/internal/storage"
)

// watcherTestEnv sets up a content root with a blog dir, storage, layout, and DB.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *collection.Layout, *DB) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "blog"), 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	layout, err := collection.NewLayout(nil)
	if err != nil {
		t.Fatal(err)
	}
	return root, store, layout, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	root, store, layout, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, layout, root, quietLogger(), func(op, path string) {
		mu.Lock()
		events = append(events, op+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "blog", "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("blog/new.md")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:blog/new.md" {
				return true
			}
		}
		return false
	}, "expected created:blog/new.md callback")
}

func TestWatcher_IgnoresFilesOutsideCollections(t *testing.T) {
	root, store, layout, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, layout, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "stray.md"), []byte("# Stray"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "blog", "kept.md"), []byte("# Kept"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("blog/kept.md")
		return cs != ""
	}, "collection file not indexed")

	if cs, _ := db.GetChecksum("stray.md"); cs != "" {
		t.Error("file outside collections was indexed")
	}
}

func TestWatcher_NewCollectionDirWatched(t *testing.T) {
	root, store, layout, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, layout, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	til := filepath.Join(root, "til")
	_ = os.MkdirAll(til, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(til, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("til/deep.md")
		return cs != ""
	}, "file in new collection dir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	root, store, layout, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(root, "blog", "del.md"), []byte("# Delete Me"), 0o644)
	if err := Sync(db, store, layout, quietLogger()); err != nil {
		t.Fatal(err)
	}
	if cs, _ := db.GetChecksum("blog/del.md"); cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, layout, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(root, "blog", "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("blog/del.md")
		return cs == ""
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	root, store, layout, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(root, "blog", "old.md"), []byte("# Rename"), 0o644)
	if err := Sync(db, store, layout, quietLogger()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, layout, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(root, "blog", "old.md"), filepath.Join(root, "blog", "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("blog/old.md")
		newCS, _ := db.GetChecksum("blog/renamed.md")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
