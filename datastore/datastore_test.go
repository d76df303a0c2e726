package datastore

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, path string) *DataStore {
	t.Helper()
	ds, err := NewWithConfig(&Config{
		FilePath:         path,
		AutoSaveInterval: time.Hour, // tests save explicitly
		BackupCount:      0,
	})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestAddGetDelete(t *testing.T) {
	ds := newTestStore(t, filepath.Join(t.TempDir(), "store.json"))
	defer ds.Close()

	ds.Add("guild-1", map[string]any{"name": "one"})

	got, ok := ds.Get("guild-1")
	if !ok {
		t.Fatal("Get returned no value")
	}
	if m, _ := got.(map[string]any); m["name"] != "one" {
		t.Fatalf("Get = %v, want name=one", got)
	}

	ds.Delete("guild-1")
	if _, ok := ds.Get("guild-1"); ok {
		t.Fatal("value survived Delete")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	ds := newTestStore(t, path)
	ds.Add("guild-1", map[string]any{"plays": float64(3)})
	if err := ds.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := newTestStore(t, path)
	defer reopened.Close()

	got, ok := reopened.Get("guild-1")
	if !ok {
		t.Fatal("value lost across reopen")
	}
	if m, _ := got.(map[string]any); m["plays"] != float64(3) {
		t.Fatalf("Get after reopen = %v", got)
	}
}

func TestOperationsAfterCloseAreNoops(t *testing.T) {
	ds := newTestStore(t, filepath.Join(t.TempDir(), "store.json"))
	if err := ds.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ds.Add("late", "value")
	if _, ok := ds.Get("late"); ok {
		t.Fatal("Add after Close should be dropped")
	}

	// Second Close is harmless.
	if err := ds.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path); err == nil {
		t.Fatal("expected an error loading corrupt JSON")
	}
}

func TestKeysSorted(t *testing.T) {
	ds := newTestStore(t, filepath.Join(t.TempDir(), "store.json"))
	defer ds.Close()

	ds.Add("b", 1)
	ds.Add("a", 2)
	ds.Add("c", 3)

	keys := ds.Keys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys = %v, want %v", keys, want)
		}
	}
}
