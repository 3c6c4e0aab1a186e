// ABOUTME: Tests for the SQLite KV backend
// ABOUTME: Covers CRUD, multi-key operations, and key enumeration

package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "client.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV failed: %v", err)
	}
	return kv
}

func TestNewSQLiteKV(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "client.db")

	kv, err := NewSQLiteKV(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteKV failed: %v", err)
	}
	defer kv.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteKV_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "client.db")

	kv, err := NewSQLiteKV(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteKV failed: %v", err)
	}
	defer kv.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestSQLiteKV_SetGet(t *testing.T) {
	kv := newTestKV(t)
	defer kv.Close()
	ctx := context.Background()

	if err := kv.Set(ctx, KeyAuthToken, "tok-123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := kv.Get(ctx, KeyAuthToken)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("got %q, want %q", got, "tok-123")
	}

	// Overwrite replaces the value
	if err := kv.Set(ctx, KeyAuthToken, "tok-456"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err = kv.Get(ctx, KeyAuthToken)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "tok-456" {
		t.Errorf("got %q, want %q", got, "tok-456")
	}
}

func TestSQLiteKV_GetMissing(t *testing.T) {
	kv := newTestKV(t)
	defer kv.Close()

	_, err := kv.Get(context.Background(), "absent")
	if err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestSQLiteKV_RemoveAbsentKey(t *testing.T) {
	kv := newTestKV(t)
	defer kv.Close()

	if err := kv.Remove(context.Background(), "never-set"); err != nil {
		t.Errorf("Remove of absent key should succeed, got %v", err)
	}
}

func TestSQLiteKV_GetMulti(t *testing.T) {
	kv := newTestKV(t)
	defer kv.Close()
	ctx := context.Background()

	if err := kv.Set(ctx, KeyUser, `{"id":"u1"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(ctx, KeyAuthToken, "tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := kv.GetMulti(ctx, []string{KeyUser, KeyAuthToken, "absent"})
	if err != nil {
		t.Fatalf("GetMulti failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d values, want 2", len(got))
	}
	if got[KeyUser] != `{"id":"u1"}` || got[KeyAuthToken] != "tok" {
		t.Errorf("unexpected values: %v", got)
	}
	if _, ok := got["absent"]; ok {
		t.Error("absent key should be omitted from GetMulti result")
	}
}

func TestSQLiteKV_RemoveMultiAndKeys(t *testing.T) {
	kv := newTestKV(t)
	defer kv.Close()
	ctx := context.Background()

	for _, k := range []string{KeyUser, KeyAuthToken, PrefixChat + "m1", PrefixChatSync + "m1"} {
		if err := kv.Set(ctx, k, "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := kv.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 4 {
		t.Fatalf("got %d keys, want 4", len(keys))
	}

	if err := kv.RemoveMulti(ctx, []string{KeyUser, PrefixChat + "m1", "absent"}); err != nil {
		t.Fatalf("RemoveMulti failed: %v", err)
	}

	keys, err = kv.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("got %d keys after RemoveMulti, want 2: %v", len(keys), keys)
	}
}
