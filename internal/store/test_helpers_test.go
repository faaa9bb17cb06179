package store

import (
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh cache in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestRecord(path, hash string, status FileStatus) FileRecord {
	return FileRecord{
		SourcePath: path,
		SourceHash: hash,
		OutputPath: path[:len(path)-len(filepath.Ext(path))] + ".lua",
		OutputHash: "out-" + hash,
		Status:     status,
	}
}
