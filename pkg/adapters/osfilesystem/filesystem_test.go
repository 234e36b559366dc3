package osfilesystem

import (
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesParents(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")

	if err := fs.WriteFile(path, []byte("hello")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected hello, got %q", string(data))
	}
}

func TestExists(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	exists, err := fs.Exists(path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("expected missing file to not exist")
	}

	if err := fs.WriteFile(path, []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	exists, err = fs.Exists(path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("expected written file to exist")
	}
}

func TestRemove(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "f.txt")

	if err := fs.WriteFile(path, []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	exists, _ := fs.Exists(path)
	if exists {
		t.Error("expected removed file to not exist")
	}
}
