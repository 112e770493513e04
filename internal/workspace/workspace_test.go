package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestWriteRead(t *testing.T) {
	s := newStore(t)

	if err := s.Write("notes/today.md", "hello"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Read("notes/today.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("Expected hello, got %q", got)
	}
}

func TestRead_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Read("missing.txt")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestWrite_NoPartialFiles(t *testing.T) {
	s := newStore(t)

	if err := s.Write("a.txt", "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("a.txt", "second"); err != nil {
		t.Fatal(err)
	}

	// Nothing but the final file should remain in the directory.
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".agentctl-") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}

	got, _ := s.Read("a.txt")
	if got != "second" {
		t.Errorf("Expected second, got %q", got)
	}
}

func TestPathConfinement(t *testing.T) {
	s := newStore(t)

	for _, p := range []string{"../outside.txt", "../../etc/passwd", "a/../../b"} {
		if err := s.Write(p, "x"); err == nil {
			t.Errorf("Expected escape %q to be rejected", p)
		}
		if _, err := s.Read(p); err == nil {
			t.Errorf("Expected read escape %q to be rejected", p)
		}
	}
}

func TestBackup(t *testing.T) {
	s := newStore(t)

	if err := s.Write("config.yaml", "a: 1"); err != nil {
		t.Fatal(err)
	}
	backup, err := s.Backup("config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(backup, "config.yaml.backup_") {
		t.Errorf("Unexpected backup name: %q", backup)
	}
	got, err := s.Read(backup)
	if err != nil || got != "a: 1" {
		t.Errorf("Backup content mismatch: %q, %v", got, err)
	}
}

func TestCopyDeleteList(t *testing.T) {
	s := newStore(t)

	if err := s.Write("src.txt", "data"); err != nil {
		t.Fatal(err)
	}
	if err := s.Copy("src.txt", "sub/dst.txt"); err != nil {
		t.Fatal(err)
	}

	names, err := s.List("")
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "src.txt") || !strings.Contains(joined, "sub/") {
		t.Errorf("Unexpected listing: %v", names)
	}

	if err := s.Delete("src.txt"); err != nil {
		t.Fatal(err)
	}
	if s.Exists("src.txt") {
		t.Error("Deleted file should not exist")
	}
	if err := s.Delete("src.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestNewStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "ws")
	s, err := NewStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Root()); err != nil {
		t.Errorf("Root directory not created: %v", err)
	}
}
