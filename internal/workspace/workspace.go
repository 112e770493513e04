// Package workspace is the file store for agent edits. Every path is
// confined to the workspace root; writes are atomic.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound marks reads of paths that do not exist.
var ErrNotFound = errors.New("file not found")

// Store confines file operations to a root directory.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}
	return &Store{root: absRoot}, nil
}

// Root returns the absolute workspace root.
func (s *Store) Root() string {
	return s.root
}

// resolve joins path under the root and rejects escapes.
func (s *Store) resolve(path string) (string, error) {
	target := filepath.Join(s.root, path)
	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == ".." || (len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe path attempt: %s", path)
	}
	return target, nil
}

// Read returns the file's content. A missing file yields an error wrapping
// ErrNotFound.
func (s *Store) Read(path string) (string, error) {
	target, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// Write creates or replaces a file. Parent directories are created as
// needed. The content lands on the final path via temp-file-then-rename, so
// a crash never leaves a partial file there.
func (s *Store) Write(path, content string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".agentctl-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Chmod(target, 0644)
}

// Backup copies a file next to itself with a timestamp suffix and returns
// the backup's workspace-relative path.
func (s *Store) Backup(path string) (string, error) {
	content, err := s.Read(path)
	if err != nil {
		return "", err
	}
	backupPath := fmt.Sprintf("%s.backup_%s", path, time.Now().Format("20060102_150405"))
	if err := s.Write(backupPath, content); err != nil {
		return "", err
	}
	return backupPath, nil
}

// Copy duplicates src to dst within the workspace.
func (s *Store) Copy(src, dst string) error {
	content, err := s.Read(src)
	if err != nil {
		return err
	}
	return s.Write(dst, content)
}

// Delete removes a file.
func (s *Store) Delete(path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// List returns directory entry names, directories suffixed with "/".
func (s *Store) List(path string) ([]string, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}

// Exists reports whether a path is present in the workspace.
func (s *Store) Exists(path string) bool {
	target, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(target)
	return err == nil
}
