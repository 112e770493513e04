// Package codebase indexes a source tree and answers code searches for the
// search_code tool.
package codebase

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// FileInfo is one indexed source file.
type FileInfo struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Lines    int      `json:"lines"`
	Symbols  []string `json:"symbols,omitempty"`
}

// Match is one search hit.
type Match struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

var languageByExt = map[string]string{
	".go": "go",
	".py": "python",
	".js": "javascript",
	".ts": "typescript",
}

// Coarse symbol extraction; names only, no real parsing.
var symbolPatterns = map[string]*regexp.Regexp{
	"go":         regexp.MustCompile(`^\s*(?:func|type)\s+(?:\([^)]*\)\s*)?(\w+)`),
	"python":     regexp.MustCompile(`^\s*(?:def|class)\s+(\w+)`),
	"javascript": regexp.MustCompile(`^\s*(?:function|class)\s+(\w+)`),
	"typescript": regexp.MustCompile(`^\s*(?:function|class|interface)\s+(\w+)`),
}

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
}

// Index holds the scanned view of a source tree.
type Index struct {
	mu    sync.Mutex
	root  string
	files []FileInfo
}

// Scan walks root and builds an index of recognized source files.
func Scan(root string) (*Index, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve index root: %w", err)
	}

	idx := &Index{root: absRoot}
	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		lang, ok := languageByExt[filepath.Ext(path)]
		if !ok {
			return nil
		}
		info, err := scanFile(path, lang)
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(absRoot, path)
		info.Path = rel
		idx.files = append(idx.files, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source tree: %w", err)
	}

	sort.Slice(idx.files, func(i, j int) bool { return idx.files[i].Path < idx.files[j].Path })
	return idx, nil
}

func scanFile(path, lang string) (FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, err
	}
	defer f.Close()

	info := FileInfo{Language: lang}
	pattern := symbolPatterns[lang]

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		info.Lines++
		if m := pattern.FindStringSubmatch(scanner.Text()); m != nil {
			info.Symbols = append(info.Symbols, m[1])
		}
	}
	return info, scanner.Err()
}

// Files returns the indexed files.
func (idx *Index) Files() []FileInfo {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]FileInfo, len(idx.files))
	copy(out, idx.files)
	return out
}

// SymbolCount sums symbols across all indexed files.
func (idx *Index) SymbolCount() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	n := 0
	for _, f := range idx.files {
		n += len(f.Symbols)
	}
	return n
}

// SearchCode scans indexed files for lines containing query
// (case-insensitive). filePattern, when non-empty, is a glob matched
// against base names. At most maxMatches hits are returned; 0 means 100.
func (idx *Index) SearchCode(query, filePattern string, maxMatches int) ([]Match, error) {
	idx.mu.Lock()
	files := make([]FileInfo, len(idx.files))
	copy(files, idx.files)
	root := idx.root
	idx.mu.Unlock()

	if maxMatches <= 0 {
		maxMatches = 100
	}
	queryLower := strings.ToLower(query)

	var matches []Match
	for _, fi := range files {
		if filePattern != "" {
			ok, err := filepath.Match(filePattern, filepath.Base(fi.Path))
			if err != nil {
				return nil, fmt.Errorf("invalid file pattern: %w", err)
			}
			if !ok {
				continue
			}
		}

		f, err := os.Open(filepath.Join(root, fi.Path))
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if strings.Contains(strings.ToLower(line), queryLower) {
				matches = append(matches, Match{
					Path:    fi.Path,
					Line:    lineNo,
					Content: strings.TrimSpace(line),
				})
				if len(matches) >= maxMatches {
					f.Close()
					return matches, nil
				}
			}
		}
		f.Close()
	}
	return matches, nil
}
