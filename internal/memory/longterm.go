package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Item is one persisted memory.
type Item struct {
	ID          string            `json:"id"`
	Key         string            `json:"key"`
	Value       string            `json:"value"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	AccessedAt  time.Time         `json:"accessed_at"`
	AccessCount int               `json:"access_count"`
}

// document is the on-disk layout. The whole file is rewritten on every
// mutation; there is no incremental append format.
type document struct {
	Memories    []Item            `json:"memories"`
	Preferences map[string]string `json:"preferences"`
}

// LongTerm persists memories and preferences as a single JSON document.
type LongTerm struct {
	mu   sync.Mutex
	path string

	memories    map[string]Item
	preferences map[string]string
}

// NewLongTerm opens (or creates) the store rooted at dir.
func NewLongTerm(dir string) (*LongTerm, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create memory directory: %w", err)
	}

	lt := &LongTerm{
		path:        filepath.Join(dir, "memories.json"),
		memories:    map[string]Item{},
		preferences: map[string]string{},
	}
	lt.load()
	return lt, nil
}

// load tolerates a missing or corrupt file; the store starts empty then.
func (lt *LongTerm) load() {
	data, err := os.ReadFile(lt.path)
	if err != nil {
		return
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return
	}
	for _, m := range doc.Memories {
		lt.memories[m.ID] = m
	}
	if doc.Preferences != nil {
		lt.preferences = doc.Preferences
	}
}

// save rewrites the backing file synchronously. Caller holds the lock.
func (lt *LongTerm) save() error {
	doc := document{
		Memories:    make([]Item, 0, len(lt.memories)),
		Preferences: lt.preferences,
	}
	for _, m := range lt.memories {
		doc.Memories = append(doc.Memories, m)
	}
	sort.Slice(doc.Memories, func(i, j int) bool {
		return doc.Memories[i].CreatedAt.Before(doc.Memories[j].CreatedAt)
	})

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memories: %w", err)
	}
	return os.WriteFile(lt.path, data, 0644)
}

// Store persists a memory and returns its id.
func (lt *LongTerm) Store(key, value string, metadata map[string]string) (string, error) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := time.Now()
	item := Item{
		ID:         uuid.NewString(),
		Key:        key,
		Value:      value,
		Metadata:   metadata,
		CreatedAt:  now,
		AccessedAt: now,
	}
	lt.memories[item.ID] = item
	if err := lt.save(); err != nil {
		return "", err
	}
	return item.ID, nil
}

// Retrieve returns up to topK memories ranked by keyword overlap: key-word
// matches count double, value-word matches single, metadata substring
// matches single. Ties break toward the most recently accessed. Every
// returned item's access tracking is updated and persisted.
func (lt *LongTerm) Retrieve(query string, topK int) []Item {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	queryLower := strings.ToLower(query)
	queryWords := wordSet(queryLower)

	type scored struct {
		item  Item
		score float64
	}
	var matches []scored

	for _, m := range lt.memories {
		score := 2 * float64(overlap(queryWords, wordSet(strings.ToLower(m.Key))))
		score += float64(overlap(queryWords, wordSet(strings.ToLower(m.Value))))
		for _, v := range m.Metadata {
			if strings.Contains(strings.ToLower(v), queryLower) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{item: m, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].item.AccessedAt.After(matches[j].item.AccessedAt)
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	now := time.Now()
	results := make([]Item, 0, len(matches))
	for _, m := range matches {
		item := lt.memories[m.item.ID]
		item.AccessedAt = now
		item.AccessCount++
		lt.memories[item.ID] = item
		results = append(results, item)
	}

	if len(results) > 0 {
		_ = lt.save()
	}
	return results
}

// StoreSolution records a solved goal for future retrieval.
func (lt *LongTerm) StoreSolution(problem, solution string, context map[string]string) error {
	metadata := map[string]string{"type": "solution"}
	for k, v := range context {
		metadata[k] = v
	}
	_, err := lt.Store("solution:"+truncate(problem, 50), solution, metadata)
	return err
}

// UpdatePreferences merges prefs into the preference profile.
func (lt *LongTerm) UpdatePreferences(prefs map[string]string) error {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	for k, v := range prefs {
		lt.preferences[k] = v
	}
	return lt.save()
}

// Preferences returns a copy of the preference profile.
func (lt *LongTerm) Preferences() map[string]string {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	out := make(map[string]string, len(lt.preferences))
	for k, v := range lt.preferences {
		out[k] = v
	}
	return out
}

// Delete removes a memory by id.
func (lt *LongTerm) Delete(id string) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if _, ok := lt.memories[id]; !ok {
		return false
	}
	delete(lt.memories, id)
	_ = lt.save()
	return true
}

// Clear removes every memory and preference.
func (lt *LongTerm) Clear() error {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.memories = map[string]Item{}
	lt.preferences = map[string]string{}
	return lt.save()
}

// Len reports how many memories are stored.
func (lt *LongTerm) Len() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.memories)
}

func wordSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func overlap(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}
