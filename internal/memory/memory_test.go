package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWorking_BoundedEviction(t *testing.T) {
	w := NewWorking(10, 3, 2)

	for i := 0; i < 5; i++ {
		w.AddOutput(fmt.Sprintf("output %d", i), "shell", true)
	}

	outputs := w.RecentOutputs(0)
	if len(outputs) != 3 {
		t.Fatalf("Expected buffer capped at 3, got %d", len(outputs))
	}
	// Oldest evicted first.
	if outputs[0].Content != "output 2" || outputs[2].Content != "output 4" {
		t.Errorf("Unexpected eviction order: %q .. %q", outputs[0].Content, outputs[2].Content)
	}
}

func TestWorking_RecentOutputsLimit(t *testing.T) {
	w := NewWorking(100, 50, 20)
	for i := 0; i < 10; i++ {
		w.AddOutput(fmt.Sprintf("o%d", i), "shell", true)
	}

	recent := w.RecentOutputs(4)
	if len(recent) != 4 {
		t.Fatalf("Expected 4 outputs, got %d", len(recent))
	}
	if recent[3].Content != "o9" {
		t.Errorf("Expected most recent last, got %q", recent[3].Content)
	}
}

func TestWorking_Errors(t *testing.T) {
	w := NewWorking(100, 50, 20)
	w.AddError("file missing", "read_file", "")

	errs := w.ErrorHistory()
	if len(errs) != 1 || errs[0].Source != "read_file" {
		t.Errorf("Unexpected error history: %+v", errs)
	}

	items := w.ContextItems("error")
	if len(items) != 1 || items[0].Content != "file missing" {
		t.Errorf("Error should mirror into context items, got %+v", items)
	}
}

func TestWorking_TaskStack(t *testing.T) {
	w := NewWorking(10, 10, 10)

	w.PushTask("outer")
	w.PushTask("inner")
	if w.CurrentTask() != "inner" {
		t.Errorf("Expected inner, got %q", w.CurrentTask())
	}

	done := w.CompleteTask()
	if done != "inner" {
		t.Errorf("Expected to complete inner, got %q", done)
	}
	if w.CurrentTask() != "outer" {
		t.Errorf("Expected to pop back to outer, got %q", w.CurrentTask())
	}

	w.CompleteTask()
	if w.CurrentTask() != "" {
		t.Errorf("Expected empty task after final pop, got %q", w.CurrentTask())
	}
}

func TestWorking_Summarize(t *testing.T) {
	w := NewWorking(100, 50, 20)
	w.PushTask("deploy the site")
	w.AddOutput("done", "shell", true)
	w.AddError("oops", "shell", "")

	s := w.Summarize()
	if s.TaskSummary != "deploy the site" {
		t.Errorf("Unexpected task summary: %q", s.TaskSummary)
	}
	if s.CurrentState != "1 outputs, 1 errors" {
		t.Errorf("Unexpected state: %q", s.CurrentState)
	}
	if len(s.RecentActions) != 1 || s.RecentActions[0] != "shell: success" {
		t.Errorf("Unexpected recent actions: %v", s.RecentActions)
	}
}

func TestWorking_TokenEstimate(t *testing.T) {
	w := NewWorking(100, 50, 20)
	w.AddOutput("aaaaaaaa", "shell", true) // 8 chars -> 2 tokens

	if got := w.TokenEstimate(); got != 2 {
		t.Errorf("Expected estimate 2, got %d", got)
	}
}

func TestWorking_Clear(t *testing.T) {
	w := NewWorking(10, 10, 10)
	w.AddOutput("x", "shell", true)
	w.SetVariable("k", 1)
	w.PushTask("t")

	w.Clear()

	if len(w.RecentOutputs(0)) != 0 || w.CurrentTask() != "" {
		t.Error("Clear should drop all session state")
	}
	if _, ok := w.Variable("k"); ok {
		t.Error("Clear should drop variables")
	}
}

func TestLongTerm_StoreAndRetrieve(t *testing.T) {
	dir := t.TempDir()
	lt, err := NewLongTerm(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := lt.Store("docker compose setup", "use profiles for optional services", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := lt.Store("python venv", "always activate before installing", nil); err != nil {
		t.Fatal(err)
	}

	results := lt.Retrieve("docker setup", 5)
	if len(results) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(results))
	}
	if results[0].Key != "docker compose setup" {
		t.Errorf("Unexpected match: %q", results[0].Key)
	}
	if results[0].AccessCount != 1 {
		t.Errorf("Expected access count updated, got %d", results[0].AccessCount)
	}
}

func TestLongTerm_KeyWeighting(t *testing.T) {
	lt, err := NewLongTerm(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// "deploy" in the key scores 2, in the value only 1.
	if _, err := lt.Store("deploy checklist", "steps for release", nil); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := lt.Store("release notes", "how we deploy", nil); err != nil {
		t.Fatal(err)
	}

	results := lt.Retrieve("deploy", 2)
	if len(results) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(results))
	}
	if results[0].Key != "deploy checklist" {
		t.Errorf("Expected key match ranked first, got %q", results[0].Key)
	}
}

func TestLongTerm_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	lt, err := NewLongTerm(dir)
	if err != nil {
		t.Fatal(err)
	}
	id, err := lt.Store("golang testing", "use t.TempDir", map[string]string{"lang": "go"})
	if err != nil {
		t.Fatal(err)
	}
	if err := lt.UpdatePreferences(map[string]string{"editor": "vim"}); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewLongTerm(dir)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("Expected 1 memory after reopen, got %d", reopened.Len())
	}
	if reopened.Preferences()["editor"] != "vim" {
		t.Error("Preferences should survive reopen")
	}

	if !reopened.Delete(id) {
		t.Error("Expected delete to find the memory")
	}
	if reopened.Delete(id) {
		t.Error("Second delete should report not found")
	}
}

func TestLongTerm_MetadataSubstringMatch(t *testing.T) {
	lt, err := NewLongTerm(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lt.Store("ci pipeline", "cache modules", map[string]string{"project": "backend-api"}); err != nil {
		t.Fatal(err)
	}

	results := lt.Retrieve("backend", 5)
	if len(results) != 1 {
		t.Fatalf("Expected metadata substring match, got %d results", len(results))
	}
}

func TestLongTerm_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "memories.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	lt, err := NewLongTerm(dir)
	if err != nil {
		t.Fatal(err)
	}
	if lt.Len() != 0 {
		t.Errorf("Expected empty store from corrupt file, got %d", lt.Len())
	}
}
