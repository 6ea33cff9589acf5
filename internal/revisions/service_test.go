package revisions

import (
	"encoding/json"
	"testing"
)

func TestCommitAndHistory(t *testing.T) {
	svc := New(t.TempDir())

	first, err := svc.Commit("homepage", json.RawMessage(`{"heroTitle":"Find your home"}`), "Admin", "Save homepage")
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if first.Hash == "" || first.Author != "Admin" {
		t.Fatalf("unexpected revision: %+v", first)
	}

	second, err := svc.Commit("homepage", json.RawMessage(`{"heroTitle":"Welcome"}`), "Admin", "Update hero")
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}

	history, err := svc.History("homepage", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	if history[0].Hash != second.Hash || history[1].Hash != first.Hash {
		t.Fatalf("history out of order: %+v", history)
	}
}

func TestHistoryLimit(t *testing.T) {
	svc := New(t.TempDir())
	for i := 0; i < 3; i++ {
		data, _ := json.Marshal(map[string]int{"version": i})
		if _, err := svc.Commit("footer", data, "Admin", "Save footer"); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	history, err := svc.History("footer", 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
}

func TestHistoryMissingSection(t *testing.T) {
	svc := New(t.TempDir())

	history, err := svc.History("about", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("len(history) = %d, want 0", len(history))
	}
}

func TestGetByHashRestoresOldData(t *testing.T) {
	svc := New(t.TempDir())

	old, err := svc.Commit("metadata", json.RawMessage(`{"title":"EstateFlow"}`), "Admin", "Initial")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := svc.Commit("metadata", json.RawMessage(`{"title":"EstateFlow Realty"}`), "Admin", "Rename"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	data, err := svc.GetByHash("metadata", old.Hash)
	if err != nil {
		t.Fatalf("get by hash: %v", err)
	}
	var doc struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Title != "EstateFlow" {
		t.Fatalf("title = %q, want old value", doc.Title)
	}
}

func TestSectionsAreIsolated(t *testing.T) {
	svc := New(t.TempDir())

	if _, err := svc.Commit("homepage", json.RawMessage(`{"a":1}`), "Admin", "Save"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := svc.Commit("contact", json.RawMessage(`{"b":2}`), "Admin", "Save"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	history, err := svc.History("contact", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
}
