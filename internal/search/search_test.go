package search

import (
	"encoding/json"
	"testing"

	meili "github.com/meilisearch/meilisearch-go"
)

var (
	_ Searcher = (*Meili)(nil)
	_ Searcher = (*Postgres)(nil)
	_ Indexer  = (*Meili)(nil)
)

func TestEscapeLike(t *testing.T) {
	got := escapeLike(`50%_done\`)
	want := `50\%\_done\\`
	if got != want {
		t.Fatalf("escapeLike() = %q, want %q", got, want)
	}
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %v: %v", v, err)
	}
	return raw
}

func TestHitToResultPrefersFormatted(t *testing.T) {
	hit := meili.Hit{
		"id":    rawJSON(t, "task-1"),
		"title": rawJSON(t, "Buy groceries"),
		"done":  rawJSON(t, true),
		"_formatted": rawJSON(t, map[string]string{
			"title":       "Buy <mark>groceries</mark>",
			"description": "weekly <mark>groceries</mark> run",
		}),
	}
	r := hitToResult(hit)
	if r.ID != "task-1" {
		t.Fatalf("unexpected id %q", r.ID)
	}
	if r.Title != "Buy <mark>groceries</mark>" {
		t.Fatalf("expected highlighted title, got %q", r.Title)
	}
	if r.Snippet != "weekly <mark>groceries</mark> run" {
		t.Fatalf("expected highlighted snippet, got %q", r.Snippet)
	}
	if !r.Done {
		t.Fatal("done flag lost")
	}
}

func TestHitToResultFallsBackToPlainFields(t *testing.T) {
	hit := meili.Hit{
		"id":          rawJSON(t, "task-2"),
		"title":       rawJSON(t, "Buy groceries"),
		"description": rawJSON(t, "weekly run"),
	}
	r := hitToResult(hit)
	if r.Title != "Buy groceries" || r.Snippet != "weekly run" {
		t.Fatalf("unexpected fallback result: %+v", r)
	}
	if r.Done {
		t.Fatal("done should default to false")
	}
}

func TestNonNilReplacesNilSlice(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	in := []Result{{ID: "task-1"}}
	if got := nonNil(in); len(got) != 1 || got[0].ID != "task-1" {
		t.Fatalf("existing slice altered: %#v", got)
	}
}
