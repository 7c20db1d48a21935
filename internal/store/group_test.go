package store

import (
	"database/sql"
	"testing"
	"time"
)

func detailRow(todoID string) todoNoteRow {
	return todoNoteRow{
		todo: Todo{
			ID:        todoID,
			UserID:    "11111111-1111-1111-1111-111111111111",
			Title:     "Buy groceries",
			Priority:  PriorityLow,
			CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

func withNote(row todoNoteRow, id, title string, createdAt time.Time) todoNoteRow {
	row.noteID = sql.NullString{String: id, Valid: true}
	row.noteTitle = sql.NullString{String: title, Valid: true}
	row.noteCreatedAt = sql.NullTime{Time: createdAt, Valid: true}
	return row
}

func TestGroupTodoRowsEmpty(t *testing.T) {
	_, ok := groupTodoRows(nil)
	if ok {
		t.Fatal("expected no detail for zero rows")
	}
}

func TestGroupTodoRowsZeroNotes(t *testing.T) {
	// A task without notes produces exactly one row with NULL note columns.
	detail, ok := groupTodoRows([]todoNoteRow{detailRow("task-1")})
	if !ok {
		t.Fatal("expected detail")
	}
	if detail.ID != "task-1" {
		t.Fatalf("expected task-1, got %s", detail.ID)
	}
	if detail.Notes == nil {
		t.Fatal("expected empty note slice, got nil")
	}
	if len(detail.Notes) != 0 {
		t.Fatalf("expected zero notes, got %d", len(detail.Notes))
	}
}

func TestGroupTodoRowsMergesNotesInRowOrder(t *testing.T) {
	base := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	rows := []todoNoteRow{
		withNote(detailRow("task-1"), "note-a", "List", base),
		withNote(detailRow("task-1"), "note-b", "Budget", base.Add(time.Minute)),
		withNote(detailRow("task-1"), "note-c", "Coupons", base.Add(2*time.Minute)),
	}

	detail, ok := groupTodoRows(rows)
	if !ok {
		t.Fatal("expected detail")
	}
	if len(detail.Notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(detail.Notes))
	}
	for i, want := range []string{"note-a", "note-b", "note-c"} {
		if detail.Notes[i].ID != want {
			t.Fatalf("note %d: expected %s, got %s", i, want, detail.Notes[i].ID)
		}
		if detail.Notes[i].ID == "" {
			t.Fatalf("note %d has empty id", i)
		}
		if detail.Notes[i].TaskID != "task-1" {
			t.Fatalf("note %d: expected task-1 parent, got %s", i, detail.Notes[i].TaskID)
		}
	}
}

func TestGroupTodoRowsCarriesNoteContent(t *testing.T) {
	row := withNote(detailRow("task-1"), "note-a", "List", time.Now())
	row.noteContent = sql.NullString{String: "milk,eggs", Valid: true}

	detail, ok := groupTodoRows([]todoNoteRow{row})
	if !ok {
		t.Fatal("expected detail")
	}
	if detail.Notes[0].Content == nil || *detail.Notes[0].Content != "milk,eggs" {
		t.Fatalf("expected content milk,eggs, got %v", detail.Notes[0].Content)
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Fatalf("expected %s to be valid", p)
		}
	}
	if Priority(4).Valid() {
		t.Fatal("expected 4 to be invalid")
	}
	if Priority(-1).Valid() {
		t.Fatal("expected -1 to be invalid")
	}
}
