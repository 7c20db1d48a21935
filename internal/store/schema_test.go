package store

import (
	"strings"
	"testing"
)

func TestSchemaCascadesNotesOnTaskDelete(t *testing.T) {
	idx := strings.Index(schemaSQL, "CREATE TABLE IF NOT EXISTS notes")
	if idx < 0 {
		t.Fatal("notes table missing from schema")
	}
	notesDDL := schemaSQL[idx:]
	if end := strings.Index(notesDDL, ";"); end > 0 {
		notesDDL = notesDDL[:end]
	}
	if !strings.Contains(notesDDL, "REFERENCES tasks(id) ON DELETE CASCADE") {
		t.Fatal("notes.task_id must reference tasks(id) with ON DELETE CASCADE so deleting a task removes its notes")
	}
}

func TestSchemaOwnerColumns(t *testing.T) {
	for _, fragment := range []string{
		"user_id UUID NOT NULL",
		"idx_tasks_user_id ON tasks(user_id)",
		"idx_notes_task_id ON notes(task_id)",
	} {
		if !strings.Contains(schemaSQL, fragment) {
			t.Errorf("schema missing %q", fragment)
		}
	}
}
