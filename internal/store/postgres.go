package store

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListTodos returns every task owned by userID. The listing query itself is
// the authorization: no per-row check is needed.
func (s *PostgresStore) ListTodos(ctx context.Context, userID string) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, priority, reminder, deadline, done, created_at
		FROM tasks
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	items := make([]Todo, 0)
	for rows.Next() {
		item, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return items, nil
}

// todoNoteRow is one row of the task/notes LEFT JOIN. Note columns are
// nullable because a task with zero notes still produces one row.
type todoNoteRow struct {
	todo          Todo
	noteID        sql.NullString
	noteTitle     sql.NullString
	noteContent   sql.NullString
	noteCreatedAt sql.NullTime
}

// GetTodoDetail loads one task with its notes via a single LEFT JOIN scoped
// by id and owner. Returns sql.ErrNoRows when the task is absent or owned by
// someone else; the two cases are deliberately indistinguishable.
func (s *PostgresStore) GetTodoDetail(ctx context.Context, todoID, userID string) (TodoDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			t.id, t.user_id, t.title, t.description, t.priority, t.reminder, t.deadline, t.done, t.created_at,
			n.id, n.title, n.content, n.created_at
		FROM tasks t
		LEFT JOIN notes n ON n.task_id = t.id
		WHERE t.id = $1 AND t.user_id = $2
		ORDER BY n.created_at, n.id
	`, todoID, userID)
	if err != nil {
		return TodoDetail{}, fmt.Errorf("get todo detail: %w", err)
	}
	defer rows.Close()

	flat := make([]todoNoteRow, 0)
	for rows.Next() {
		var row todoNoteRow
		var description sql.NullString
		var priority sql.NullInt64
		var reminder, deadline sql.NullTime
		var done sql.NullBool
		if err := rows.Scan(
			&row.todo.ID, &row.todo.UserID, &row.todo.Title, &description, &priority,
			&reminder, &deadline, &done, &row.todo.CreatedAt,
			&row.noteID, &row.noteTitle, &row.noteContent, &row.noteCreatedAt,
		); err != nil {
			return TodoDetail{}, fmt.Errorf("scan todo detail: %w", err)
		}
		applyNullableTodoColumns(&row.todo, description, priority, reminder, deadline, done)
		flat = append(flat, row)
	}
	if err := rows.Err(); err != nil {
		return TodoDetail{}, fmt.Errorf("iterate todo detail: %w", err)
	}

	detail, ok := groupTodoRows(flat)
	if !ok {
		return TodoDetail{}, sql.ErrNoRows
	}
	return detail, nil
}

// groupTodoRows merges the flat LEFT JOIN row stream into a single task with
// a nested note list. Rows whose note id is NULL are the zero-notes case and
// contribute no note entry. Note order follows the row order.
func groupTodoRows(rows []todoNoteRow) (TodoDetail, bool) {
	if len(rows) == 0 {
		return TodoDetail{}, false
	}
	detail := TodoDetail{
		Todo:  rows[0].todo,
		Notes: make([]Note, 0, len(rows)),
	}
	for _, row := range rows {
		if !row.noteID.Valid || row.noteID.String == "" {
			continue
		}
		note := Note{
			ID:     row.noteID.String,
			TaskID: detail.ID,
			Title:  row.noteTitle.String,
		}
		if row.noteContent.Valid {
			content := row.noteContent.String
			note.Content = &content
		}
		if row.noteCreatedAt.Valid {
			note.CreatedAt = row.noteCreatedAt.Time
		}
		detail.Notes = append(detail.Notes, note)
	}
	return detail, true
}

// InsertTodo creates a task and returns the generated id.
func (s *PostgresStore) InsertTodo(ctx context.Context, item Todo) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (user_id, title, description, priority, reminder, deadline)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, item.UserID, item.Title, item.Description, int(item.Priority), item.Reminder, item.Deadline).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert todo: %w", err)
	}
	return id, nil
}

// DeleteTodo removes a task scoped by owner. Notes cascade at the schema
// level. The affected row count is the only authorization signal.
func (s *PostgresStore) DeleteTodo(ctx context.Context, todoID, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`, todoID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete todo rows affected: %w", err)
	}
	return affected, nil
}

// SetTodoDone updates only the done flag, scoped by owner.
func (s *PostgresStore) SetTodoDone(ctx context.Context, todoID, userID string, done bool) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET done = $3
		WHERE id = $1 AND user_id = $2
	`, todoID, userID, done)
	if err != nil {
		return 0, fmt.Errorf("set todo done: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set todo done rows affected: %w", err)
	}
	return affected, nil
}

// InsertNote creates a note for a task the caller owns. The ownership
// predicate and the insert are one statement, so there is no window between
// checking and writing. Returns sql.ErrNoRows when the task is absent or not
// owned by userID.
func (s *PostgresStore) InsertNote(ctx context.Context, note Note, userID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (task_id, title, content, created_at)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (
			SELECT 1 FROM tasks WHERE id = $1 AND user_id = $5
		)
		RETURNING id
	`, note.TaskID, note.Title, note.Content, note.CreatedAt, userID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListNotes returns the notes of a task, joined against the parent task's
// owner. An absent or foreign task yields an empty list.
func (s *PostgresStore) ListNotes(ctx context.Context, todoID, userID string) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.task_id, n.title, n.content, n.created_at
		FROM notes n
		JOIN tasks t ON t.id = n.task_id
		WHERE n.task_id = $1 AND t.user_id = $2
		ORDER BY n.created_at, n.id
	`, todoID, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	items := make([]Note, 0)
	for rows.Next() {
		var item Note
		var content sql.NullString
		if err := rows.Scan(&item.ID, &item.TaskID, &item.Title, &content, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if content.Valid {
			value := content.String
			item.Content = &value
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return items, nil
}

// DeleteNote removes a note only when it belongs to the given task and the
// task belongs to userID, all in one conditional statement.
func (s *PostgresStore) DeleteNote(ctx context.Context, noteID, todoID, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM notes n
		USING tasks t
		WHERE n.id = $1 AND n.task_id = $2 AND t.id = n.task_id AND t.user_id = $3
	`, noteID, todoID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete note rows affected: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (Todo, error) {
	var item Todo
	var description sql.NullString
	var priority sql.NullInt64
	var reminder, deadline sql.NullTime
	var done sql.NullBool
	if err := row.Scan(
		&item.ID, &item.UserID, &item.Title, &description, &priority,
		&reminder, &deadline, &done, &item.CreatedAt,
	); err != nil {
		return Todo{}, err
	}
	applyNullableTodoColumns(&item, description, priority, reminder, deadline, done)
	return item, nil
}

func applyNullableTodoColumns(item *Todo, description sql.NullString, priority sql.NullInt64, reminder, deadline sql.NullTime, done sql.NullBool) {
	if description.Valid {
		value := description.String
		item.Description = &value
	}
	if priority.Valid {
		item.Priority = Priority(priority.Int64)
	}
	if reminder.Valid {
		value := reminder.Time
		item.Reminder = &value
	}
	if deadline.Valid {
		value := deadline.Time
		item.Deadline = &value
	}
	if done.Valid {
		item.Done = done.Bool
	}
}
