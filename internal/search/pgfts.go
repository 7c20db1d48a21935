package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Postgres implements Searcher directly against the tasks table as a
// fallback when Meilisearch is not configured or unreachable.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed task searcher.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Healthy always returns true — if Postgres is down, the whole app is down.
func (p *Postgres) Healthy() bool {
	return true
}

// Search matches the caller's tasks by title or description. Case-insensitive
// substring match; ranking prefers title hits over description hits.
func (p *Postgres) Search(ctx context.Context, q Query) ([]Result, int, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	pattern := "%" + escapeLike(text) + "%"

	var total int
	if err := p.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM tasks
		WHERE user_id = $1 AND (title ILIKE $2 OR description ILIKE $2)
	`, q.UserID, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("task search count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, title, coalesce(description, ''), done
		FROM tasks
		WHERE user_id = $1 AND (title ILIKE $2 OR description ILIKE $2)
		ORDER BY (title ILIKE $2) DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`, q.UserID, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("task search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet, &r.Done); err != nil {
			return nil, 0, fmt.Errorf("task search scan: %w", err)
		}
		results = append(results, r)
	}
	return results, total, rows.Err()
}

// LoadAllRecords returns every task for full reindexing into Meilisearch.
func (p *Postgres) LoadAllRecords(ctx context.Context) ([]TaskRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, title, coalesce(description, ''), coalesce(priority, 0), coalesce(done, false)
		FROM tasks
	`)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]TaskRecord, 0)
	for rows.Next() {
		var t TaskRecord
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Done); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
