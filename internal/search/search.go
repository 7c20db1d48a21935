package search

import "context"

// TaskRecord is the data we index for a task.
type TaskRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Done        bool   `json:"done"`
}

// Result is a single search hit returned to the caller.
type Result struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Done    bool   `json:"done"`
}

// Query describes a search request. UserID is mandatory: search is always
// scoped to the caller's own tasks.
type Query struct {
	Text   string
	UserID string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a search over a user's tasks. The context bounds the
// request: a cancelled caller stops the underlying queries.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push tasks into a search index.
type Indexer interface {
	IndexTask(task TaskRecord) error
	DeleteTask(id string) error
}
