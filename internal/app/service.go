package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskai/api/internal/config"
	"taskai/api/internal/search"
	"taskai/api/internal/store"
)

// dataStore is the slice of the persistence layer the handlers need.
type dataStore interface {
	ListTodos(ctx context.Context, userID string) ([]store.Todo, error)
	GetTodoDetail(ctx context.Context, todoID, userID string) (store.TodoDetail, error)
	InsertTodo(ctx context.Context, item store.Todo) (string, error)
	DeleteTodo(ctx context.Context, todoID, userID string) (int64, error)
	SetTodoDone(ctx context.Context, todoID, userID string, done bool) (int64, error)
	InsertNote(ctx context.Context, note store.Note, userID string) (string, error)
	ListNotes(ctx context.Context, todoID, userID string) ([]store.Note, error)
	DeleteNote(ctx context.Context, noteID, todoID, userID string) (int64, error)
	Ping(ctx context.Context) error
}

// assistantClient performs one chat completion per call.
type assistantClient interface {
	Ask(ctx context.Context, title, description, question string) (string, error)
}

// taskSearcher is the optional search facade; nil disables the endpoint's
// index writes and the search falls through to an empty response.
type taskSearcher interface {
	Search(ctx context.Context, q search.Query) search.Response
	IndexTask(task search.TaskRecord)
	DeleteTask(id string)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	assistant assistantClient
	search    taskSearcher
	now       func() time.Time
}

func New(cfg config.Config, dataStore *store.PostgresStore, assistant assistantClient, searchService *search.Service) *Service {
	svc := &Service{
		cfg:       cfg,
		store:     dataStore,
		assistant: assistant,
		now:       time.Now,
	}
	if searchService != nil {
		svc.search = searchService
	}
	return svc
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) JWTSecret() []byte {
	return []byte(s.cfg.JWTSecret)
}

// TodoSummary is the listing projection.
type TodoSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Reminder    *time.Time `json:"reminder,omitempty"`
	Deadline    *time.Time `json:"deadline"`
	Priority    int        `json:"priority"`
	Done        bool       `json:"done"`
}

// NotePayload is the note shape shared by detail, add-note and list-notes.
type NotePayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// TodoDetails is a todo with its notes nested.
type TodoDetails struct {
	TodoSummary
	Notes []NotePayload `json:"notes"`
}

type AddTodoInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Reminder    *time.Time `json:"reminder"`
	Deadline    *time.Time `json:"deadline"`
	Priority    int        `json:"priority"`
}

type AddTodoPayload struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Reminder    *time.Time `json:"reminder,omitempty"`
	Deadline    *time.Time `json:"deadline"`
	Priority    int        `json:"priority"`
}

type AddNoteInput struct {
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type AskAssistantInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	UserQuestion string `json:"userQuestion"`
}

type AskAssistantPayload struct {
	AssistantResponse string `json:"assistantResponse"`
}

// parseCallerID turns the identity claim into the domain's user id. A missing
// or malformed claim is a fatal authorization failure, never recovered.
func parseCallerID(userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", unauthorized()
	}
	return id.String(), nil
}

// ListTodos returns the caller's tasks. The user_id scope on the listing
// query is the whole authorization.
func (s *Service) ListTodos(ctx context.Context, userID string) ([]TodoSummary, error) {
	caller, err := parseCallerID(userID)
	if err != nil {
		return nil, err
	}

	todos, err := s.store.ListTodos(ctx, caller)
	if err != nil {
		return nil, err
	}

	items := make([]TodoSummary, 0, len(todos))
	for _, todo := range todos {
		items = append(items, todoSummary(todo))
	}
	return items, nil
}

// GetTodoDetails returns one task with its notes nested. Zero scoped rows map
// to NOT_FOUND whether the task is absent or foreign.
func (s *Service) GetTodoDetails(ctx context.Context, userID, todoID string) (TodoDetails, error) {
	caller, err := parseCallerID(userID)
	if err != nil {
		return TodoDetails{}, err
	}

	detail, err := s.store.GetTodoDetail(ctx, todoID, caller)
	if errors.Is(err, sql.ErrNoRows) {
		return TodoDetails{}, notFound("Todo not found or you do not have permission to view this todo.")
	}
	if err != nil {
		return TodoDetails{}, err
	}

	notes := make([]NotePayload, 0, len(detail.Notes))
	for _, note := range detail.Notes {
		notes = append(notes, notePayload(note))
	}
	return TodoDetails{
		TodoSummary: todoSummary(detail.Todo),
		Notes:       notes,
	}, nil
}

// AddTodo validates the input, inserts the task, and echoes it back with the
// generated id.
func (s *Service) AddTodo(ctx context.Context, userID string, input AddTodoInput) (AddTodoPayload, error) {
	caller, err := parseCallerID(userID)
	if err != nil {
		return AddTodoPayload{}, err
	}

	var violations []string
	if strings.TrimSpace(input.Title) == "" {
		violations = append(violations, "title is required")
	}
	if !store.Priority(input.Priority).Valid() {
		violations = append(violations, "priority must be between 0 and 3 (0 - none | 1 - low | 2 - medium | 3 - high)")
	}
	now := s.now()
	if input.Deadline != nil && !input.Deadline.After(now) {
		violations = append(violations, "deadline must be in the future")
	}
	if input.Reminder != nil && !input.Reminder.After(now) {
		violations = append(violations, "reminder must be in the future")
	}
	if len(violations) > 0 {
		return AddTodoPayload{}, validationError(violations)
	}

	id, err := s.store.InsertTodo(ctx, store.Todo{
		UserID:      caller,
		Title:       input.Title,
		Description: input.Description,
		Priority:    store.Priority(input.Priority),
		Reminder:    input.Reminder,
		Deadline:    input.Deadline,
	})
	if err != nil {
		return AddTodoPayload{}, err
	}

	log.Printf("todo %s created by user %s", id, caller)
	s.indexTodo(id, caller, input)

	return AddTodoPayload{
		ID:          id,
		UserID:      caller,
		Title:       input.Title,
		Description: input.Description,
		Reminder:    input.Reminder,
		Deadline:    input.Deadline,
		Priority:    input.Priority,
	}, nil
}

// DeleteTodo removes a task. Zero affected rows map to PERMISSION_DENIED —
// the mutate-path counterpart of the read path's NOT_FOUND.
func (s *Service) DeleteTodo(ctx context.Context, userID, todoID string) error {
	caller, err := parseCallerID(userID)
	if err != nil {
		return err
	}

	affected, err := s.store.DeleteTodo(ctx, todoID, caller)
	if err != nil {
		return err
	}
	if affected == 0 {
		return permissionDenied("Todo not found or you do not have permission to delete this todo.")
	}

	log.Printf("todo %s deleted by user %s", todoID, caller)
	if s.search != nil {
		s.search.DeleteTask(todoID)
	}
	return nil
}

// SetTodoDone flips only the done flag. Repeating the same state is fine: the
// scoped update still matches one row.
func (s *Service) SetTodoDone(ctx context.Context, userID, todoID string, done bool) error {
	caller, err := parseCallerID(userID)
	if err != nil {
		return err
	}

	affected, err := s.store.SetTodoDone(ctx, todoID, caller, done)
	if err != nil {
		return err
	}
	if affected == 0 {
		verb := "mark this todo as done"
		if !done {
			verb = "mark this todo as not done"
		}
		return permissionDenied(fmt.Sprintf("Todo not found or you do not have permission to %s.", verb))
	}

	log.Printf("todo %s done=%t by user %s", todoID, done, caller)
	return nil
}

// AddNote validates and inserts a note; parent ownership is enforced inside
// the single conditional insert, so there is no check-then-act window.
func (s *Service) AddNote(ctx context.Context, userID, todoID string, input AddNoteInput) (NotePayload, error) {
	caller, err := parseCallerID(userID)
	if err != nil {
		return NotePayload{}, err
	}

	var violations []string
	if strings.TrimSpace(input.Title) == "" {
		violations = append(violations, "title is required")
	}
	if input.CreatedAt.IsZero() {
		violations = append(violations, "createdAt is required")
	}
	if len(violations) > 0 {
		return NotePayload{}, validationError(violations)
	}

	id, err := s.store.InsertNote(ctx, store.Note{
		TaskID:    todoID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: input.CreatedAt,
	}, caller)
	if errors.Is(err, sql.ErrNoRows) {
		return NotePayload{}, notFound("Task not found or you do not have permission to add note to this task.")
	}
	if err != nil {
		return NotePayload{}, fmt.Errorf("insert note: %w", err)
	}

	log.Printf("note %s added to todo %s by user %s", id, todoID, caller)
	return NotePayload{
		ID:        id,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: input.CreatedAt,
	}, nil
}

// ListNotes returns the notes of a task the caller owns. The join against the
// parent task's owner applies the same check the other note operations use;
// an absent or foreign task yields an empty list.
func (s *Service) ListNotes(ctx context.Context, userID, todoID string) ([]NotePayload, error) {
	caller, err := parseCallerID(userID)
	if err != nil {
		return nil, err
	}

	notes, err := s.store.ListNotes(ctx, todoID, caller)
	if err != nil {
		return nil, err
	}

	items := make([]NotePayload, 0, len(notes))
	for _, note := range notes {
		items = append(items, notePayload(note))
	}
	return items, nil
}

// RemoveNote deletes a note after verifying, in the same statement, that it
// belongs to the given task and the task belongs to the caller.
func (s *Service) RemoveNote(ctx context.Context, userID, todoID, noteID string) error {
	caller, err := parseCallerID(userID)
	if err != nil {
		return err
	}

	affected, err := s.store.DeleteNote(ctx, noteID, todoID, caller)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound("Note not found or you do not have permission to remove this note.")
	}

	log.Printf("note %s removed from todo %s by user %s", noteID, todoID, caller)
	return nil
}

// SearchTodos queries the caller's tasks by title/description.
func (s *Service) SearchTodos(ctx context.Context, userID, text string, limit, offset int) (search.Response, error) {
	caller, err := parseCallerID(userID)
	if err != nil {
		return search.Response{}, err
	}
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}
	return s.search.Search(ctx, search.Query{
		Text:   text,
		UserID: caller,
		Limit:  limit,
		Offset: offset,
	}), nil
}

// AskAssistant validates the question and performs one chat completion. This
// is the only handler that converts an unexpected downstream failure into a
// domain result: provider errors are exceptional, not business rules.
func (s *Service) AskAssistant(ctx context.Context, input AskAssistantInput) (AskAssistantPayload, error) {
	var violations []string
	if strings.TrimSpace(input.Title) == "" {
		violations = append(violations, "title is required")
	}
	if strings.TrimSpace(input.UserQuestion) == "" {
		violations = append(violations, "userQuestion is required")
	}
	if len([]rune(input.UserQuestion)) > 100 {
		violations = append(violations, "userQuestion must not exceed 100 characters")
	}
	if len(violations) > 0 {
		return AskAssistantPayload{}, validationError(violations)
	}

	answer, err := s.assistant.Ask(ctx, input.Title, input.Description, input.UserQuestion)
	if err != nil {
		log.Printf("assistant call failed: %v", err)
		return AskAssistantPayload{}, thirdPartyError("Error while asking the assistant provider.")
	}
	return AskAssistantPayload{AssistantResponse: answer}, nil
}

func (s *Service) indexTodo(id, userID string, input AddTodoInput) {
	if s.search == nil {
		return
	}
	description := ""
	if input.Description != nil {
		description = *input.Description
	}
	s.search.IndexTask(search.TaskRecord{
		ID:          id,
		UserID:      userID,
		Title:       input.Title,
		Description: description,
		Priority:    input.Priority,
	})
}

func todoSummary(todo store.Todo) TodoSummary {
	return TodoSummary{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Reminder:    todo.Reminder,
		Deadline:    todo.Deadline,
		Priority:    int(todo.Priority),
		Done:        todo.Done,
	}
}

func notePayload(note store.Note) NotePayload {
	return NotePayload{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
	}
}
