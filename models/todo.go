package models

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyTitle is returned when a todo title is blank after trimming.
var ErrEmptyTitle = errors.New("title is required")

// Todo is a task owned by exactly one user.
type Todo struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTodo builds a pending todo for owner with both timestamps set to now.
func NewTodo(owner, title, description string, now time.Time) (*Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return &Todo{
		UserID:      owner,
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TodoPatch is a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Apply merges p into t and refreshes UpdatedAt.
//
// An empty title means "keep the current one", while description and
// completed are applied whenever they are present, even as "" or false.
// A title made only of whitespace is rejected.
func (t *Todo) Apply(p TodoPatch, now time.Time) error {
	if p.Title != nil && *p.Title != "" {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		t.Title = title
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = now
	return nil
}

// OwnedBy reports whether userID owns the todo.
func (t *Todo) OwnedBy(userID string) bool {
	return t.UserID == userID
}
