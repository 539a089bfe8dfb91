// Package database persists users and todos. Three backends share the Store
// interface: MongoDB, PostgreSQL and an in-process memory store.
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/biosecret/go-todo/models"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore persists accounts.
type UserStore interface {
	// CreateUser inserts u and assigns u.ID. Returns ErrDuplicate when the
	// email is already registered.
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// TodoStore persists todos. Every read of a list and every mutation is
// filtered by owner; GetTodo is the only unscoped accessor and exists so
// callers can tell a missing todo apart from someone else's.
type TodoStore interface {
	ListTodos(ctx context.Context, ownerID string) ([]models.Todo, error)
	// CreateTodo inserts t and assigns t.ID.
	CreateTodo(ctx context.Context, t *models.Todo) error
	GetTodo(ctx context.Context, id string) (*models.Todo, error)
	// UpdateTodo persists title, description, completed and updatedAt of t.
	// Returns ErrNotFound unless t.ID exists and belongs to ownerID.
	UpdateTodo(ctx context.Context, ownerID string, t *models.Todo) error
	// DeleteTodo hard-deletes the todo. Returns ErrNotFound unless id exists
	// and belongs to ownerID.
	DeleteTodo(ctx context.Context, ownerID, id string) error
}

// Store is everything the API needs from a backend.
type Store interface {
	UserStore
	TodoStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the backend named by the URI scheme.
func Open(ctx context.Context, uri string, log *zap.Logger) (Store, error) {
	if uri == "" {
		return nil, errors.New("you must set your 'DATABASE_URI' environmental variable")
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse database uri: %w", err)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, uri, log)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, uri, log)
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
