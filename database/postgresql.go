package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email VARCHAR(255) UNIQUE NOT NULL,
	password TEXT NOT NULL,
	name VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS todos (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS todos_user_id_idx ON todos (user_id);
`

const todoColumns = "id, user_id, title, description, completed, created_at, updated_at"

// PostgresStore implements Store on database/sql with the pgx driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection. The schema must already exist.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects, pings and creates the tables if they are missing.
func OpenPostgres(ctx context.Context, uri string, log *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot connect to PostgreSQL: %w", err)
	}
	log.Info("connected to PostgreSQL")

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	log.Debug("tables created or already exist")

	return NewPostgresStore(db), nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	id := utils.NewID()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password, name, created_at) VALUES ($1, $2, $3, $4, $5)",
		id, u.Email, u.Password, u.Name, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, email, password, name, created_at FROM users WHERE email = $1", email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, email, password, name, created_at FROM users WHERE id = $1", id)
}

func (s *PostgresStore) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) ListTodos(ctx context.Context, ownerID string) ([]models.Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE user_id = $1 ORDER BY created_at, id", ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

func (s *PostgresStore) CreateTodo(ctx context.Context, t *models.Todo) error {
	id := utils.NewID()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO todos ("+todoColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		id, t.UserID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	t.ID = id
	return nil
}

func (s *PostgresStore) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	var t models.Todo
	err := s.db.QueryRowContext(ctx, "SELECT "+todoColumns+" FROM todos WHERE id = $1", id).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select todo: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) UpdateTodo(ctx context.Context, ownerID string, t *models.Todo) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE todos SET title = $1, description = $2, completed = $3, updated_at = $4 WHERE id = $5 AND user_id = $6",
		t.Title, t.Description, t.Completed, t.UpdatedAt, t.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return expectOneRow(res)
}

func (s *PostgresStore) DeleteTodo(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}
