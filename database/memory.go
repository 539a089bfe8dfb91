package database

import (
	"context"
	"sync"

	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
)

// MemoryStore keeps everything in process memory. Todos are listed in
// insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	todos   map[string]models.Todo
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		todos:   make(map[string]models.Todo),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	u.ID = utils.NewID()
	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) ListTodos(_ context.Context, ownerID string) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := []models.Todo{}
	for _, id := range s.order {
		if t := s.todos[id]; t.UserID == ownerID {
			todos = append(todos, t)
		}
	}
	return todos, nil
}

func (s *MemoryStore) CreateTodo(_ context.Context, t *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = utils.NewID()
	s.todos[t.ID] = *t
	s.order = append(s.order, t.ID)
	return nil
}

func (s *MemoryStore) GetTodo(_ context.Context, id string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) UpdateTodo(_ context.Context, ownerID string, t *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.todos[t.ID]
	if !ok || cur.UserID != ownerID {
		return ErrNotFound
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Completed = t.Completed
	cur.UpdatedAt = t.UpdatedAt
	s.todos[t.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteTodo(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.todos[id]
	if !ok || cur.UserID != ownerID {
		return ErrNotFound
	}
	delete(s.todos, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }
