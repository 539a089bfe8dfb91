package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewTodo(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	todo, err := NewTodo("u1", "  Buy milk ", "", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", todo.UserID)
	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, "", todo.Description)
	assert.False(t, todo.Completed)
	assert.Equal(t, now, todo.CreatedAt)
	assert.Equal(t, now, todo.UpdatedAt)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := NewTodo("u1", title, "desc", now)
		assert.ErrorIs(t, err, ErrEmptyTitle, "title %q", title)
	}
}

func TestTodoApply(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	later := created.Add(time.Minute)

	base := func() *Todo {
		return &Todo{ID: "t1", UserID: "u1", Title: "Buy milk", Description: "2L", CreatedAt: created, UpdatedAt: created}
	}

	tests := []struct {
		name    string
		patch   TodoPatch
		want    Todo
		wantErr error
	}{
		{
			name:  "completed only",
			patch: TodoPatch{Completed: ptr(true)},
			want:  Todo{Title: "Buy milk", Description: "2L", Completed: true},
		},
		{
			name:  "empty title keeps previous",
			patch: TodoPatch{Title: ptr("")},
			want:  Todo{Title: "Buy milk", Description: "2L"},
		},
		{
			name:  "empty description is applied",
			patch: TodoPatch{Description: ptr("")},
			want:  Todo{Title: "Buy milk", Description: ""},
		},
		{
			name:  "all fields",
			patch: TodoPatch{Title: ptr(" Buy bread "), Description: ptr("rye"), Completed: ptr(false)},
			want:  Todo{Title: "Buy bread", Description: "rye"},
		},
		{
			name:    "blank title rejected",
			patch:   TodoPatch{Title: ptr("   ")},
			wantErr: ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo := base()
			err := todo.Apply(tt.patch, later)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Title, todo.Title)
			assert.Equal(t, tt.want.Description, todo.Description)
			assert.Equal(t, tt.want.Completed, todo.Completed)
			assert.Equal(t, created, todo.CreatedAt)
			assert.Equal(t, later, todo.UpdatedAt)
		})
	}
}

func TestTodoOwnedBy(t *testing.T) {
	todo := &Todo{UserID: "u1"}
	assert.True(t, todo.OwnedBy("u1"))
	assert.False(t, todo.OwnedBy("u2"))
}
