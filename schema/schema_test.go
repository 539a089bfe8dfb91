package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		schema    Name
		body      string
		wantErr   bool
		wantField string
	}{
		{name: "signup ok", schema: Signup, body: `{"email":"a@x.com","password":"pw1","name":"A"}`},
		{name: "signup bad email", schema: Signup, body: `{"email":"nope","password":"pw1","name":"A"}`, wantErr: true, wantField: "email"},
		{name: "signup missing name", schema: Signup, body: `{"email":"a@x.com","password":"pw1"}`, wantErr: true},
		{name: "signup empty password", schema: Signup, body: `{"email":"a@x.com","password":"","name":"A"}`, wantErr: true, wantField: "password"},
		{name: "login ok", schema: Login, body: `{"email":"a@x.com","password":"pw1"}`},
		{name: "login missing password", schema: Login, body: `{"email":"a@x.com"}`, wantErr: true},
		{name: "login not json", schema: Login, body: `email=a@x.com`, wantErr: true},
		{name: "create without title", schema: TodoCreate, body: `{}`},
		{name: "create empty body", schema: TodoCreate, body: ``},
		{name: "create numeric title", schema: TodoCreate, body: `{"title":42}`, wantErr: true, wantField: "title"},
		{name: "update completed only", schema: TodoUpdate, body: `{"completed":true}`},
		{name: "update completed wrong type", schema: TodoUpdate, body: `{"completed":"yes"}`, wantErr: true, wantField: "completed"},
		{name: "update array body", schema: TodoUpdate, body: `[]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, []byte(tt.body))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			ve, ok := err.(*ValidationError)
			require.True(t, ok, "want *ValidationError, got %T", err)
			assert.NotEmpty(t, ve.Message)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, ve.Field)
			}
		})
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	assert.Error(t, Validate(Name("nope.json"), []byte(`{}`)))
}
