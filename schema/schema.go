// Package schema validates request bodies against embedded JSON schemas.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var files embed.FS

// Name identifies one of the embedded schemas.
type Name string

const (
	Signup     Name = "signup.json"
	Login      Name = "login.json"
	TodoCreate Name = "todo_create.json"
	TodoUpdate Name = "todo_update.json"
)

// baseURL only namespaces the embedded resources; nothing is fetched.
const baseURL = "https://gotodo.local/schemas/"

var compiled = mustCompileAll(Signup, Login, TodoCreate, TodoUpdate)

// ValidationError describes why a body was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func mustCompileAll(names ...Name) map[Name]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	for _, name := range names {
		raw, err := files.ReadFile("schemas/" + string(name))
		if err != nil {
			panic(fmt.Sprintf("read schema %s: %v", name, err))
		}
		if err := compiler.AddResource(baseURL+string(name), bytes.NewReader(raw)); err != nil {
			panic(fmt.Sprintf("add schema %s: %v", name, err))
		}
	}

	out := make(map[Name]*jsonschema.Schema, len(names))
	for _, name := range names {
		out[name] = compiler.MustCompile(baseURL + string(name))
	}
	return out
}

// Validate checks body against the named schema. A non-nil error is always a
// *ValidationError.
func Validate(name Name, body []byte) error {
	s, ok := compiled[name]
	if !ok {
		return &ValidationError{Message: fmt.Sprintf("unknown schema %q", name)}
	}

	var doc interface{}
	if len(bytes.TrimSpace(body)) == 0 {
		doc = map[string]interface{}{}
	} else if err := json.Unmarshal(body, &doc); err != nil {
		return &ValidationError{Message: "invalid JSON body"}
	}

	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return leaf(ve)
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// leaf returns the first innermost cause, which carries the most specific
// message.
func leaf(ve *jsonschema.ValidationError) *ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	return &ValidationError{Field: strings.ReplaceAll(field, "/", "."), Message: ve.Message}
}
