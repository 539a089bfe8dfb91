// Package events fans todo changes out to live subscribers: SSE streams
// in this process and, optionally, an MQTT broker.
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/biosecret/go-todo/models"
)

// Type names the kind of change.
type Type string

const (
	Created Type = "created"
	Updated Type = "updated"
	Deleted Type = "deleted"
)

// Event is a change to one todo. UserID is the owner and routes the event.
type Event struct {
	Type   Type        `json:"type"`
	UserID string      `json:"-"`
	Todo   models.Todo `json:"todo"`
}

// Notifier receives every successful mutation. Publish must not block the
// request that triggered it.
type Notifier interface {
	Publish(Event)
}

// Multi publishes to every notifier in order.
type Multi []Notifier

func (m Multi) Publish(e Event) {
	for _, n := range m {
		n.Publish(e)
	}
}

// Nop drops events.
type Nop struct{}

func (Nop) Publish(Event) {}

// FormatSSE renders data as a server-sent event frame.
func FormatSSE(eventType string, data any) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "event: %s\n", eventType)
	fmt.Fprintf(&sb, "retry: %d\n", 15000)
	fmt.Fprintf(&sb, "data: %s\n\n", strings.TrimRight(buf.String(), "\n"))
	return sb.String(), nil
}
