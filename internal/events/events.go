// Package events describes record lifecycle events emitted after a
// successful CREATE, UPDATE or DELETE.
package events

import (
	"context"
	"time"

	"github.com/mls-workflow/cadastro-api/internal/types"
)

// Type names the lifecycle change. It doubles as the routing key.
type Type string

const (
	TypeCreated Type = "cadastro.created"
	TypeUpdated Type = "cadastro.updated"
	TypeDeleted Type = "cadastro.deleted"
)

// Event is the message published for a record change.
type Event struct {
	ID                string        `json:"id"`
	Type              Type          `json:"type"`
	ProcessInstanceID string        `json:"process_instance_id"`
	RecordID          int64         `json:"record_id"`
	Record            *types.Record `json:"record,omitempty"`
	Timestamp         time.Time     `json:"timestamp"`
}

// Publisher sends events somewhere. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }
