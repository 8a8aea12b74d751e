package event

import (
	"time"
)

type Type string

const (
	TypeProductCreated Type = "product_created"
	TypeProductUpdated Type = "product_updated"
	TypeProductDeleted Type = "product_deleted"
	TypeProjectCreated Type = "project_created"
)

// Channel is a domain-scoped notification channel. All event types of one
// domain share a single LISTEN connection.
type Channel string

const (
	ChannelProduct Channel = "product"
	ChannelProject Channel = "project"
)

var typeToChannel = map[Type]Channel{
	TypeProductCreated: ChannelProduct,
	TypeProductUpdated: ChannelProduct,
	TypeProductDeleted: ChannelProduct,
	TypeProjectCreated: ChannelProject,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state through the use-cases.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID string) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
