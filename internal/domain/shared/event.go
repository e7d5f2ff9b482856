package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is raised by aggregates when something business-relevant happens.
// The core never publishes events itself; callers drain them from the aggregate
// and forward them to whatever messaging the surrounding system uses.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	TenantID() uuid.UUID
	OccurredAt() time.Time
}

// BaseDomainEvent provides common fields for domain events
type BaseDomainEvent struct {
	ID         uuid.UUID
	Type       string
	Aggregate  uuid.UUID
	Tenant     uuid.UUID
	OccurredOn time.Time
}

// NewBaseDomainEvent creates the common event envelope
func NewBaseDomainEvent(eventType string, aggregateID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Aggregate:  aggregateID,
		Tenant:     tenantID,
		OccurredOn: time.Now(),
	}
}

// EventID returns the unique event id
func (e BaseDomainEvent) EventID() uuid.UUID { return e.ID }

// EventType returns the event type name
func (e BaseDomainEvent) EventType() string { return e.Type }

// AggregateID returns the id of the aggregate that raised the event
func (e BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate }

// TenantID returns the tenant the event belongs to
func (e BaseDomainEvent) TenantID() uuid.UUID { return e.Tenant }

// OccurredAt returns the event timestamp
func (e BaseDomainEvent) OccurredAt() time.Time { return e.OccurredOn }
