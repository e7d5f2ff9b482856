package ledger

import (
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names for the ledger context
const (
	EventTypeTitleCreated = "ledger.title.created"
	EventTypeTitleSettled = "ledger.title.settled"
)

// TitleCreatedEvent is raised when a new title enters the ledger
type TitleCreatedEvent struct {
	shared.BaseDomainEvent
	TitleNumber    string          `json:"title_number"`
	TitleType      TitleType       `json:"title_type"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	IsCredit       bool            `json:"is_credit"`
}

// NewTitleCreatedEvent creates a TitleCreatedEvent
func NewTitleCreatedEvent(t *Title) *TitleCreatedEvent {
	return &TitleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTitleCreated, t.ID, t.TenantID),
		TitleNumber:     t.TitleNumber,
		TitleType:       t.Type,
		OriginalAmount:  t.OriginalAmount,
		IsCredit:        t.IsCredit,
	}
}

// TitleSettledEvent is raised when a title's balance reaches zero
type TitleSettledEvent struct {
	shared.BaseDomainEvent
	TitleNumber    string          `json:"title_number"`
	FinalMovement  decimal.Decimal `json:"final_movement_amount"`
	ResidueRounded decimal.Decimal `json:"residue_rounded"`
}

// NewTitleSettledEvent creates a TitleSettledEvent
func NewTitleSettledEvent(t *Title, final *Movement) *TitleSettledEvent {
	return &TitleSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTitleSettled, t.ID, t.TenantID),
		TitleNumber:     t.TitleNumber,
		FinalMovement:   final.Amount,
		ResidueRounded:  t.Balance,
	}
}
