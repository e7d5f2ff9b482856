package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TitleFilter represents query filter options for titles
type TitleFilter struct {
	Page           int
	PageSize       int
	Type           *TitleType
	Status         *TitleStatus
	CounterpartyID *uuid.UUID
	OrderID        *uuid.UUID
	DueFrom        *time.Time
	DueTo          *time.Time
	OnlyOverdue    bool
	SortBy         string
	SortDir        string
}

// TitleRepository provides persistence for the Title aggregate
type TitleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Title, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, titleNumber string) (*Title, error)
	FindByGatewayPayment(ctx context.Context, tenantID uuid.UUID, gatewayPaymentID string) (*Title, error)
	// FindOpenByCounterparty returns open titles of the given direction for one
	// counterparty ordered by ascending due date, the fixed cascade tie-break.
	FindOpenByCounterparty(ctx context.Context, tenantID, counterpartyID uuid.UUID, titleType TitleType, excludeID uuid.UUID) ([]Title, error)
	// FindOpenByType returns all open titles of the given direction, used by
	// the reconciliation matcher to gather candidates.
	FindOpenByType(ctx context.Context, tenantID uuid.UUID, titleType TitleType) ([]Title, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TitleFilter) ([]Title, error)
	FindDueBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]Title, error)
	// TenantIDsWithDueTitles lists the tenants holding open titles past the
	// cutoff, so the background sweep knows which tenants to visit.
	TenantIDsWithDueTitles(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	Create(ctx context.Context, title *Title) error
	// SaveWithLock persists title mutations guarded by the version column.
	// A stale version means another allocation touched the title concurrently.
	SaveWithLock(ctx context.Context, title *Title) error
	NextTitleNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter TitleFilter) (int64, error)
}

// MovementRepository provides persistence for the append-only movement log
type MovementRepository interface {
	Create(ctx context.Context, movement *Movement) error
	FindByTitle(ctx context.Context, tenantID, titleID uuid.UUID) ([]Movement, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Movement, error)
}
