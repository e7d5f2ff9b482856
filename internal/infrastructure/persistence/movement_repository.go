package persistence

import (
	"context"
	"errors"

	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM.
// Movements are append-only: there is no update or delete path.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create persists a new movement
func (r *GormMovementRepository) Create(ctx context.Context, movement *ledger.Movement) error {
	model := models.MovementModelFromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByTitle finds all movements against a title, oldest first
func (r *GormMovementRepository) FindByTitle(ctx context.Context, tenantID, titleID uuid.UUID) ([]ledger.Movement, error) {
	var movementModels []models.MovementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND title_id = ?", tenantID, titleID).
		Order("created_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	movements := make([]ledger.Movement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = *model.ToDomain()
	}
	return movements, nil
}

// FindByIDForTenant finds a movement by ID for a specific tenant
func (r *GormMovementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Movement, error) {
	var model models.MovementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormMovementRepository implements MovementRepository
var _ ledger.MovementRepository = (*GormMovementRepository)(nil)
