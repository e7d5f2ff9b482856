package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTitleRepository implements TitleRepository using GORM
type GormTitleRepository struct {
	db *gorm.DB
}

// NewGormTitleRepository creates a new GormTitleRepository
func NewGormTitleRepository(db *gorm.DB) *GormTitleRepository {
	return &GormTitleRepository{db: db}
}

// FindByIDForTenant finds a title by ID for a specific tenant
func (r *GormTitleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Title, error) {
	var model models.TitleModel
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

// FindByNumber finds a title by its number for a tenant
func (r *GormTitleRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, titleNumber string) (*ledger.Title, error) {
	var model models.TitleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND title_number = ?", tenantID, titleNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGatewayPayment finds a title by its external gateway payment reference
func (r *GormTitleRepository) FindByGatewayPayment(ctx context.Context, tenantID uuid.UUID, gatewayPaymentID string) (*ledger.Title, error) {
	var model models.TitleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND gateway_payment_id = ?", tenantID, gatewayPaymentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByCounterparty finds open titles for a counterparty ordered by due
// date ascending. The ordering is what drives oldest-debt-first allocation.
func (r *GormTitleRepository) FindOpenByCounterparty(ctx context.Context, tenantID, counterpartyID uuid.UUID, titleType ledger.TitleType, excludeID uuid.UUID) ([]ledger.Title, error) {
	var titleModels []models.TitleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND counterparty_id = ? AND type = ? AND status IN ? AND id <> ?",
			tenantID, counterpartyID, titleType, ledger.OpenStatuses(), excludeID).
		Order("due_date ASC, created_at ASC").
		Find(&titleModels).Error; err != nil {
		return nil, err
	}
	return titleModelsToDomain(titleModels), nil
}

// FindOpenByType finds all open titles of one direction for a tenant
func (r *GormTitleRepository) FindOpenByType(ctx context.Context, tenantID uuid.UUID, titleType ledger.TitleType) ([]ledger.Title, error) {
	var titleModels []models.TitleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND status IN ?", tenantID, titleType, ledger.OpenStatuses()).
		Order("due_date ASC").
		Find(&titleModels).Error; err != nil {
		return nil, err
	}
	return titleModelsToDomain(titleModels), nil
}

// FindAllForTenant finds all titles for a tenant with filtering
func (r *GormTitleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TitleFilter) ([]ledger.Title, error) {
	var titleModels []models.TitleModel
	query := r.db.WithContext(ctx).Model(&models.TitleModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyTitleFilter(query, filter)

	if err := query.Find(&titleModels).Error; err != nil {
		return nil, err
	}
	return titleModelsToDomain(titleModels), nil
}

// FindDueBefore finds unpaid titles whose due date has passed the cutoff
func (r *GormTitleRepository) FindDueBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]ledger.Title, error) {
	var titleModels []models.TitleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND due_date < ? AND status IN ?", tenantID, cutoff,
			[]ledger.TitleStatus{ledger.TitleStatusOpen, ledger.TitleStatusPartial}).
		Order("due_date ASC").
		Find(&titleModels).Error; err != nil {
		return nil, err
	}
	return titleModelsToDomain(titleModels), nil
}

// TenantIDsWithDueTitles lists tenants that still hold unpaid titles past
// the cutoff
func (r *GormTitleRepository) TenantIDsWithDueTitles(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.TitleModel{}).
		Distinct("tenant_id").
		Where("due_date < ? AND status IN ?", cutoff,
			[]ledger.TitleStatus{ledger.TitleStatusOpen, ledger.TitleStatusPartial}).
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

// Create persists a new title
func (r *GormTitleRepository) Create(ctx context.Context, title *ledger.Title) error {
	model := models.TitleModelFromDomain(title)
	err := r.db.WithContext(ctx).Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Concurrent writers can race NextTitleNumber to the same number;
		// the unique index settles it and the caller picks a fresh one.
		return shared.ErrAlreadyExists
	}
	return err
}

// SaveWithLock saves with optimistic locking
func (r *GormTitleRepository) SaveWithLock(ctx context.Context, title *ledger.Title) error {
	model := models.TitleModelFromDomain(title)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", title.ID, title.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// NextTitleNumber generates the next sequential title number for a prefix.
// Format: PREFIX-NNNN, monotonic per tenant and prefix.
func (r *GormTitleRepository) NextTitleNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.TitleModel{}).
		Select("title_number").
		Where("tenant_id = ? AND title_number LIKE ?", tenantID, prefix+"-%").
		Order("title_number DESC").
		Limit(1).
		Pluck("title_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 2 {
			fmt.Sscanf(parts[1], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s-%04d", prefix, nextNum), nil
}

// CountForTenant counts titles for a tenant matching the filter
func (r *GormTitleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TitleFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.TitleModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyTitleFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyTitleFilter applies filter options to the query
func (r *GormTitleRepository) applyTitleFilter(query *gorm.DB, filter ledger.TitleFilter) *gorm.DB {
	query = r.applyTitleFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.SortBy, TitleSortFields, "due_date")
	sortOrder := ValidateSortOrder(filter.SortDir)
	return query.Order(fmt.Sprintf("%s %s, created_at ASC", sortField, sortOrder))
}

// applyTitleFilterWithoutPagination applies filter options without pagination
func (r *GormTitleRepository) applyTitleFilterWithoutPagination(query *gorm.DB, filter ledger.TitleFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.OnlyOverdue {
		query = query.Where("due_date < ? AND status IN ?", time.Now(), ledger.OpenStatuses())
	}

	return query
}

// titleModelsToDomain converts a slice of persistence models to domain titles
func titleModelsToDomain(titleModels []models.TitleModel) []ledger.Title {
	titles := make([]ledger.Title, len(titleModels))
	for i, model := range titleModels {
		titles[i] = *model.ToDomain()
	}
	return titles
}

// Ensure GormTitleRepository implements TitleRepository
var _ ledger.TitleRepository = (*GormTitleRepository)(nil)
