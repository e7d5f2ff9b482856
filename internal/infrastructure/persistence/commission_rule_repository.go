package persistence

import (
	"context"
	"errors"

	"github.com/distrib/backoffice/internal/domain/commission"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommissionRuleRepository implements RuleRepository using GORM
type GormCommissionRuleRepository struct {
	db *gorm.DB
}

// NewGormCommissionRuleRepository creates a new GormCommissionRuleRepository
func NewGormCommissionRuleRepository(db *gorm.DB) *GormCommissionRuleRepository {
	return &GormCommissionRuleRepository{db: db}
}

// FindByIDForTenant finds a commission rule by ID for a specific tenant
func (r *GormCommissionRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionRule, error) {
	var model models.CommissionRuleModel
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

// FindCandidates loads every active rule that could apply to an order in one
// query: all GLOBAL rules, SELLER rules targeting the seller and PRODUCT
// rules targeting any ordered product. Precedence is resolved in memory.
func (r *GormCommissionRuleRepository) FindCandidates(ctx context.Context, tenantID, sellerID uuid.UUID, productIDs []uuid.UUID) ([]commission.CommissionRule, error) {
	var ruleModels []models.CommissionRuleModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true)

	if len(productIDs) > 0 {
		query = query.Where(
			"scope = ? OR (scope = ? AND specific_user_id = ?) OR (scope = ? AND specific_product_id IN ?)",
			commission.RuleScopeGlobal, commission.RuleScopeSeller, sellerID,
			commission.RuleScopeProduct, productIDs)
	} else {
		query = query.Where(
			"scope = ? OR (scope = ? AND specific_user_id = ?)",
			commission.RuleScopeGlobal, commission.RuleScopeSeller, sellerID)
	}

	if err := query.Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	return ruleModelsToDomain(ruleModels), nil
}

// FindAllForTenant finds all commission rules for a tenant
func (r *GormCommissionRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]commission.CommissionRule, error) {
	var ruleModels []models.CommissionRuleModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Order("created_at DESC").Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	return ruleModelsToDomain(ruleModels), nil
}

// Create persists a new commission rule
func (r *GormCommissionRuleRepository) Create(ctx context.Context, rule *commission.CommissionRule) error {
	model := models.CommissionRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormCommissionRuleRepository) SaveWithLock(ctx context.Context, rule *commission.CommissionRule) error {
	model := models.CommissionRuleModelFromDomain(rule)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", rule.ID, rule.Version-1).
		Select("*").
		Omit("id", "created_at", "tenant_id").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// ruleModelsToDomain converts a slice of persistence models to domain rules
func ruleModelsToDomain(ruleModels []models.CommissionRuleModel) []commission.CommissionRule {
	rules := make([]commission.CommissionRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules
}

// Ensure GormCommissionRuleRepository implements RuleRepository
var _ commission.RuleRepository = (*GormCommissionRuleRepository)(nil)
