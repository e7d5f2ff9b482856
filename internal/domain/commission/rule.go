package commission

import (
	"time"

	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleScope defines where a commission rule applies.
// Resolution priority is PRODUCT > SELLER > GLOBAL.
type RuleScope string

const (
	RuleScopeGlobal  RuleScope = "GLOBAL"
	RuleScopeSeller  RuleScope = "SELLER"
	RuleScopeProduct RuleScope = "PRODUCT"
)

// IsValid checks if the scope is a valid RuleScope
func (s RuleScope) IsValid() bool {
	return s == RuleScopeGlobal || s == RuleScopeSeller || s == RuleScopeProduct
}

// Priority returns the resolution priority of the scope; higher wins
func (s RuleScope) Priority() int {
	switch s {
	case RuleScopeProduct:
		return 3
	case RuleScopeSeller:
		return 2
	case RuleScopeGlobal:
		return 1
	}
	return 0
}

// RuleType defines how a rule turns a line net into a commission amount
type RuleType string

const (
	RuleTypePercentage RuleType = "PERCENTAGE"
	RuleTypeFixed      RuleType = "FIXED"
	RuleTypeHybrid     RuleType = "HYBRID"
)

// IsValid checks if the rule type is valid
func (t RuleType) IsValid() bool {
	return t == RuleTypePercentage || t == RuleTypeFixed || t == RuleTypeHybrid
}

var oneHundred = decimal.NewFromInt(100)

// CommissionRule defines how commission is computed for a scope.
// At most one active rule wins per order line.
type CommissionRule struct {
	shared.TenantAggregateRoot
	Scope             RuleScope       `json:"scope"`
	Type              RuleType        `json:"type"`
	Percentage        decimal.Decimal `json:"percentage"`
	FixedValue        decimal.Decimal `json:"fixed_value"`
	SpecificUserID    *uuid.UUID      `json:"specific_user_id,omitempty"`
	SpecificProductID *uuid.UUID      `json:"specific_product_id,omitempty"`
	IsActive          bool            `json:"is_active"`
}

// NewCommissionRule creates a new active commission rule
func NewCommissionRule(
	tenantID uuid.UUID,
	scope RuleScope,
	ruleType RuleType,
	percentage, fixedValue decimal.Decimal,
	specificUserID, specificProductID *uuid.UUID,
) (*CommissionRule, error) {
	if !scope.IsValid() {
		return nil, shared.NewDomainError("INVALID_RULE_SCOPE", "Rule scope must be GLOBAL, SELLER or PRODUCT")
	}
	if !ruleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RULE_TYPE", "Rule type must be PERCENTAGE, FIXED or HYBRID")
	}
	if percentage.IsNegative() || fixedValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RULE_VALUE", "Rule values cannot be negative")
	}
	if percentage.GreaterThan(oneHundred) {
		return nil, shared.NewDomainError("INVALID_RULE_VALUE", "Percentage cannot exceed 100")
	}
	if (ruleType == RuleTypePercentage || ruleType == RuleTypeHybrid) && percentage.IsZero() {
		return nil, shared.NewDomainError("INVALID_RULE_VALUE", "Percentage is required for PERCENTAGE and HYBRID rules")
	}
	if (ruleType == RuleTypeFixed || ruleType == RuleTypeHybrid) && fixedValue.IsZero() {
		return nil, shared.NewDomainError("INVALID_RULE_VALUE", "Fixed value is required for FIXED and HYBRID rules")
	}
	if scope == RuleScopeSeller && specificUserID == nil {
		return nil, shared.NewDomainError("INVALID_RULE_TARGET", "SELLER scope requires a specific user")
	}
	if scope == RuleScopeProduct && specificProductID == nil {
		return nil, shared.NewDomainError("INVALID_RULE_TARGET", "PRODUCT scope requires a specific product")
	}

	return &CommissionRule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Scope:               scope,
		Type:                ruleType,
		Percentage:          percentage,
		FixedValue:          fixedValue,
		SpecificUserID:      specificUserID,
		SpecificProductID:   specificProductID,
		IsActive:            true,
	}, nil
}

// Deactivate retires the rule from resolution
func (r *CommissionRule) Deactivate() {
	r.IsActive = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// AppliesTo reports whether the rule covers a line sold by sellerID for productID
func (r *CommissionRule) AppliesTo(sellerID, productID uuid.UUID) bool {
	if !r.IsActive {
		return false
	}
	switch r.Scope {
	case RuleScopeProduct:
		return r.SpecificProductID != nil && *r.SpecificProductID == productID
	case RuleScopeSeller:
		return r.SpecificUserID != nil && *r.SpecificUserID == sellerID
	case RuleScopeGlobal:
		return true
	}
	return false
}

// Contribution computes the commission this rule yields for one order line.
// PERCENTAGE contributes lineNet*pct/100, FIXED contributes fixedValue per
// unit, HYBRID contributes both.
func (r *CommissionRule) Contribution(lineNet, quantity decimal.Decimal) decimal.Decimal {
	contribution := decimal.Zero
	switch r.Type {
	case RuleTypePercentage:
		contribution = lineNet.Mul(r.Percentage).Div(oneHundred)
	case RuleTypeFixed:
		contribution = r.FixedValue.Mul(quantity)
	case RuleTypeHybrid:
		contribution = lineNet.Mul(r.Percentage).Div(oneHundred).Add(r.FixedValue.Mul(quantity))
	}
	return contribution
}

// ResolveRule picks the applicable rule for one order line from a candidate
// set fetched in a single bounded query. The first existing active rule in
// PRODUCT > SELLER > GLOBAL order wins; ties within a scope go to the most
// recently created rule. Returns nil when no rule applies.
func ResolveRule(candidates []CommissionRule, sellerID, productID uuid.UUID) *CommissionRule {
	var winner *CommissionRule
	for i := range candidates {
		rule := &candidates[i]
		if !rule.AppliesTo(sellerID, productID) {
			continue
		}
		if winner == nil {
			winner = rule
			continue
		}
		if rule.Scope.Priority() > winner.Scope.Priority() {
			winner = rule
			continue
		}
		if rule.Scope.Priority() == winner.Scope.Priority() && rule.CreatedAt.After(winner.CreatedAt) {
			winner = rule
		}
	}
	return winner
}
