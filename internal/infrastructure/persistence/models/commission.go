package models

import (
	"time"

	"github.com/distrib/backoffice/internal/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionRuleModel is the persistence model for the CommissionRule aggregate root.
type CommissionRuleModel struct {
	TenantAggregateModel
	Scope             commission.RuleScope `gorm:"type:varchar(20);not null;index"`
	Type              commission.RuleType  `gorm:"type:varchar(20);not null"`
	Percentage        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	FixedValue        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SpecificUserID    *uuid.UUID           `gorm:"type:uuid;index"`
	SpecificProductID *uuid.UUID           `gorm:"type:uuid;index"`
	IsActive          bool                 `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CommissionRuleModel) TableName() string {
	return "commission_rules"
}

// ToDomain converts the persistence model to a domain CommissionRule entity.
func (m *CommissionRuleModel) ToDomain() *commission.CommissionRule {
	r := &commission.CommissionRule{
		Scope:             m.Scope,
		Type:              m.Type,
		Percentage:        m.Percentage,
		FixedValue:        m.FixedValue,
		SpecificUserID:    m.SpecificUserID,
		SpecificProductID: m.SpecificProductID,
		IsActive:          m.IsActive,
	}
	m.PopulateTenantAggregateRoot(&r.TenantAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain CommissionRule entity.
func (m *CommissionRuleModel) FromDomain(r *commission.CommissionRule) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Scope = r.Scope
	m.Type = r.Type
	m.Percentage = r.Percentage
	m.FixedValue = r.FixedValue
	m.SpecificUserID = r.SpecificUserID
	m.SpecificProductID = r.SpecificProductID
	m.IsActive = r.IsActive
}

// CommissionRuleModelFromDomain creates a new persistence model from a domain CommissionRule.
func CommissionRuleModelFromDomain(r *commission.CommissionRule) *CommissionRuleModel {
	m := &CommissionRuleModel{}
	m.FromDomain(r)
	return m
}

// CommissionRecordModel is the persistence model for the CommissionRecord aggregate root.
type CommissionRecordModel struct {
	TenantAggregateModel
	OrderID           uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_commission_record_tenant_order,priority:2"`
	SellerID          uuid.UUID                   `gorm:"type:uuid;not null;index"`
	CalculationBase   decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	AppliedPercentage decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	CommissionAmount  decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Status            commission.CommissionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PayoutID          *uuid.UUID                  `gorm:"type:uuid;index"`
	DueDate           time.Time                   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CommissionRecordModel) TableName() string {
	return "commission_records"
}

// ToDomain converts the persistence model to a domain CommissionRecord entity.
func (m *CommissionRecordModel) ToDomain() *commission.CommissionRecord {
	r := &commission.CommissionRecord{
		OrderID:           m.OrderID,
		SellerID:          m.SellerID,
		CalculationBase:   m.CalculationBase,
		AppliedPercentage: m.AppliedPercentage,
		CommissionAmount:  m.CommissionAmount,
		Status:            m.Status,
		PayoutID:          m.PayoutID,
		DueDate:           m.DueDate,
	}
	m.PopulateTenantAggregateRoot(&r.TenantAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain CommissionRecord entity.
func (m *CommissionRecordModel) FromDomain(r *commission.CommissionRecord) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.OrderID = r.OrderID
	m.SellerID = r.SellerID
	m.CalculationBase = r.CalculationBase
	m.AppliedPercentage = r.AppliedPercentage
	m.CommissionAmount = r.CommissionAmount
	m.Status = r.Status
	m.PayoutID = r.PayoutID
	m.DueDate = r.DueDate
}

// CommissionRecordModelFromDomain creates a new persistence model from a domain CommissionRecord.
func CommissionRecordModelFromDomain(r *commission.CommissionRecord) *CommissionRecordModel {
	m := &CommissionRecordModel{}
	m.FromDomain(r)
	return m
}

// CommissionPayoutModel is the persistence model for the CommissionPayout aggregate root.
type CommissionPayoutModel struct {
	TenantAggregateModel
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RecordCount int             `gorm:"not null"`
	PaidAt      time.Time       `gorm:"not null;index"`
	Observation string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CommissionPayoutModel) TableName() string {
	return "commission_payouts"
}

// ToDomain converts the persistence model to a domain CommissionPayout entity.
func (m *CommissionPayoutModel) ToDomain() *commission.CommissionPayout {
	p := &commission.CommissionPayout{
		SellerID:    m.SellerID,
		TotalAmount: m.TotalAmount,
		RecordCount: m.RecordCount,
		PaidAt:      m.PaidAt,
		Observation: m.Observation,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain CommissionPayout entity.
func (m *CommissionPayoutModel) FromDomain(p *commission.CommissionPayout) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.SellerID = p.SellerID
	m.TotalAmount = p.TotalAmount
	m.RecordCount = p.RecordCount
	m.PaidAt = p.PaidAt
	m.Observation = p.Observation
}

// CommissionPayoutModelFromDomain creates a new persistence model from a domain CommissionPayout.
func CommissionPayoutModelFromDomain(p *commission.CommissionPayout) *CommissionPayoutModel {
	m := &CommissionPayoutModel{}
	m.FromDomain(p)
	return m
}
