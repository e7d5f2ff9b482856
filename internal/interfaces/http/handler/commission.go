package handler

import (
	"context"
	"time"

	commissionapp "github.com/distrib/backoffice/internal/application/commission"
	"github.com/distrib/backoffice/internal/domain/commission"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionHandler handles commission rule, record and payout endpoints
type CommissionHandler struct {
	BaseHandler
	commissionService *commissionapp.CommissionService
	payoutService     *commissionapp.PayoutService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(commissionService *commissionapp.CommissionService, payoutService *commissionapp.PayoutService) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
		payoutService:     payoutService,
	}
}

// ===================== Request/Response DTOs =====================

// CreateRuleRequest represents a request to create a commission rule
type CreateRuleRequest struct {
	Scope             string  `json:"scope" binding:"required,oneof=GLOBAL SELLER PRODUCT"`
	Type              string  `json:"type" binding:"required,oneof=PERCENTAGE FIXED HYBRID"`
	Percentage        string  `json:"percentage" binding:"omitempty,dec=nonneg"`
	FixedValue        string  `json:"fixed_value" binding:"omitempty,dec=nonneg"`
	SpecificUserID    *string `json:"specific_user_id" binding:"omitempty,uuid"`
	SpecificProductID *string `json:"specific_product_id" binding:"omitempty,uuid"`
}

// RuleResponse represents a commission rule in API responses
type RuleResponse struct {
	ID                string          `json:"id"`
	Scope             string          `json:"scope"`
	Type              string          `json:"type"`
	Percentage        decimal.Decimal `json:"percentage"`
	FixedValue        decimal.Decimal `json:"fixed_value"`
	SpecificUserID    *string         `json:"specific_user_id,omitempty"`
	SpecificProductID *string         `json:"specific_product_id,omitempty"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderLineRequest is one order line in a commission calculation request
type OrderLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  string `json:"quantity" binding:"required,dec=positive"`
	UnitPrice string `json:"unit_price" binding:"required,dec=nonneg"`
	Discount  string `json:"discount" binding:"omitempty,dec=nonneg"`
}

// OrderSnapshotRequest carries the order figures for commission calculation
type OrderSnapshotRequest struct {
	OrderID        string             `json:"order_id" binding:"required,uuid"`
	SellerID       *string            `json:"seller_id" binding:"omitempty,uuid"`
	ReferenceDate  string             `json:"reference_date" binding:"required"`
	HeaderDiscount string             `json:"header_discount" binding:"omitempty,dec=nonneg"`
	Lines          []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CalculationResponse is a commission calculation preview
type CalculationResponse struct {
	ItemsNetTotal    decimal.Decimal `json:"items_net_total"`
	FinalBase        decimal.Decimal `json:"final_base"`
	DiscountFactor   decimal.Decimal `json:"discount_factor"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	EffectiveRate    decimal.Decimal `json:"effective_rate"`
	LinesWithRule    int             `json:"lines_with_rule"`
	LinesWithoutRule int             `json:"lines_without_rule"`
}

// RecordResponse represents a commission record in API responses
type RecordResponse struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"order_id"`
	SellerID          string          `json:"seller_id"`
	CalculationBase   decimal.Decimal `json:"calculation_base"`
	AppliedPercentage decimal.Decimal `json:"applied_percentage"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
	Status            string          `json:"status"`
	PayoutID          *string         `json:"payout_id,omitempty"`
	DueDate           time.Time       `json:"due_date"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ListRecordsRequest represents commission record list query parameters
type ListRecordsRequest struct {
	SellerID string `form:"seller_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING APPROVED PAID CANCELED"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
}

// CreatePayoutRequest represents a request to settle approved records
type CreatePayoutRequest struct {
	SellerID    string   `json:"seller_id" binding:"required,uuid"`
	RecordIDs   []string `json:"record_ids" binding:"required,min=1,dive,uuid"`
	PaidAt      string   `json:"paid_at" binding:"required"`
	Observation string   `json:"observation" binding:"max=500"`
}

// PayoutResponse represents a commission payout batch in API responses
type PayoutResponse struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"seller_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	RecordCount int             `json:"record_count"`
	PaidAt      time.Time       `json:"paid_at"`
	Observation string          `json:"observation,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ===================== Rule handlers =====================

// CreateRule registers a new commission rule
func (h *CommissionHandler) CreateRule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	percentage, err := parseDecimalOrZero(req.Percentage)
	if err != nil {
		h.BadRequest(c, "Invalid percentage format")
		return
	}
	fixedValue, err := parseDecimalOrZero(req.FixedValue)
	if err != nil {
		h.BadRequest(c, "Invalid fixed value format")
		return
	}

	cmd := commissionapp.CreateRuleCommand{
		TenantID:   tenantID,
		Scope:      commission.RuleScope(req.Scope),
		Type:       commission.RuleType(req.Type),
		Percentage: percentage,
		FixedValue: fixedValue,
	}
	if cmd.SpecificUserID, err = parseUUIDPtr(req.SpecificUserID); err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}
	if cmd.SpecificProductID, err = parseUUIDPtr(req.SpecificProductID); err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	rule, err := h.commissionService.CreateRule(c.Request.Context(), cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toRuleResponse(rule))
}

// ListRules retrieves commission rules
func (h *CommissionHandler) ListRules(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	activeOnly := c.Query("active_only") == "true"

	rules, err := h.commissionService.ListRules(c.Request.Context(), tenantID, activeOnly)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]RuleResponse, len(rules))
	for i := range rules {
		responses[i] = toRuleResponse(&rules[i])
	}
	h.Success(c, responses)
}

// DeactivateRule retires a commission rule from future calculations
func (h *CommissionHandler) DeactivateRule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	if err := h.commissionService.DeactivateRule(c.Request.Context(), tenantID, ruleID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ===================== Record handlers =====================

// Calculate previews the commission for an order without persisting anything
func (h *CommissionHandler) Calculate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req OrderSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := toOrderSnapshot(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	calc, err := h.commissionService.CalculateForOrder(c.Request.Context(), tenantID, order)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toCalculationResponse(calc))
}

// RegisterRecord calculates and persists a PENDING commission record
// for an order
func (h *CommissionHandler) RegisterRecord(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req OrderSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := toOrderSnapshot(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, err := h.commissionService.RegisterForOrder(c.Request.Context(), tenantID, order)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if record == nil {
		// Zero commission or no seller; nothing to track
		h.Success(c, gin.H{"registered": false})
		return
	}

	h.Created(c, toRecordResponse(record))
}

// ListRecords retrieves commission records with filtering and pagination
func (h *CommissionHandler) ListRecords(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	filter := commission.RecordFilter{
		Limit:  req.PageSize,
		Offset: (req.Page - 1) * req.PageSize,
	}
	if req.SellerID != "" {
		id, err := uuid.Parse(req.SellerID)
		if err != nil {
			h.BadRequest(c, "Invalid seller ID format")
			return
		}
		filter.SellerID = &id
	}
	if req.Status != "" {
		status := commission.CommissionStatus(req.Status)
		filter.Status = &status
	}

	records, total, err := h.commissionService.ListRecords(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]RecordResponse, len(records))
	for i := range records {
		responses[i] = toRecordResponse(&records[i])
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// ApproveRecord moves a PENDING commission record to APPROVED
func (h *CommissionHandler) ApproveRecord(c *gin.Context) {
	h.transitionRecord(c, h.commissionService.ApproveRecord)
}

// CancelRecord cancels a commission record that has not been paid
func (h *CommissionHandler) CancelRecord(c *gin.Context) {
	h.transitionRecord(c, h.commissionService.CancelRecord)
}

func (h *CommissionHandler) transitionRecord(c *gin.Context, transition func(ctx context.Context, tenantID, recordID uuid.UUID) error) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID format")
		return
	}

	if err := transition(c.Request.Context(), tenantID, recordID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ===================== Payout handlers =====================

// CreatePayout settles a batch of approved records for one seller
func (h *CommissionHandler) CreatePayout(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	paidAt, err := parseDate(req.PaidAt)
	if err != nil {
		h.BadRequest(c, "Invalid paid_at format, expected YYYY-MM-DD")
		return
	}

	recordIDs := make([]uuid.UUID, len(req.RecordIDs))
	for i, raw := range req.RecordIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid record ID format")
			return
		}
		recordIDs[i] = id
	}

	payout, err := h.payoutService.CreatePayout(c.Request.Context(), commissionapp.CreatePayoutCommand{
		TenantID:    tenantID,
		SellerID:    sellerID,
		RecordIDs:   recordIDs,
		PaidAt:      paidAt,
		Observation: req.Observation,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toPayoutResponse(payout))
}

// GetPayout retrieves a payout batch by its ID
func (h *CommissionHandler) GetPayout(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payout ID format")
		return
	}

	payout, err := h.payoutService.GetPayout(c.Request.Context(), tenantID, payoutID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPayoutResponse(payout))
}

// ListPayouts retrieves payout batches for one seller
func (h *CommissionHandler) ListPayouts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sellerID, err := uuid.Parse(c.Query("seller_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing seller_id")
		return
	}

	payouts, err := h.payoutService.ListPayouts(c.Request.Context(), tenantID, sellerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]PayoutResponse, len(payouts))
	for i := range payouts {
		responses[i] = toPayoutResponse(&payouts[i])
	}
	h.Success(c, responses)
}

// ===================== Converters =====================

func toRuleResponse(rule *commission.CommissionRule) RuleResponse {
	return RuleResponse{
		ID:                rule.ID.String(),
		Scope:             string(rule.Scope),
		Type:              string(rule.Type),
		Percentage:        rule.Percentage,
		FixedValue:        rule.FixedValue,
		SpecificUserID:    uuidPtrToString(rule.SpecificUserID),
		SpecificProductID: uuidPtrToString(rule.SpecificProductID),
		IsActive:          rule.IsActive,
		CreatedAt:         rule.CreatedAt,
		UpdatedAt:         rule.UpdatedAt,
	}
}

func toCalculationResponse(calc *commission.Calculation) CalculationResponse {
	return CalculationResponse{
		ItemsNetTotal:    calc.ItemsNetTotal,
		FinalBase:        calc.FinalBase,
		DiscountFactor:   calc.DiscountFactor,
		CommissionAmount: calc.CommissionAmount,
		EffectiveRate:    calc.EffectiveRate,
		LinesWithRule:    calc.LinesWithRule,
		LinesWithoutRule: calc.LinesWithoutRule,
	}
}

func toRecordResponse(record *commission.CommissionRecord) RecordResponse {
	return RecordResponse{
		ID:                record.ID.String(),
		OrderID:           record.OrderID.String(),
		SellerID:          record.SellerID.String(),
		CalculationBase:   record.CalculationBase,
		AppliedPercentage: record.AppliedPercentage,
		CommissionAmount:  record.CommissionAmount,
		Status:            string(record.Status),
		PayoutID:          uuidPtrToString(record.PayoutID),
		DueDate:           record.DueDate,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func toPayoutResponse(payout *commission.CommissionPayout) PayoutResponse {
	return PayoutResponse{
		ID:          payout.ID.String(),
		SellerID:    payout.SellerID.String(),
		TotalAmount: payout.TotalAmount,
		RecordCount: payout.RecordCount,
		PaidAt:      payout.PaidAt,
		Observation: payout.Observation,
		CreatedAt:   payout.CreatedAt,
	}
}

func toOrderSnapshot(req OrderSnapshotRequest) (commission.OrderSnapshot, error) {
	var order commission.OrderSnapshot

	headerDiscount, err := parseDecimalOrZero(req.HeaderDiscount)
	if err != nil {
		return order, err
	}
	order.HeaderDiscount = headerDiscount

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return order, err
	}
	order.OrderID = orderID

	if order.SellerID, err = parseUUIDPtr(req.SellerID); err != nil {
		return order, err
	}

	if order.ReferenceDate, err = parseDate(req.ReferenceDate); err != nil {
		return order, err
	}

	order.Lines = make([]commission.OrderLine, len(req.Lines))
	for i, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return order, err
		}
		quantity, err := parseDecimal(line.Quantity)
		if err != nil {
			return order, err
		}
		unitPrice, err := parseDecimal(line.UnitPrice)
		if err != nil {
			return order, err
		}
		discount, err := parseDecimalOrZero(line.Discount)
		if err != nil {
			return order, err
		}
		order.Lines[i] = commission.OrderLine{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Discount:  discount,
		}
	}

	return order, nil
}
