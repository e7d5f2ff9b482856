package handler

import (
	"time"

	ledgerapp "github.com/distrib/backoffice/internal/application/ledger"
	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TitleHandler handles receivable/payable title API endpoints
type TitleHandler struct {
	BaseHandler
	titleService *ledgerapp.TitleService
	allocator    *ledgerapp.AllocatorService
}

// NewTitleHandler creates a new TitleHandler
func NewTitleHandler(titleService *ledgerapp.TitleService, allocator *ledgerapp.AllocatorService) *TitleHandler {
	return &TitleHandler{
		titleService: titleService,
		allocator:    allocator,
	}
}

// ===================== Request/Response DTOs =====================

// TitleResponse represents a title in API responses
type TitleResponse struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	TitleNumber      string          `json:"title_number"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	Balance          decimal.Decimal `json:"balance"`
	DueDate          time.Time       `json:"due_date"`
	CounterpartyID   *string         `json:"counterparty_id,omitempty"`
	OrderID          *string         `json:"order_id,omitempty"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	IsCredit         bool            `json:"is_credit"`
	Observation      string          `json:"observation,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// MovementResponse represents a title movement in API responses
type MovementResponse struct {
	ID            string          `json:"id"`
	TitleID       string          `json:"title_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	UserID        string          `json:"user_id"`
	BankAccountID *string         `json:"bank_account_id,omitempty"`
	Observation   string          `json:"observation,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AllocationEntryResponse reports one movement produced by a payment cascade
type AllocationEntryResponse struct {
	TitleID     string          `json:"title_id"`
	TitleNumber string          `json:"title_number"`
	MovementID  string          `json:"movement_id"`
	Amount      decimal.Decimal `json:"amount"`
	NewStatus   string          `json:"new_status"`
}

// AllocationResultResponse is the outcome of one payment allocation.
// Decimal fields serialize as strings.
type AllocationResultResponse struct {
	Entries        []AllocationEntryResponse `json:"entries"`
	TotalAllocated decimal.Decimal           `json:"total_allocated"`
	CreditTitleID  *string                   `json:"credit_title_id,omitempty"`
	CreditAmount   decimal.Decimal           `json:"credit_amount"`
}

// CreateTitleRequest represents a request to create a title
type CreateTitleRequest struct {
	Type           string  `json:"type" binding:"required,oneof=RECEIVABLE PAYABLE"`
	Amount         string  `json:"amount" binding:"required,dec=positive"`
	DueDate        string  `json:"due_date" binding:"required"`
	CounterpartyID *string `json:"counterparty_id" binding:"omitempty,uuid"`
	OrderID        *string `json:"order_id" binding:"omitempty,uuid"`
	Observation    string  `json:"observation" binding:"max=500"`
}

// AllocatePaymentRequest represents a request to apply a payment to a title
type AllocatePaymentRequest struct {
	Amount        string  `json:"amount" binding:"required,dec=positive"`
	PaymentDate   string  `json:"payment_date" binding:"required"`
	BankAccountID *string `json:"bank_account_id" binding:"omitempty,uuid"`
	Observation   string  `json:"observation" binding:"max=500"`
}

// ListTitlesRequest represents title list query parameters
type ListTitlesRequest struct {
	Type           string `form:"type" binding:"omitempty,oneof=RECEIVABLE PAYABLE"`
	Status         string `form:"status" binding:"omitempty,oneof=OPEN PARTIAL PAID OVERDUE"`
	CounterpartyID string `form:"counterparty_id" binding:"omitempty,uuid"`
	OrderID        string `form:"order_id" binding:"omitempty,uuid"`
	DueFrom        string `form:"due_from"`
	DueTo          string `form:"due_to"`
	Overdue        bool   `form:"overdue"`
	SortBy         string `form:"sort_by"`
	SortDir        string `form:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size" binding:"omitempty,max=100"`
}

// ===================== Handlers =====================

// Create registers a new receivable or payable title
func (h *TitleHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due date format, expected YYYY-MM-DD")
		return
	}

	amount, err := parseDecimal(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}

	cmd := ledgerapp.CreateTitleCommand{
		TenantID:    tenantID,
		Type:        ledger.TitleType(req.Type),
		Amount:      amount,
		DueDate:     dueDate,
		Observation: req.Observation,
	}
	if cmd.CounterpartyID, err = parseUUIDPtr(req.CounterpartyID); err != nil {
		h.BadRequest(c, "Invalid counterparty ID format")
		return
	}
	if cmd.OrderID, err = parseUUIDPtr(req.OrderID); err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	title, err := h.titleService.CreateTitle(c.Request.Context(), cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toTitleResponse(title))
}

// List retrieves titles with filtering and pagination
func (h *TitleHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListTitlesRequest
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

	filter, err := toTitleFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	titles, total, err := h.titleService.ListTitles(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toTitleResponses(titles), total, req.Page, req.PageSize)
}

// GetByID retrieves a title by its ID
func (h *TitleHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	titleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid title ID format")
		return
	}

	title, err := h.titleService.GetTitle(c.Request.Context(), tenantID, titleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTitleResponse(title))
}

// ListMovements retrieves the movement history of a title
func (h *TitleHandler) ListMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	titleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid title ID format")
		return
	}

	movements, err := h.titleService.ListMovements(c.Request.Context(), tenantID, titleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toMovementResponses(movements))
}

// AllocatePayment applies a payment to a title, cascading any surplus
// across the counterparty's other open titles
func (h *TitleHandler) AllocatePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	titleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid title ID format")
		return
	}

	var req AllocatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment date format, expected YYYY-MM-DD")
		return
	}

	amount, err := parseDecimal(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}

	cmd := ledgerapp.AllocatePaymentCommand{
		TenantID:      tenantID,
		TargetTitleID: titleID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		UserID:        userID,
		Observation:   req.Observation,
	}
	if cmd.BankAccountID, err = parseUUIDPtr(req.BankAccountID); err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	result, err := h.allocator.Allocate(c.Request.Context(), cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAllocationResultResponse(result))
}

// SweepOverdue flips open titles past their due date to OVERDUE
func (h *TitleHandler) SweepOverdue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	swept, err := h.titleService.SweepOverdue(c.Request.Context(), tenantID, time.Now())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"titles_marked": swept})
}

// ===================== Converters =====================

func toTitleResponse(title *ledger.Title) TitleResponse {
	return TitleResponse{
		ID:               title.ID.String(),
		TenantID:         title.TenantID.String(),
		TitleNumber:      title.TitleNumber,
		Type:             string(title.Type),
		Status:           string(title.Status),
		OriginalAmount:   title.OriginalAmount,
		Balance:          title.Balance,
		DueDate:          title.DueDate,
		CounterpartyID:   uuidPtrToString(title.CounterpartyID),
		OrderID:          uuidPtrToString(title.OrderID),
		GatewayPaymentID: title.GatewayPaymentID,
		IsCredit:         title.IsCredit,
		Observation:      title.Observation,
		CreatedAt:        title.CreatedAt,
		UpdatedAt:        title.UpdatedAt,
		Version:          title.Version,
	}
}

func toTitleResponses(titles []ledger.Title) []TitleResponse {
	responses := make([]TitleResponse, len(titles))
	for i := range titles {
		responses[i] = toTitleResponse(&titles[i])
	}
	return responses
}

func toMovementResponse(movement *ledger.Movement) MovementResponse {
	return MovementResponse{
		ID:            movement.ID.String(),
		TitleID:       movement.TitleID.String(),
		Type:          string(movement.Type),
		Amount:        movement.Amount,
		PaymentDate:   movement.PaymentDate,
		UserID:        movement.UserID.String(),
		BankAccountID: uuidPtrToString(movement.BankAccountID),
		Observation:   movement.Observation,
		CreatedAt:     movement.CreatedAt,
	}
}

func toMovementResponses(movements []ledger.Movement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = toMovementResponse(&movements[i])
	}
	return responses
}

func toAllocationResultResponse(result *ledgerapp.AllocationResult) AllocationResultResponse {
	entries := make([]AllocationEntryResponse, len(result.Entries))
	for i, entry := range result.Entries {
		entries[i] = AllocationEntryResponse{
			TitleID:     entry.TitleID.String(),
			TitleNumber: entry.TitleNumber,
			MovementID:  entry.MovementID.String(),
			Amount:      entry.Amount,
			NewStatus:   string(entry.NewStatus),
		}
	}
	resp := AllocationResultResponse{
		Entries:        entries,
		TotalAllocated: result.TotalAllocated,
		CreditAmount:   result.CreditAmount,
	}
	if result.CreditTitleID != nil {
		id := result.CreditTitleID.String()
		resp.CreditTitleID = &id
	}
	return resp
}

func toTitleFilter(req ListTitlesRequest) (ledger.TitleFilter, error) {
	filter := ledger.TitleFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		OnlyOverdue: req.Overdue,
		SortBy:      req.SortBy,
		SortDir:     req.SortDir,
	}
	if req.Type != "" {
		titleType := ledger.TitleType(req.Type)
		filter.Type = &titleType
	}
	if req.Status != "" {
		status := ledger.TitleStatus(req.Status)
		filter.Status = &status
	}
	if req.CounterpartyID != "" {
		id, err := uuid.Parse(req.CounterpartyID)
		if err != nil {
			return filter, err
		}
		filter.CounterpartyID = &id
	}
	if req.OrderID != "" {
		id, err := uuid.Parse(req.OrderID)
		if err != nil {
			return filter, err
		}
		filter.OrderID = &id
	}
	if req.DueFrom != "" {
		from, err := parseDate(req.DueFrom)
		if err != nil {
			return filter, err
		}
		filter.DueFrom = &from
	}
	if req.DueTo != "" {
		to, err := parseDate(req.DueTo)
		if err != nil {
			return filter, err
		}
		filter.DueTo = &to
	}
	return filter, nil
}
