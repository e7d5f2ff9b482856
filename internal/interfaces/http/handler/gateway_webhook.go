package handler

import (
	ledgerapp "github.com/distrib/backoffice/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GatewayWebhookHandler receives payment notifications from the payment gateway
type GatewayWebhookHandler struct {
	BaseHandler
	titleService *ledgerapp.TitleService
}

// NewGatewayWebhookHandler creates a new GatewayWebhookHandler
func NewGatewayWebhookHandler(titleService *ledgerapp.TitleService) *GatewayWebhookHandler {
	return &GatewayWebhookHandler{titleService: titleService}
}

// GatewayPaymentNotification is the payload posted by the payment gateway.
// DeliveryID dedupes webhook retries; replays return the same 200 body.
type GatewayPaymentNotification struct {
	DeliveryID       string `json:"delivery_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	TitleID          string `json:"title_id" binding:"required,uuid"`
	Amount           string `json:"amount" binding:"required,dec=positive"`
	PaidAt           string `json:"paid_at" binding:"required"`
}

// HandlePaymentNotification registers a gateway payment against a title
func (h *GatewayWebhookHandler) HandlePaymentNotification(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req GatewayPaymentNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	titleID, err := uuid.Parse(req.TitleID)
	if err != nil {
		h.BadRequest(c, "Invalid title ID format")
		return
	}

	paidAt, err := parseDate(req.PaidAt)
	if err != nil {
		h.BadRequest(c, "Invalid paid_at format, expected YYYY-MM-DD or RFC3339")
		return
	}

	amount, err := parseDecimal(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}

	// Webhook callers are machines, not logged-in users; attribute the
	// movement to the tenant-scoped system user when no header is present.
	userID, err := getUserID(c)
	if err != nil {
		userID = uuid.Nil
	}

	result, err := h.titleService.RegisterGatewayPayment(c.Request.Context(), ledgerapp.RegisterGatewayPaymentCommand{
		TenantID:         tenantID,
		DeliveryID:       req.DeliveryID,
		GatewayPaymentID: req.GatewayPaymentID,
		TitleID:          titleID,
		Amount:           amount,
		PaidAt:           paidAt,
		UserID:           userID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	// Replayed deliveries come back with an empty result; the gateway only
	// needs a 2xx to stop retrying.
	h.Success(c, toAllocationResultResponse(result))
}
