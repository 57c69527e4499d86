package donation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
)

// Handler exposes donation listing and verification over HTTP.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func respondError(c *gin.Context, err error) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
		return
	}
	if common.IsAuthorization(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please sign in again"})
		return
	}
	var te *common.TransportError
	if errors.As(err, &te) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "donation service unavailable", "retryable": true})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// List returns donations for the admin view, optionally filtered by
// paymentStatus and paymentMethod query params.
func (h *Handler) List(c *gin.Context) {
	status := StatusAll
	if raw := c.Query("paymentStatus"); raw != "" && raw != "ALL" {
		parsed, ok := LookupPaymentStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment status: " + raw, "field": "paymentStatus"})
			return
		}
		status = parsed
	}

	method := PaymentMethod("")
	if raw := c.Query("paymentMethod"); raw != "" && raw != "ALL" {
		parsed, ok := LookupPaymentMethod(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment method: " + raw, "field": "paymentMethod"})
			return
		}
		method = parsed
	}

	donations, err := h.store.List(c.Request.Context(), status, method)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    donations,
		"count":   len(donations),
		"success": true,
	})
}

// Mine returns the authenticated donor's own history.
func (h *Handler) Mine(c *gin.Context) {
	donations, err := h.store.ListOwn(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    donations,
		"count":   len(donations),
		"success": true,
	})
}

type verifyRequest struct {
	Amount        float64 `json:"amount" binding:"required"`
	PaymentStatus string  `json:"paymentStatus" binding:"required"`
}

// Verify moves a donation forward in its payment lifecycle.
func (h *Handler) Verify(c *gin.Context) {
	donationID := c.Param("id")

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newStatus, ok := LookupPaymentStatus(req.PaymentStatus)
	if !ok || newStatus == StatusAll {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment status: " + req.PaymentStatus, "field": "paymentStatus"})
		return
	}

	updated, err := h.store.Verify(c.Request.Context(), donationID, req.Amount, newStatus)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    updated,
		"success": true,
	})
}
