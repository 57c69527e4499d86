package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
)

// Handler exposes the session lifecycle over HTTP.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates and replaces the live session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.store.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *common.AuthenticationError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":  authErr.Message,
				"reason": string(authErr.Reason),
			})
			return
		}
		var te *common.TransportError
		if errors.As(err, &te) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "login service unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user":   sess.Identity,
			"status": sess.Status,
		},
		"success": true,
	})
}

// Logout clears the session. Always succeeds, even when already logged out.
func (h *Handler) Logout(c *gin.Context) {
	h.store.Logout()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type resendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerification triggers a fresh verification mail for an unverified
// account.
func (h *Handler) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.ResendVerification(c.Request.Context(), req.Email); err != nil {
		var te *common.TransportError
		if errors.As(err, &te) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "verification service unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session reports the current session snapshot plus any pending expiry
// notice, so a reloading screen can show "your session expired" exactly once.
func (h *Handler) Session(c *gin.Context) {
	sess := h.store.Current()

	payload := gin.H{"status": sess.Status}
	if sess.Active() {
		payload["user"] = sess.Identity
	}
	if notice := h.store.Notice(); notice != "" {
		payload["notice"] = notice
	}

	c.JSON(http.StatusOK, gin.H{"data": payload, "success": true})
}
