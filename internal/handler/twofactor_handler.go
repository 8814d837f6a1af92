package handler

import (
	"errors"
	"log"
	"net/http"

	"job_board/internal/middleware"
	"job_board/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TwoFactorHandler handles TOTP enrollment and management requests
type TwoFactorHandler struct {
	service service.TwoFactorService
}

// NewTwoFactorHandler creates a new TwoFactorHandler
func NewTwoFactorHandler(s service.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{service: s}
}

func authUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *TwoFactorHandler) Status(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}

	status, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		log.Printf("ERROR: 2fa status failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch two-factor status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *TwoFactorHandler) Setup(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}

	setup, err := h.service.Setup(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrTwoFactorAlreadyEnabled) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("ERROR: 2fa setup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set up two-factor authentication"})
		return
	}

	c.JSON(http.StatusOK, setup)
}

func (h *TwoFactorHandler) VerifyEnable(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.VerifyEnable(c.Request.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrTwoFactorNotSetUp):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTwoFactorCodeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			log.Printf("ERROR: 2fa enable failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable two-factor authentication"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication enabled"})
}

func (h *TwoFactorHandler) Disable(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.Disable(c.Request.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrTwoFactorNotSetUp):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTwoFactorCodeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			log.Printf("ERROR: 2fa disable failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable two-factor authentication"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication disabled"})
}

func (h *TwoFactorHandler) RegenerateBackupCodes(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	codes, err := h.service.RegenerateBackupCodes(c.Request.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTwoFactorNotSetUp):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTwoFactorCodeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			log.Printf("ERROR: 2fa backup code regeneration failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate backup codes"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"backup_codes": codes})
}

// RegisterTwoFactorRoutes registers 2FA management routes. All of them
// require an authenticated user.
func (h *TwoFactorHandler) RegisterTwoFactorRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := rg.Group("/auth/2fa")
	group.Use(authMW)
	{
		group.GET("", h.Status)
		group.POST("", h.Setup)
		group.POST("/verify", h.VerifyEnable)
		group.POST("/backup-codes", h.RegenerateBackupCodes)
		group.DELETE("", h.Disable)
	}
}
