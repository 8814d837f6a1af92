package handler

import (
	"errors"
	"log"
	"net/http"

	"job_board/internal/service"

	"github.com/gin-gonic/gin"
)

// OtpHandler handles phone one-time-code login requests
type OtpHandler struct {
	service service.OtpService
}

// NewOtpHandler creates a new OtpHandler
func NewOtpHandler(s service.OtpService) *OtpHandler {
	return &OtpHandler{service: s}
}

func (h *OtpHandler) RequestOtp(c *gin.Context) {
	var req struct {
		Phone   string `json:"phone" binding:"required,e164"`
		Purpose string `json:"purpose" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.Request(c.Request.Context(), req.Phone, req.Purpose); err != nil {
		switch {
		case errors.Is(err, service.ErrOTPRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrOTPPurposeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("ERROR: otp request failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

func (h *OtpHandler) VerifyOtp(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required,e164"`
		Code  string `json:"code" binding:"required,len=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, pair, err := h.service.Verify(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			log.Printf("ERROR: otp verify failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"user_id":       user.ID,
		"phone":         user.Phone,
		"role":          user.Role,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// RegisterOtpRoutes registers OTP login routes
func (h *OtpHandler) RegisterOtpRoutes(rg *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	authGroup.Use(middlewares...)
	{
		authGroup.POST("/request-otp", h.RequestOtp)
		authGroup.POST("/verify-otp", h.VerifyOtp)
	}
}
