package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"job_board/internal/middleware"
	"job_board/internal/model"
	"job_board/internal/service"
	"job_board/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuperAdminHandler handles the super-admin console API
type SuperAdminHandler struct {
	service service.SuperAdminService
	codec   *utils.TokenCodec
}

// NewSuperAdminHandler creates a new SuperAdminHandler
func NewSuperAdminHandler(s service.SuperAdminService, codec *utils.TokenCodec) *SuperAdminHandler {
	return &SuperAdminHandler{service: s, codec: codec}
}

func (h *SuperAdminHandler) Authenticate(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	admin, token, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			log.Printf("ERROR: super admin login failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"admin_id":    admin.ID,
		"role":        admin.Role,
		"permissions": admin.Permissions,
		"token":       token,
	})
}

func (h *SuperAdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.service.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		log.Printf("ERROR: list users failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *SuperAdminHandler) SuspendUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req struct {
		Suspended *bool `json:"suspended" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.SetUserSuspended(c.Request.Context(), userID, *req.Suspended); err != nil {
		log.Printf("ERROR: suspend user failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user_id": userID, "suspended": *req.Suspended})
}

func (h *SuperAdminHandler) ApproveJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
		return
	}

	if err := h.service.ApproveJob(c.Request.Context(), jobID); err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("ERROR: approve job failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job approved", "job_id": jobID})
}

// RegisterSuperAdminRoutes registers the console routes. Everything past
// /auth requires a super-admin token plus the matching capability.
func (h *SuperAdminHandler) RegisterSuperAdminRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/superadmin")
	group.POST("/auth", h.Authenticate)

	protected := group.Group("")
	protected.Use(middleware.SuperAdminAuth(h.codec))
	{
		protected.GET("/users", middleware.PermissionMiddleware(model.CapManageUsers), h.ListUsers)
		protected.PUT("/users/:id/suspend", middleware.PermissionMiddleware(model.CapManageUsers), h.SuspendUser)
		protected.PUT("/jobs/:id/approve", middleware.PermissionMiddleware(model.CapApproveJobs), h.ApproveJob)
	}
}
