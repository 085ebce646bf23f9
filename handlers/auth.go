package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-grade-api/config"
	"student-grade-api/services"
)

type AuthHandler struct {
	admin       config.DashboardConfig
	authService *services.AuthService
}

func NewAuthHandler(admin config.DashboardConfig, authService *services.AuthService) *AuthHandler {
	return &AuthHandler{admin: admin, authService: authService}
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the admin password for an admin token, which /ws/jobs
// requires.
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.admin.AdminProtected() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin login is not configured"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.authService.CheckAdminPassword(h.admin, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken("admin", services.AdminRole)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}
