package controllers

import (
	"net/http"
	"strings"
	"time"

	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthController struct {
	Catalog   *services.CatalogService
	JWTSecret string
	TokenTTL  time.Duration
}

func NewAuthController(catalog *services.CatalogService, secret string, ttl time.Duration) *AuthController {
	return &AuthController{Catalog: catalog, JWTSecret: secret, TokenTTL: ttl}
}

// Login (POST /api/auth/login)
func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "email and password required", nil)
		return
	}

	user, err := ac.Catalog.Authenticate(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.IssueToken(ac.JWTSecret, user.ID, user.Role, ac.TokenTTL)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "failed to generate token", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
