package controllers

import (
	"net/http"

	"dorm-backend/middleware"
	"dorm-backend/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Catalog   *services.CatalogService
	Occupancy *services.OccupancyService
}

func NewUserController(catalog *services.CatalogService, occupancy *services.OccupancyService) *UserController {
	return &UserController{Catalog: catalog, Occupancy: occupancy}
}

// GET /api/users?status=STAYING
func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.Catalog.ListUsers(c.Request.Context(), middleware.PrincipalFrom(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// POST /api/users
func (uc *UserController) CreateUser(c *gin.Context) {
	var in services.NewUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	user, err := uc.Catalog.CreateUser(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// POST /api/users/bulk
func (uc *UserController) BulkCreateUsers(c *gin.Context) {
	var rows []services.NewUserInput
	if err := c.ShouldBindJSON(&rows); err != nil {
		badPayload(c, err)
		return
	}
	report, err := uc.Catalog.BulkCreateUsers(c.Request.Context(), middleware.PrincipalFrom(c), rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// POST /api/users/:id/ban
func (uc *UserController) BanUser(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := uc.Occupancy.BanUser(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "banned", "userId": id})
}

// GET /api/users/:id/contracts
func (uc *UserController) GetContracts(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	contracts, err := uc.Catalog.ListContracts(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}
