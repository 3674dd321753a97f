package controllers

import (
	"net/http"

	"dorm-backend/middleware"
	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ImportController struct {
	Catalog *services.CatalogService
}

func NewImportController(catalog *services.CatalogService) *ImportController {
	return &ImportController{Catalog: catalog}
}

// GET /api/imports/:id
func (ic *ImportController) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "invalid import id", nil)
		return
	}
	report, err := ic.Catalog.GetImportReport(middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
