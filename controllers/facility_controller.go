package controllers

import (
	"net/http"

	"dorm-backend/middleware"
	"dorm-backend/services"

	"github.com/gin-gonic/gin"
)

type FacilityController struct {
	Catalog *services.CatalogService
}

func NewFacilityController(catalog *services.CatalogService) *FacilityController {
	return &FacilityController{Catalog: catalog}
}

func (fc *FacilityController) GetFacilities(c *gin.Context) {
	out, err := fc.Catalog.ListFacilities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (fc *FacilityController) CreateFacility(c *gin.Context) {
	var in services.NewFacilityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	f, err := fc.Catalog.CreateFacility(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}
