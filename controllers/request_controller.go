package controllers

import (
	"net/http"

	"dorm-backend/middleware"
	"dorm-backend/services"

	"github.com/gin-gonic/gin"
)

type RequestController struct {
	Catalog   *services.CatalogService
	Occupancy *services.OccupancyService
}

func NewRequestController(catalog *services.CatalogService, occupancy *services.OccupancyService) *RequestController {
	return &RequestController{Catalog: catalog, Occupancy: occupancy}
}

// GET /api/requests?status=PENDING
func (rc *RequestController) GetRequests(c *gin.Context) {
	reqs, err := rc.Catalog.ListRequests(c.Request.Context(), middleware.PrincipalFrom(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// POST /api/requests
// userId defaults to the caller.
func (rc *RequestController) CreateRequest(c *gin.Context) {
	var in services.ChangeRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	actor := middleware.PrincipalFrom(c)
	if in.UserID == 0 {
		in.UserID = actor.UserID
	}
	req, err := rc.Occupancy.CreateChangeRequest(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// POST /api/requests/:id/approve
func (rc *RequestController) ApproveRequest(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Occupancy.ApproveChangeRequest(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "APPROVED"})
}

// POST /api/requests/:id/reject
func (rc *RequestController) RejectRequest(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Occupancy.RejectChangeRequest(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "REJECTED"})
}

// DELETE /api/requests/:id
func (rc *RequestController) DeleteRequest(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Occupancy.DeleteChangeRequest(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
