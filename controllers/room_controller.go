package controllers

import (
	"net/http"

	"dorm-backend/middleware"
	"dorm-backend/services"

	"github.com/gin-gonic/gin"
)

type assignPayload struct {
	UserID uint `json:"userId" binding:"required"`
}

type RoomController struct {
	Catalog   *services.CatalogService
	Occupancy *services.OccupancyService
}

func NewRoomController(catalog *services.CatalogService, occupancy *services.OccupancyService) *RoomController {
	return &RoomController{Catalog: catalog, Occupancy: occupancy}
}

// ----------------------------------------------------
// GET /api/rooms
// ----------------------------------------------------

func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := rc.Catalog.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// ----------------------------------------------------
// GET /api/rooms/:id
// ----------------------------------------------------

func (rc *RoomController) GetRoom(c *gin.Context) {
	room, err := rc.Catalog.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ----------------------------------------------------
// POST /api/rooms
// ----------------------------------------------------

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var in services.NewRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	room, err := rc.Catalog.CreateRoom(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// ----------------------------------------------------
// PUT /api/rooms/:id  (attributes + full roster)
// ----------------------------------------------------

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	var in services.RosterUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	in.RoomID = c.Param("id")

	room, err := rc.Occupancy.ReplaceRoomRoster(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ----------------------------------------------------
// DELETE /api/rooms/:id
// ----------------------------------------------------

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	if err := rc.Occupancy.DeleteRoom(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ----------------------------------------------------
// POST /api/rooms/:id/occupants
// ----------------------------------------------------

func (rc *RoomController) AssignOccupant(c *gin.Context) {
	var payload assignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	in := services.AssignRequest{UserID: payload.UserID, RoomID: c.Param("id")}
	if err := rc.Occupancy.AssignUserToRoom(c.Request.Context(), middleware.PrincipalFrom(c), in); err != nil {
		respondError(c, err)
		return
	}
	room, err := rc.Catalog.GetRoom(c.Request.Context(), in.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ----------------------------------------------------
// POST /api/rooms/bulk
// ----------------------------------------------------

func (rc *RoomController) BulkCreateRooms(c *gin.Context) {
	var rows []services.NewRoomInput
	if err := c.ShouldBindJSON(&rows); err != nil {
		badPayload(c, err)
		return
	}
	report, err := rc.Catalog.BulkCreateRooms(c.Request.Context(), middleware.PrincipalFrom(c), rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
