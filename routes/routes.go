package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dorm-backend/controllers"
	"dorm-backend/middleware"
	"dorm-backend/models"
)

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type Controllers struct {
	Auth       *controllers.AuthController
	Rooms      *controllers.RoomController
	Users      *controllers.UserController
	Facilities *controllers.FacilityController
	Requests   *controllers.RequestController
	Imports    *controllers.ImportController
}

// SetupRouter wires every controller under /api.
func SetupRouter(ctl Controllers, jwtSecret, corsOrigins string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins(corsOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", ctl.Auth.Login)
		}

		secured := api.Group("")
		secured.Use(middleware.Auth(jwtSecret))
		admin := middleware.RequireRole(models.RoleAdmin)

		rooms := secured.Group("/rooms")
		{
			rooms.GET("", ctl.Rooms.GetRooms)
			// before /:id
			rooms.POST("/bulk", admin, ctl.Rooms.BulkCreateRooms)
			rooms.GET("/:id", ctl.Rooms.GetRoom)
			rooms.POST("", admin, ctl.Rooms.CreateRoom)
			rooms.PUT("/:id", admin, ctl.Rooms.UpdateRoom)
			rooms.DELETE("/:id", admin, ctl.Rooms.DeleteRoom)
			rooms.POST("/:id/occupants", admin, ctl.Rooms.AssignOccupant)
		}

		users := secured.Group("/users")
		{
			users.GET("", admin, ctl.Users.GetUsers)
			users.POST("", admin, ctl.Users.CreateUser)
			users.POST("/bulk", admin, ctl.Users.BulkCreateUsers)
			users.POST("/:id/ban", admin, ctl.Users.BanUser)
			// admin or the user themself, checked in the service
			users.GET("/:id/contracts", ctl.Users.GetContracts)
		}

		facilities := secured.Group("/facilities")
		{
			facilities.GET("", ctl.Facilities.GetFacilities)
			facilities.POST("", admin, ctl.Facilities.CreateFacility)
		}

		requests := secured.Group("/requests")
		{
			requests.GET("", ctl.Requests.GetRequests)
			requests.POST("", ctl.Requests.CreateRequest)
			requests.POST("/:id/approve", admin, ctl.Requests.ApproveRequest)
			requests.POST("/:id/reject", admin, ctl.Requests.RejectRequest)
			requests.DELETE("/:id", ctl.Requests.DeleteRequest)
		}

		imports := secured.Group("/imports")
		{
			imports.GET("/:id", admin, ctl.Imports.GetReport)
		}
	}

	return r
}
