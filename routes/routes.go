package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roombook-backend/controllers"
	"roombook-backend/middleware"
)

// SetupRouter wires the room endpoints onto a new gin engine.
func SetupRouter(rc *controllers.RoomController, origins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))

	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.ListRooms)
			rooms.GET("/:id", rc.GetRoom)
			rooms.POST("/:id/book", rc.BookRoom)
			rooms.POST("/:id/extend", rc.ExtendBooking)
			rooms.POST("/:id/release", rc.ReleaseBooking)
		}
	}

	return r
}
