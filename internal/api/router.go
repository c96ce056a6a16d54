package api

import (
	"github.com/gin-gonic/gin"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/api/handler"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/api/middleware"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/service"
)

// SetupRouter wires the HTTP surface. Reads are public; mutating routes sit
// behind the JWT middleware.
func SetupRouter(as *service.AuthService, ps *service.ParkingService,
	authMw *middleware.AuthMiddleware, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/oauth/:provider", authHandler.OAuthRedirect)
		authRoutes.GET("/oauth/:provider/callback", authHandler.OAuthCallback)
	}

	parkingHandler := handler.NewParkingHandler(ps)
	vehicleHandler := handler.NewVehicleHandler(ps)

	r.GET("/", parkingHandler.Overview)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/vehicles", vehicleHandler.ListVehicles)
		v1.POST("/vehicles", authMw.Authenticate(), vehicleHandler.RegisterVehicle)

		v1.GET("/parking-slots/available", parkingHandler.ListAvailableSlots)

		v1.GET("/parking-records/parked", parkingHandler.CurrentlyParked)
		v1.POST("/parking-records", authMw.Authenticate(), parkingHandler.ParkVehicle)
		v1.POST("/parking-records/:id/exit", authMw.Authenticate(), parkingHandler.ExitVehicle)

		v1.GET("/revenue", parkingHandler.Revenue)
	}
	return r
}
