package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/handler"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler      *handler.RideHandler
	DriverHandler    *handler.DriverHandler
	PassengerHandler *handler.PassengerHandler
	WSHandler        *handler.WSHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Live event stream.
	router.GET("/ws", deps.WSHandler.Subscribe)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Passenger routes.
		passengers := v1.Group("/passengers")
		{
			passengers.POST("", deps.PassengerHandler.Register)
			passengers.GET("/:id", deps.PassengerHandler.GetPassenger)
			passengers.PUT("/:id/location", deps.PassengerHandler.UpdateLocation)
			passengers.GET("/:id/notifications", deps.PassengerHandler.ListNotifications)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.RequestRide)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/sos", deps.RideHandler.FlagSOS)
			rides.GET("/:id/payment", deps.RideHandler.GetRidePayment)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.POST("/:id/online", deps.DriverHandler.GoOnline)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
			drivers.PUT("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.PUT("/:id/scanning-range", deps.DriverHandler.SetScanningRange)
			drivers.GET("/:id/available-rides", deps.DriverHandler.ListAvailableRides)
			drivers.POST("/:id/rides/:ride_id/accept", deps.DriverHandler.AcceptRide)
			drivers.POST("/:id/rides/:ride_id/decline", deps.DriverHandler.DeclineRide)
			drivers.POST("/:id/rides/:ride_id/arrive", deps.DriverHandler.ArriveRide)
			drivers.POST("/:id/rides/:ride_id/start", deps.DriverHandler.StartRide)
			drivers.POST("/:id/rides/:ride_id/complete", deps.DriverHandler.CompleteRide)
			drivers.POST("/:id/blocked-passengers", deps.DriverHandler.BlockPassenger)
		}
	}

	return router
}
