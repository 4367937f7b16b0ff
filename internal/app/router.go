package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/handler"
	"dispatch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	OrderHandler     *handler.OrderHandler
	TravelHandler    *handler.TravelHandler
	DriverHandler    *handler.DriverHandler
	PassengerHandler *handler.PassengerHandler
	LocationHandler  *handler.LocationHandler
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

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Order routes.
		orders := v1.Group("/orders")
		{
			orders.POST("", deps.OrderHandler.CreateOrder)
			orders.GET("", deps.OrderHandler.ListOrders)
			orders.GET("/:id", deps.OrderHandler.GetOrder)
			orders.PATCH("/:id", deps.OrderHandler.SubmitOrder)
			orders.POST("/:id/cancel", deps.OrderHandler.CancelOrder)
		}

		// Travel request routes.
		travels := v1.Group("/travels")
		{
			travels.POST("", deps.TravelHandler.CreateTravel)
			travels.GET("", deps.TravelHandler.ListTravels)
			travels.GET("/:id", deps.TravelHandler.GetTravel)
			travels.PATCH("/:id", deps.TravelHandler.UpdateTravel)
		}

		// Delivery request routes.
		deliveries := v1.Group("/deliveries")
		{
			deliveries.POST("", deps.TravelHandler.CreateDelivery)
			deliveries.GET("", deps.TravelHandler.ListDeliveries)
			deliveries.GET("/:id", deps.TravelHandler.GetDelivery)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.RegisterDriver)
			drivers.GET("", deps.DriverHandler.GetAllDrivers)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.POST("/:id/online", deps.DriverHandler.SetDriverOnline)
			drivers.POST("/:id/offline", deps.DriverHandler.SetDriverOffline)
			drivers.POST("/:id/separation-amount", deps.DriverHandler.SeparationAmount)
			drivers.GET("/:id/stats", deps.DriverHandler.GetDriverStats)
			drivers.GET("/:id/transactions", deps.DriverHandler.ListDriverTransactions)
		}

		// Passenger routes.
		passengers := v1.Group("/passengers")
		{
			passengers.POST("", deps.PassengerHandler.RegisterPassenger)
			passengers.GET("/:telegram_id", deps.PassengerHandler.GetPassenger)
		}

		// Location routes.
		locations := v1.Group("/locations")
		{
			locations.POST("/validate", deps.LocationHandler.ValidateLocation)
			locations.POST("/nearest-city", deps.LocationHandler.NearestCity)
		}

		// City fares.
		v1.GET("/cities/:title/fares", deps.TravelHandler.CityFares)
	}

	return router
}
