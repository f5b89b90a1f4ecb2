package routes

import (
	"helpr/handlers"
	"helpr/middleware"
	"helpr/utils"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers customer account endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("", hb.Users.CreateUser)

		// Protected routes (Require Authentication)
		api.Use(middleware.UserAuth())
		api.GET("/me", hb.Users.GetMe)
		api.PATCH("/me", hb.Users.UpdateMe)
		api.DELETE("/me", hb.Users.DeleteMe)
		api.PUT("/fcm-token", hb.Devices.RegisterUserDevice)
	}
}

// RegisterProviderRoutes registers provider account endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.POST("", hb.Providers.CreateProvider)

		// Public profile: customers browse these when weighing offers, so
		// no auth is required and only scrubbed fields come back.
		api.GET("/:id", hb.Providers.GetProviderProfile)

		protected := api.Group("")
		protected.Use(middleware.ProviderAuth())
		protected.GET("/me", hb.Providers.GetMe)
		protected.PATCH("/me", hb.Providers.UpdateMe)
		protected.DELETE("/me", hb.Providers.DeleteMe)
		protected.GET("/me/history", hb.Providers.JobHistory)
		protected.PUT("/fcm-token", hb.Devices.RegisterProviderDevice)
	}
}

// RegisterServiceRoutes registers the service request lifecycle. Customers
// own the requests; providers act on the jobs assigned to them.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	customer := r.Group("/api/services")
	{
		customer.Use(middleware.UserAuth())
		customer.POST("", hb.Requests.CreateServiceRequest)
		customer.GET("/mine", hb.Requests.ListMyServiceRequests)
		customer.GET("/:id", hb.Requests.GetServiceRequest)
		customer.PATCH("/:id", hb.Requests.UpdateServiceRequest)
		customer.DELETE("/:id", hb.Requests.DeleteServiceRequest)
		customer.GET("/:id/bids", hb.Bids.ListServiceBids)
		customer.POST("/:id/accept", hb.Bids.AcceptBid)
	}

	provider := r.Group("/api/services")
	{
		provider.Use(middleware.ProviderAuth())
		provider.GET("/assigned", hb.Requests.ListAssignedServices)
		provider.POST("/:id/bids", hb.Bids.PlaceBid)
		provider.DELETE("/:id/bids", hb.Bids.WithdrawBid)
		provider.POST("/:id/advance", hb.Requests.AdvanceServiceStatus)
		provider.POST("/:id/cancel-assignment", hb.Requests.CancelServiceAssignment)
	}
}

// RegisterFeedRoutes registers the provider-facing job feed and offer listing.
func RegisterFeedRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	feed := r.Group("/api/feed")
	{
		feed.Use(middleware.ProviderAuth())
		feed.GET("/open", hb.Feed.OpenJobs)
	}

	bids := r.Group("/api/bids")
	{
		bids.Use(middleware.ProviderAuth())
		bids.GET("/mine", hb.Bids.ListMyBids)
	}
}

// RegisterAIRoutes registers AI endpoints.
func RegisterAIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/ai")
	{
		// Protected routes (Require Authentication)
		api.Use(middleware.UserAuth())
		api.POST("/estimate", hb.Intelligence.EstimatePrice)
		api.POST("/stt", handlers.TranscribeVoiceNote)
	}
}

// RegisterMapsRoutes registers the Google Maps proxies. Customers geocode
// addresses while filling in a request; providers fetch directions to a job.
func RegisterMapsRoutes(r *gin.Engine) {
	api := r.Group("/api/maps")
	{
		api.Use(middleware.UserAuth())
		api.GET("/geocode", handlers.GeocodeAddress)
		api.GET("/reverse-geocode", handlers.ReverseGeocode)
	}

	nav := r.Group("/api/maps")
	{
		nav.Use(middleware.ProviderAuth())
		nav.GET("/directions", handlers.GetDirections)
	}
}

// RegisterLegalRoute registers the public legal-documentation endpoint.
func RegisterLegalRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/legal", hb.Legal.LegalDocumentation)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "Hi, I'm Helpr",
			"services": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterUserRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterServiceRoutes(r, hb)
	RegisterFeedRoutes(r, hb)
	RegisterAIRoutes(r, hb)
	RegisterMapsRoutes(r)
	RegisterLegalRoute(r, hb)
	RegisterHealthRoute(r)
}
