package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/handler"
	"github.com/sensoryplay/portal-backend/internal/middleware"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Location   *handler.LocationHandler
	Class      *handler.ClassHandler
	Booking    *handler.BookingHandler
	Contact    *handler.ContactHandler
	Newsletter *handler.NewsletterHandler
	Dashboard  *handler.DashboardHandler
	AdminUser  *handler.AdminUserHandler
	Setting    *handler.SettingHandler
	Media      *handler.MediaHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The returned stop func ends the rate limiters' cleanup goroutines.
func SetupRouter(
	auth middleware.Authenticator,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) (*gin.Engine, func()) {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Uploaded images get unique names, so they can be cached for a year.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	authLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	formLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	stop := func() {
		authLimiter.Stop()
		formLimiter.Stop()
	}

	requireSession := []gin.HandlerFunc{
		middleware.RequireJWT(auth),
		middleware.CheckActiveSession(auth, log),
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authAPI := router.Group("/api/v1/auth")
	authAPI.Use(authLimiter.Middleware(), middleware.NoStore())
	{
		authAPI.POST("/signup", handlers.Auth.SignUp)
		authAPI.POST("/signin", handlers.Auth.SignIn)
		authAPI.POST("/password/forgot", handlers.Auth.ForgotPassword)
		authAPI.POST("/password/reset", handlers.Auth.ResetPassword)

		signedIn := authAPI.Group("", requireSession...)
		signedIn.POST("/signout", handlers.Auth.SignOut)
		signedIn.GET("/session", handlers.Auth.GetSession)
		signedIn.POST("/password/change", handlers.Auth.ChangePassword)
	}

	// ─── 2. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		catalog := publicAPI.Group("", middleware.CacheControl(60))
		catalog.GET("/locations", handlers.Location.ListLocations)
		catalog.GET("/locations/:id", handlers.Location.GetLocation)
		catalog.GET("/classes", handlers.Class.ListClasses)
		catalog.GET("/classes/:id", handlers.Class.GetClass)
		catalog.GET("/settings", handlers.Setting.GetPublicSettings)

		forms := publicAPI.Group("", formLimiter.Middleware())
		forms.POST("/contact", handlers.Contact.SubmitContact)
		forms.POST("/newsletter/subscribe", handlers.Newsletter.Subscribe)
		forms.POST("/newsletter/unsubscribe", handlers.Newsletter.Unsubscribe)
	}

	// ─── 3. Booking Group (JWT + live session) ─────────────────────────
	bookingAPI := router.Group("/api/v1/bookings")
	bookingAPI.Use(requireSession...)
	bookingAPI.Use(middleware.NoStore())
	{
		bookingAPI.POST("", handlers.Booking.CreateBooking)
		bookingAPI.GET("", handlers.Booking.ListMyBookings)
		bookingAPI.GET("/:id", handlers.Booking.GetBooking)
		bookingAPI.GET("/:id/cancellation", handlers.Booking.QuoteCancellation)
		bookingAPI.POST("/:id/cancel", handlers.Booking.CancelBooking)
		bookingAPI.POST("/:id/resend-confirmation", handlers.Booking.ResendConfirmation)
	}

	// ─── 4. WebSocket Group (Public) ───────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/classes/:id/availability", handlers.WS.ClassAvailabilityStream)
	}

	// ─── 5. Admin Group (JWT + role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireSession...)
	adminAPI.Use(middleware.RequireRole(model.RoleAdmin), middleware.NoStore())
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)

		adminAPI.GET("/users", handlers.AdminUser.ListUsers)
		adminAPI.PATCH("/users/:id/role", handlers.AdminUser.ChangeRole)

		adminAPI.POST("/locations", handlers.Location.CreateLocation)
		adminAPI.PUT("/locations/:id", handlers.Location.UpdateLocation)
		adminAPI.DELETE("/locations/:id", handlers.Location.DeleteLocation)

		adminAPI.POST("/classes", handlers.Class.CreateClass)
		adminAPI.PUT("/classes/:id", handlers.Class.UpdateClass)
		adminAPI.DELETE("/classes/:id", handlers.Class.DeleteClass)

		adminAPI.GET("/bookings", handlers.Booking.ListAllBookings)
		adminAPI.PATCH("/bookings/:id/payment", handlers.Booking.UpdatePaymentStatus)

		adminAPI.GET("/newsletter", handlers.Newsletter.ListSubscribers)

		adminAPI.POST("/media/upload", handlers.Media.UploadMedia)

		settingsGroup := adminAPI.Group("/settings")
		{
			settingsGroup.GET("", handlers.Setting.GetAllSettings)
			settingsGroup.PUT("", handlers.Setting.UpdateSettings)
		}
	}

	return router, stop
}
