package routes

import (
	"github.com/01moynul/inkframe-golang/internal/handlers"
	"github.com/01moynul/inkframe-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Per-IP limits for the unauthenticated write endpoints.
const (
	authPerMinute  = 10
	authBurst      = 5
	formsPerMinute = 5
	formsBurst     = 3
)

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	handlers.SetupValidation()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())

	// --- APPLY THE CORS GUARD ---
	// must run before anything that can abort the request
	router.Use(middleware.CORS(h.FrontendURL))

	if h.Uploads != nil {
		router.Static("/uploads", h.Uploads.Dir())
	}

	authLimit := middleware.NewIPRateLimiter(authPerMinute, authBurst).Middleware()
	formsLimit := middleware.NewIPRateLimiter(formsPerMinute, formsBurst).Middleware()

	api := router.Group("/api")
	api.Use(middleware.Session(h.Sessions, h.Cookies))
	{
		api.GET("/health", h.HealthCheck)

		// --- Public Catalog ---
		api.GET("/products", h.ListProducts)
		api.GET("/products/:slug", h.GetProduct)
		api.GET("/services", h.ListServices)
		api.GET("/portfolio", h.ListPortfolio)
		api.GET("/testimonials", h.ListTestimonials)
		api.GET("/promotions", h.ListPromotions)
		api.GET("/team", h.ListTeam)
		api.GET("/payment-methods", h.ListPaymentMethods)

		// --- Cart (user or anonymous session) ---
		api.GET("/cart", h.GetCart)
		api.POST("/cart/items", h.AddToCart)
		api.PATCH("/cart/items/:id", h.UpdateCartItem)
		api.DELETE("/cart/items/:id", h.RemoveCartItem)
		api.DELETE("/cart", h.ClearCart)

		api.POST("/checkout", middleware.RequireUser(), h.PlaceOrder)

		// --- Public Forms ---
		api.POST("/bookings", formsLimit, h.CreateBooking)
		api.POST("/quotes", formsLimit, h.CreateQuote)
		api.POST("/contact", formsLimit, h.Contact)

		// --- Auth Routes ---
		api.POST("/auth/register", authLimit, h.Register)
		api.POST("/auth/login", authLimit, h.Login)
		api.POST("/auth/logout", h.Logout)
		api.GET("/auth/me", h.Me)
		api.GET("/auth/oidc/login", h.OIDCLogin)
		api.GET("/auth/oidc/callback", h.OIDCCallback)

		api.POST("/payments/webhook", h.PaymentWebhook)

		// --- Client Routes (Login Required) ---
		client := api.Group("/client")
		client.Use(middleware.RequireUser())
		{
			client.GET("/profile", h.GetProfile)
			client.PUT("/profile", h.UpdateProfile)
			client.PUT("/password", h.ChangePassword)

			client.GET("/orders", h.GetMyOrders)
			client.GET("/orders/:id", h.GetMyOrder)
			client.GET("/invoices", h.GetMyInvoices)
			client.GET("/invoices/:id", h.GetMyInvoice)
			client.GET("/bookings", h.GetMyBookings)

			client.GET("/addresses", h.ListAddresses)
			client.POST("/addresses", h.CreateAddress)
			client.PUT("/addresses/:id", h.UpdateAddress)
			client.DELETE("/addresses/:id", h.DeleteAddress)
			client.PATCH("/addresses/:id/default", h.SetDefaultAddress)

			client.GET("/notifications", h.GetMyNotifications)
			client.GET("/notifications/unread-count", h.UnreadNotificationCount)
			client.PATCH("/notifications/read-all", h.MarkAllNotificationsRead)
			client.PATCH("/notifications/:id/read", h.MarkNotificationRead)
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/admin")
		admin.Use(middleware.RequireUser())
		admin.Use(middleware.RequireAdmin(h.Store))
		{
			handlers.RegisterCRUD(admin.Group("/products"), h.Store.Products())
			handlers.RegisterCRUD(admin.Group("/services"), h.Store.Services())
			handlers.RegisterCRUD(admin.Group("/promotions"), h.Store.Promotions())
			handlers.RegisterCRUD(admin.Group("/portfolio"), h.Store.Portfolio())
			handlers.RegisterCRUD(admin.Group("/testimonials"), h.Store.Testimonials())
			handlers.RegisterCRUD(admin.Group("/team"), h.Store.Team())
			handlers.RegisterCRUD(admin.Group("/payment-settings"), h.Store.PaymentSettings())

			bookings := admin.Group("/bookings")
			handlers.RegisterStatusCRUD(bookings, h.Store.Bookings())
			bookings.PATCH("/:id/status", h.AdminSetBookingStatus)

			quotes := admin.Group("/quotes")
			handlers.RegisterStatusCRUD(quotes, h.Store.Quotes())
			quotes.PATCH("/:id/status", h.AdminSetQuoteStatus)

			admin.GET("/orders", h.AdminListOrders)
			admin.GET("/orders/:id", h.AdminGetOrder)
			admin.PUT("/orders/:id", h.AdminUpdateOrder)
			admin.DELETE("/orders/:id", h.AdminDeleteOrder)
			admin.PATCH("/orders/:id/status", h.AdminSetOrderStatus)

			admin.GET("/invoices", h.AdminListInvoices)
			admin.POST("/uploads", h.UploadImage)
			admin.GET("/dashboard", h.GetDashboardStats)
		}
	}

	return router
}
