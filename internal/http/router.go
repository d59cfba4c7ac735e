package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	intconfig "tourbook/internal/config"
	"tourbook/internal/domain/models"
	h "tourbook/internal/http/handlers"
	"tourbook/internal/http/middleware"
	"tourbook/internal/mail"
	"tourbook/internal/payment"
	"tourbook/internal/repositories"
	"tourbook/internal/services"
)

func NewRouter(env intconfig.Env, db *mongo.Database) *gin.Engine {
	h.SetVerbose(!env.IsProduction())

	// repositories
	tourRepo := repositories.NewTourRepository(db)
	userRepo := repositories.NewUserRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)

	// external collaborators
	mailer := mail.Mailer{
		Host:     env.SMTPHost,
		Port:     env.SMTPPort,
		Username: env.SMTPUser,
		Password: env.SMTPPassword,
		From:     env.EmailFrom,
	}
	provider := payment.NewStripeProvider(env.StripeSecret, env.StripeWHSecret)

	// services
	authSvc := services.AuthService{
		Users:    userRepo,
		Mail:     mailer,
		Secret:   []byte(env.JWTSecret),
		TokenTTL: env.JWTExpiresIn,
	}
	reviewSvc := services.ReviewService{Reviews: reviewRepo}
	bookingSvc := services.BookingService{
		Bookings: bookingRepo,
		Tours:    tourRepo,
		Users:    userRepo,
		Provider: provider,
	}
	invoiceSvc := services.InvoiceService{
		Bookings: bookingRepo,
		Tours:    tourRepo,
		Users:    userRepo,
	}

	// handlers
	tours := h.NewTours(tourRepo, reviewRepo)
	users := h.NewUsers(userRepo, "public/img/users")
	reviews := h.NewReviews(reviewSvc, reviewRepo)
	bookings := h.NewBookings(bookingRepo, bookingSvc, invoiceSvc)
	auth := h.Auth{
		Service:      authSvc,
		CookieMaxAge: env.JWTCookieDays * 24 * 60 * 60,
		SecureCookie: env.IsProduction(),
	}

	guard := middleware.Guard{
		VerifyToken: authSvc.VerifyToken,
		LoadUser:    userRepo.FindByID,
	}
	protect := guard.Protect()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"status":  "fail",
			"message": c.Request.URL.Path + " not found",
		})
	})

	// the webhook stays outside /api so the rate limiter never drops a
	// provider event
	r.POST("/webhook-checkout", bookings.Webhook)

	api := r.Group("/api", middleware.RateLimit(env.RateLimitMax, env.RateLimitWindow))
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck(db))

		v1 := api.Group("/v1")

		// Tours
		t := v1.Group("/tours")
		t.GET("/top-five-cheap", tours.AliasTopCheap, tours.CRUD.GetAll)
		t.GET("/top-five-rated", tours.AliasTopRated, tours.CRUD.GetAll)
		t.GET("/stats", tours.Stats)
		t.GET("/monthly-plan/:year", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide), tours.MonthlyPlan)
		t.GET("/tours-within/:distance/center/:latlng/unit/:unit", tours.Within)
		t.GET("/distances/:latlng/unit/:unit", tours.Distances)
		t.GET("", tours.CRUD.GetAll)
		t.POST("", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), tours.CRUD.CreateOne)
		t.GET("/:tourId", tours.CRUD.GetOne)
		t.PATCH("/:tourId", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), tours.CRUD.UpdateOne)
		t.DELETE("/:tourId", protect, middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide), tours.CRUD.DeleteOne)

		// Reviews nested under a tour
		tr := t.Group("/:tourId/reviews", protect)
		tr.GET("", reviews.CRUD.GetAll)
		tr.POST("", middleware.RestrictTo(models.RoleUser), reviews.CRUD.CreateOne)

		// Reviews
		rv := v1.Group("/reviews", protect)
		rv.GET("", reviews.CRUD.GetAll)
		rv.POST("", middleware.RestrictTo(models.RoleUser), reviews.CRUD.CreateOne)
		rv.GET("/:id", reviews.CRUD.GetOne)
		rv.PATCH("/:id", middleware.RestrictTo(models.RoleUser, models.RoleAdmin), reviews.CRUD.UpdateOne)
		rv.DELETE("/:id", middleware.RestrictTo(models.RoleUser, models.RoleAdmin), reviews.CRUD.DeleteOne)

		// Users: public auth routes
		u := v1.Group("/users")
		u.POST("/signup", auth.Signup)
		u.POST("/login", auth.Login)
		u.GET("/logout", auth.Logout)
		u.POST("/forgot-password", auth.ForgotPassword)
		u.PATCH("/reset-password/:token", auth.ResetPassword)

		// Users: self service
		me := u.Group("", protect)
		me.GET("/me", users.GetMe)
		me.PATCH("/update-my-password", auth.UpdatePassword)
		me.PATCH("/update-me", users.UpdateMe)
		me.DELETE("/delete-me", users.DeleteMe)

		// Users: admin only
		admin := u.Group("", protect, middleware.RestrictTo(models.RoleAdmin))
		admin.GET("", users.CRUD.GetAll)
		admin.POST("", users.CreateUser)
		admin.GET("/:id", users.CRUD.GetOne)
		admin.PATCH("/:id", users.CRUD.UpdateOne)
		admin.DELETE("/:id", users.CRUD.DeleteOne)

		// Bookings
		b := v1.Group("/bookings", protect)
		b.GET("/checkout-session/:tourId", bookings.CheckoutSession)
		staff := b.Group("", middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide))
		staff.GET("", bookings.CRUD.GetAll)
		staff.POST("", bookings.CRUD.CreateOne)
		staff.GET("/:id", bookings.CRUD.GetOne)
		staff.GET("/:id/invoice", bookings.Invoice)
		staff.PATCH("/:id", bookings.CRUD.UpdateOne)
		staff.DELETE("/:id", bookings.CRUD.DeleteOne)
	}

	return r
}
