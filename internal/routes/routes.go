// Package routes defines the API routing configuration.
// It wires repositories, services and handlers, and groups routes by
// functionality with the appropriate middleware.
package routes

import (
	"log"
	"time"

	"nimwema/internal/config"
	"nimwema/internal/handlers"
	"nimwema/internal/middleware"
	"nimwema/internal/repositories"
	"nimwema/internal/services/auth"
	"nimwema/internal/services/notification"
	"nimwema/internal/services/order"
	"nimwema/internal/services/payment"
	"nimwema/internal/services/redemption"
	"nimwema/internal/services/voucher"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services groups the service layer so cmd/server can reuse it for
// scheduled jobs.
type Services struct {
	Orders     order.Service
	Payments   payment.Service
	Redemption redemption.Service
	Issuer     voucher.Issuer
}

// SetupRoutes configures all application routes and returns the wired
// service layer.
func SetupRoutes(app *fiber.App, db *gorm.DB) *Services {
	// Repositories
	orderRepo := repositories.NewOrderRepository(db)
	voucherRepo := repositories.NewVoucherRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)

	// Notification dispatcher
	smsClient := notification.NewHTTPSMSClient(notification.SMSClientConfig{
		URL:    config.GetEnv("SMS_URL", "https://sms.provider.local/v1/send"),
		Token:  config.GetEnv("SMS_TOKEN", ""),
		Sender: config.GetEnv("SMS_SENDER", "Nimwema"),
	})
	notifier := notification.NewService(smsClient, notification.Config{
		Sender:        config.GetEnv("SMS_SENDER", "Nimwema"),
		CountryPrefix: config.GetEnv("COUNTRY_PREFIX", "243"),
	})

	// Core services
	orderService := order.NewService(orderRepo, repositories.CacheService, order.Config{
		FeeRate:         config.GetFloatEnv("FEE_RATE", order.DefaultFeeRate),
		MaxQuantity:     config.GetIntEnv("MAX_QUANTITY", order.DefaultMaxQuantity),
		DefaultCurrency: config.GetEnv("DEFAULT_CURRENCY", "USD"),
	})

	generator := voucher.NewGenerator(config.GetIntEnv("VOUCHER_CODE_LENGTH", voucher.DefaultCodeLength))
	issuer := voucher.NewIssuer(voucherRepo, requestRepo, orderService, generator, notifier, voucher.IssuerConfig{
		BatchSize:  config.GetIntEnv("BATCH_SIZE", voucher.DefaultBatchSize),
		BatchPause: config.GetDurationEnv("BATCH_PAUSE", voucher.DefaultBatchPause),
		TTL:        time.Duration(config.GetIntEnv("VOUCHER_TTL_DAYS", voucher.DefaultTTLDays)) * 24 * time.Hour,
	})

	flexpay := payment.NewFlexPayGateway(payment.FlexPayConfig{
		URL:         config.GetEnv("FLEXPAY_URL", "https://backend.flexpay.cd/api/rest/v1"),
		Token:       config.GetEnv("FLEXPAY_TOKEN", ""),
		Merchant:    config.GetEnv("FLEXPAY_MERCHANT", ""),
		CallbackURL: config.GetEnv("FLEXPAY_CALLBACK_URL", ""),
	})
	var card payment.Gateway
	if key := config.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		card = payment.NewStripeGateway(key)
	}
	paymentService := payment.NewService(orderService, issuer, notifier, flexpay, card)

	redemptionService := redemption.NewService(voucherRepo, repositories.CacheService)

	jwtSecret := config.GetEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		if config.IsProduction() {
			log.Fatal("JWT_SECRET is required in production")
		}
		jwtSecret = "dev-secret"
	}
	authService := auth.NewService(merchantRepo, jwtSecret,
		config.GetDurationEnv("TOKEN_TTL", 0))

	// Handlers
	orderHandler := handlers.NewOrderHandler(orderService, paymentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	redemptionHandler := handlers.NewRedemptionHandler(redemptionService, notifier)
	requestHandler := handlers.NewRequestHandler(requestRepo, notifier,
		config.GetDurationEnv("REQUEST_EXPIRY", 0))
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(orderService, paymentService, redemptionService, voucherRepo)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Nimwema API",
			"version": "1.0.0",
		})
	})
	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/login", authHandler.Login)
	api.Post("/orders", orderHandler.CreateOrder)
	api.Get("/orders", orderHandler.ListOrders)
	api.Get("/orders/:id", orderHandler.GetOrder)
	api.Post("/orders/:id/pay", orderHandler.InitiatePayment)
	api.Post("/requests", requestHandler.CreateRequest)
	api.Get("/requests", requestHandler.ListRequests)

	// Provider webhook and poll fallback
	api.Post("/payment/callback", paymentHandler.Callback)
	api.Get("/payment/:reference/status", paymentHandler.CheckStatus)

	// Merchant endpoints
	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)
	protected.Post("/vouchers/redeem", redemptionHandler.Redeem)
	protected.Get("/vouchers/:code/validate", redemptionHandler.Validate)

	// Admin endpoints
	admin := protected.Group("/admin", middleware.AdminOnly)
	admin.Post("/merchants", authHandler.RegisterMerchant)
	admin.Post("/orders/:id/approve", adminHandler.ApproveOrder)
	admin.Post("/orders/:id/reject", adminHandler.RejectOrder)
	admin.Get("/orders/:id/vouchers", adminHandler.ListOrderVouchers)
	admin.Get("/stats", adminHandler.Stats)
	admin.Post("/vouchers/expire", adminHandler.ExpireVouchers)

	return &Services{
		Orders:     orderService,
		Payments:   paymentService,
		Redemption: redemptionService,
		Issuer:     issuer,
	}
}
