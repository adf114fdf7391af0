package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	evbus "github.com/asaskevich/EventBus"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/api/handlers"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/cache"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/cart"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/config"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/health"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/pricing"
	repository "github.com/aaravmahajanofficial/pharmacy-checkout/internal/repositories"
	service "github.com/aaravmahajanofficial/pharmacy-checkout/internal/services"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/tracing"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/verification"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	calculator, err := pricing.FromConfig(cfg.Pricing)
	if err != nil {
		slog.Error("❌ Invalid pricing configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	defer redisClient.Close()

	// Cart events
	bus := evbus.New()
	if err := metrics.SubscribeCartEvents(bus); err != nil {
		slog.Error("❌ Error subscribing cart metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, topic := range cart.Topics {
		if err := bus.Subscribe(topic, logCartEvent); err != nil {
			slog.Error("❌ Error subscribing cart event log", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	cartCache := cache.NewRedisCartCache(redisClient, &cfg.Cache)
	uploadLimiter := repository.NewUploadRateLimiter(redisClient, &cfg.Upload)
	reviewQueue := verification.NewReviewQueue(repos.Review)

	cartService := service.NewCartService(cartCache, calculator, reviewQueue, uploadLimiter, bus)
	cartHandler := handlers.NewCartHandler(cartService, cfg.Upload)
	reviewService := service.NewReviewService(repos.Review, cartService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{DB: repos.DB, RedisClient: redisClient})
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.Handle("GET /api/v1/cart", middleware.Session(cartHandler.GetCart()))
	routerMux.Handle("POST /api/v1/cart/items", middleware.Session(cartHandler.AddItem()))
	routerMux.Handle("PATCH /api/v1/cart/items/{id}", middleware.Session(cartHandler.UpdateQuantity()))
	routerMux.Handle("DELETE /api/v1/cart/items/{id}", middleware.Session(cartHandler.RemoveItem()))
	routerMux.Handle("POST /api/v1/cart/items/{id}/prescription", middleware.Session(cartHandler.UploadPrescription()))
	routerMux.Handle("POST /api/v1/checkout", middleware.Session(cartHandler.Checkout()))
	routerMux.Handle("GET /api/v1/reviews", authMiddleware.RequireRole(models.RolePharmacist, reviewHandler.ListPending()))
	routerMux.Handle("POST /api/v1/reviews/{id}/decision", authMiddleware.RequireRole(models.RolePharmacist, reviewHandler.Decide()))
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining, metrics sits next to the mux to see the route pattern
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = otelhttp.NewHandler(handler, cfg.Otel.ServiceName)
	handler = middleware.Logging(handler)

	// Setup http server
	server := http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.HTTPServer.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracer provider shutdown failed", slog.String("error", err.Error()))
	}

}

func logCartEvent(ev cart.Event) {
	slog.Debug("cart event", slog.String("topic", ev.Topic), slog.String("itemId", ev.ItemID))
}
