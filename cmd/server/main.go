package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/skinsify/skinsify/internal/account"
	"github.com/skinsify/skinsify/internal/cache"
	"github.com/skinsify/skinsify/internal/catalog"
	"github.com/skinsify/skinsify/internal/config"
	"github.com/skinsify/skinsify/internal/feedback"
	"github.com/skinsify/skinsify/internal/game"
	"github.com/skinsify/skinsify/internal/media"
	"github.com/skinsify/skinsify/internal/order"
	"github.com/skinsify/skinsify/internal/payment"
	"github.com/skinsify/skinsify/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize OpenTelemetry
	tp, err := initTracer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	mp, err := initMetrics(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down meter: %v", err)
		}
	}()

	// Initialize database
	ctx := context.Background()
	pool, err := store.NewPool(ctx, cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if err := store.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	// Initialize dependencies
	gateway := payment.NewRazorpayGateway(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	host := media.NewCloudinaryHost(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	guard := cache.NewRedisGuard(redisClient)

	accountRepo := account.NewRepository(pool)
	accountUseCase := account.NewUseCase(accountRepo, cfg.JWTSecret, cfg.JWTTTL)
	accountHandler := account.NewHandler(accountUseCase)

	catalogRepo := catalog.NewRepository(pool)
	catalogUseCase := catalog.NewUseCase(catalogRepo, host)
	catalogHandler := catalog.NewHandler(catalogUseCase)

	orderRepo := order.NewRepository(pool)
	orderUseCase := order.NewUseCase(orderRepo, catalogRepo, accountRepo, gateway, guard)
	orderHandler := order.NewHandler(orderUseCase)

	feedbackRepo := feedback.NewRepository(pool)
	feedbackUseCase := feedback.NewUseCase(feedbackRepo)
	feedbackHandler := feedback.NewHandler(feedbackUseCase)

	gameRepo := game.NewRepository(pool)
	gameHandler := game.NewHandler(gameRepo)
	if err := game.Seed(ctx, gameRepo); err != nil {
		log.Printf("⚠️ Demo games initialization failed: %v", err)
	}

	// Setup Gin router
	r := gin.Default()
	r.Use(otelgin.Middleware(cfg.ServiceName))

	auth := accountUseCase.AuthMiddleware()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.ServiceName})
	})

	r.POST("/auth/register", accountHandler.Register)
	r.POST("/auth/login", accountHandler.Login)
	r.GET("/auth/me", auth, accountHandler.Me)
	r.PUT("/auth/game-ids", auth, accountHandler.SetGameID)

	r.GET("/games", gameHandler.List)

	r.GET("/items", catalogHandler.List)
	r.GET("/items/user/items", auth, catalogHandler.ListMine)
	r.GET("/items/:id", catalogHandler.Get)
	r.POST("/items", auth, catalogHandler.Create)
	r.DELETE("/items/:id", auth, catalogHandler.Delete)

	r.POST("/payment/create-order", auth, orderHandler.CreateOrder)
	r.POST("/payment/verify", auth, orderHandler.Verify)
	r.GET("/payment/transactions", auth, orderHandler.ListTransactions)
	r.PUT("/payment/transactions/:id/transfer", auth, orderHandler.MarkTransferred)

	r.POST("/feedback", auth, feedbackHandler.Submit)
	r.GET("/feedback/item/:itemId", feedbackHandler.ItemReviews)
	r.GET("/feedback/seller/:sellerId", feedbackHandler.SellerReviews)
	r.GET("/feedback/stats/:sellerId", feedbackHandler.SellerStats)
	r.POST("/feedback/:id/helpful", auth, feedbackHandler.MarkHelpful)

	log.Printf("🚀 Skinsify API listening on port %s", cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

func initTracer(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMetrics(cfg *config.Config) (*sdkmetric.MeterProvider, error) {
	ctx := context.Background()

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}
