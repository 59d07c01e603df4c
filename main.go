package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospitality/booking"
	"hospitality/config"
	"hospitality/db"
	"hospitality/export"
	"hospitality/filemgr"
	"hospitality/middleware"
	"hospitality/mq"
	"hospitality/places"
	"hospitality/pricing"
	"hospitality/ratelim"
	"hospitality/rdx"
	"hospitality/restaurants"
	"hospitality/routes"
	"hospitality/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if format == "json" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}

func newRedis(ctx context.Context, cfg config.Config, log zerolog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set; cache and events disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; cache and events disabled")
		_ = client.Close()
		return nil
	}
	return client
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		bootLog := newLogger("info", "console")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := newLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	redisClient := newRedis(ctx, cfg, log)
	cache := rdx.New(redisClient, cfg.CacheTTLDuration())
	emitter := mq.NewEmitter(redisClient, log)

	restaurantStore := store.NewRestaurants(database.RestaurantsCollection)
	hotelStore := store.NewHotels(database.HotelsCollection)
	roomStore := store.NewRooms(database.RoomsCollection)
	bookingStore := store.NewBookings(database.BookingsCollection)

	aggregator := pricing.NewAggregator(restaurantStore, cache, log)
	if avg, err := aggregator.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial average price refresh failed")
	} else {
		log.Info().Float64("averagePrice", avg).Msg("average price ready")
	}

	if cfg.VoucherSecret == "" {
		log.Warn().Msg("VOUCHER_SECRET not set; vouchers are signed with an empty key")
	}

	uploader := filemgr.NewUploader(cfg.UploadDir, cfg.PublicBaseURL, log)
	hub := booking.NewHub(log)

	handlers := routes.Handlers{
		Restaurants: restaurants.NewHandler(restaurantStore, aggregator, uploader, cache, emitter, log),
		Bookings: booking.NewHandler(bookingStore, booking.References{
			Hotels:      hotelStore,
			Rooms:       roomStore,
			Restaurants: restaurantStore,
		}, hub, emitter, cfg.VoucherSecret, log),
		Hub:    hub,
		Places: places.NewHandler(hotelStore, roomStore, uploader, emitter, log),
		Export: export.NewHandler(bookingStore, log),
	}

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	go rateLimiter.Run(time.Minute)

	router := routes.New(handlers, rateLimiter, cfg.UploadDir)

	// logging → recover → security headers → CORS → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.Chain(corsHandler,
		middleware.Logging(log),
		middleware.Recover(log),
		middleware.SecurityHeaders,
	)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Info().Msg("closing booking feed")
		hub.Close()
		rateLimiter.Stop()
	})

	go func() {
		log.Info().Str("addr", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("disconnect database")
	}
	log.Info().Msg("server stopped cleanly")
}
