package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gleam-inbox/internal/config"
	"gleam-inbox/internal/db"
	"gleam-inbox/internal/events"
	"gleam-inbox/internal/inbox"
	"gleam-inbox/internal/instagram"
	"gleam-inbox/internal/message"
	"gleam-inbox/internal/session"
	"gleam-inbox/internal/user"
	"gleam-inbox/internal/webhook"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Platform layer: Postgres + Redis.
	database, err := db.NewDatabase(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ failed to connect to PostgreSQL")
	}
	defer database.Close()
	if err := database.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("❌ migration failed")
	}
	log.Info().Msg("✅ connected to PostgreSQL")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("⚠️ redis unavailable, running single-instance fan-out")
		redisClient = nil
	} else {
		log.Info().Msg("✅ connected to Redis")
	}

	// Live event hub.
	hub := events.NewHub(redisClient)
	go hub.Run(ctx)
	go hub.SubscribeToRedis(ctx)

	// Collaborators.
	igClient := instagram.NewClient(instagram.Config{
		ClientID:     cfg.InstagramClientID,
		ClientSecret: cfg.InstagramClientSecret,
		RedirectURI:  cfg.InstagramRedirectURI,
	})
	messages := message.NewRepository(database.Conn)
	users := user.NewRepository(database.Conn)
	sessions := session.NewManager(cfg.SessionSecret, cfg.SecureCookies)

	// Handlers.
	authHandler := session.NewHandler(sessions, igClient, users)
	webhookHandler := webhook.NewHandler(cfg.MetaVerifyToken, webhook.NewGraphResolver(igClient, users), messages, hub)
	inboxHandler := inbox.NewHandler(igClient, messages, cfg.HistoryLimit)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Public routes.
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/api/webhook", webhookHandler.Verify)
	r.Post("/api/webhook", webhookHandler.Receive)
	r.Get("/api/events", events.NewSSEHandler(hub).ServeHTTP)
	r.Get("/ws", events.NewWSHandler(hub).ServeHTTP)
	r.Get("/auth/callback", authHandler.Callback)
	r.Post("/auth/logout", authHandler.Logout)

	// Routes that need a connected account.
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Get("/api/me", authHandler.Me)
		r.Get("/api/messages", inboxHandler.List)
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("🚀 server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
