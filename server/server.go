package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sono/cache"
	"sono/config"
	"sono/core/agent"
	"sono/core/spotify"
	"sono/logger"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	// Redis is an optional mirror for the genre seed cache; the service runs
	// fine without it.
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, genre seed mirror disabled",
			logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
		logger.Info("Connected to Redis")
	}

	spotifyClient := spotify.NewClient(cfg)
	moodAgent := agent.New(&agent.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})

	chatHandler := NewChatHandler(moodAgent, spotifyClient)
	authHandler := NewAuthHandler(spotifyClient, cfg)
	searchHandler := NewSearchHandler(spotifyClient)

	router := mux.NewRouter()
	router.Use(corsMiddleware(cfg.AppOrigin))

	router.HandleFunc("/api/chat/stream", chatHandler.StreamChatHandler).Methods(http.MethodPost, http.MethodOptions)

	router.HandleFunc("/api/auth/login", authHandler.LoginHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/callback", authHandler.CallbackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/logout", authHandler.LogoutHandler).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/auth/status", authHandler.StatusHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/spotify/search", searchHandler.SearchTracksHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/health", HealthHandler).Methods(http.MethodGet)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// No write timeout: chat responses stream for up to the pipeline
		// deadline enforced per request.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("SONO server starting", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

// corsMiddleware allows the configured frontend origin with credentials,
// which the session cookies require.
func corsMiddleware(origin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
