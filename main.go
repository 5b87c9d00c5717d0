package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/catalog"
	"storefront/config"
	"storefront/globals"
	"storefront/handlers"
	"storefront/live"
	"storefront/profile"
	"storefront/ratelim"
	"storefront/rdx"
	"storefront/remote"
	"storefront/routes"
	"storefront/session"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.RequestURI),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// profileStore uses Redis when configured, otherwise files on disk.
func profileStore(ctx context.Context, cfg config.Config) (profile.Store, *redis.Client, error) {
	if cfg.RedisAddr != "" {
		conn, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return profile.NewRedisStore(conn, cfg.SessionTTL), conn, nil
	}
	store, err := profile.NewFileStore(cfg.ProfileDir)
	return store, nil, err
}

func main() {
	cfg := config.Load()

	logger, err := cfg.Logger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	globals.JwtSecret = []byte(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, redisConn, err := profileStore(ctx, cfg)
	if err != nil {
		zap.L().Fatal("profile store", zap.Error(err))
	}

	api := remote.New(cfg.APIURL, cfg.APITimeout)

	hub := live.NewHub()
	go hub.Run()

	sessions := session.NewManager(session.Deps{
		Products:  api,
		Orders:    api,
		Accounts:  api,
		Profiles:  profiles,
		Avatars:   api,
		Publisher: hub,
		Pricing: catalog.Pricing{
			DiscountColor: cfg.SaleColor,
			Rate:          decimal.NewFromFloat(cfg.SaleRate),
		},
		Debounce:      cfg.DebounceDelay,
		SubmitTimeout: 2 * cfg.APITimeout,
	})
	go sessions.RunJanitor(ctx, time.Minute, cfg.SessionTTL)

	orderLimit := ratelim.NewRateLimiter(cfg.OrderRate, 1)
	authLimit := ratelim.NewRateLimiter(30, 5)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				orderLimit.Cleanup()
				authLimit.Cleanup()
			}
		}
	}()

	h := handlers.New(sessions, hub, cfg.SessionTTL)
	router := routes.New(h, orderLimit, authLimit)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      cfg.APITimeout*2 + 15*time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		zap.L().Info("shutting down live hub")
		hub.Stop()
		if redisConn != nil {
			redisConn.Close()
		}
	})

	go func() {
		zap.L().Info("server listening", zap.String("addr", cfg.Port), zap.String("api", cfg.APIURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	<-ctx.Done()

	zap.L().Info("shutdown signal received; shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("graceful shutdown failed", zap.Error(err))
	}

	zap.L().Info("server stopped cleanly")
}
