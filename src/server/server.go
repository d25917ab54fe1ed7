package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"strategydesk/src/handler"
)

// Routes groups the handlers mounted by NewRouter.
type Routes struct {
	ListStrategies       http.HandlerFunc
	GetStrategy          http.HandlerFunc
	CreateStrategy       http.HandlerFunc
	DeleteStrategy       http.HandlerFunc
	UpdateStrategyStatus http.HandlerFunc
	MarketData           http.HandlerFunc
}

// DefaultRoutes wires every route to the production repositories.
func DefaultRoutes() Routes {
	return Routes{
		ListStrategies:       handler.DefaultListStrategiesHandler(),
		GetStrategy:          handler.DefaultGetStrategyHandler(),
		CreateStrategy:       handler.DefaultCreateStrategyHandler(),
		DeleteStrategy:       handler.DefaultDeleteStrategyHandler(),
		UpdateStrategyStatus: handler.DefaultUpdateStrategyStatusHandler(),
		MarketData:           handler.DefaultMarketDataHandler(),
	}
}

func NewRouter(routes Routes, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/strategies", func(r chi.Router) {
			r.Get("/", routes.ListStrategies)
			r.Post("/", routes.CreateStrategy)
			r.Delete("/", routes.DeleteStrategy)
			r.Get("/{id}", routes.GetStrategy)
			r.Patch("/{id}/status", routes.UpdateStrategyStatus)
		})
		r.Get("/market-data", routes.MarketData)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			logger.WithFields(map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			}).Info("request handled")
		}()

		next.ServeHTTP(ww, r)
	})
}

func StartServer(config *Config) {
	r := NewRouter(DefaultRoutes(), config.RequestTimeout)

	// Graceful server
	addr := ":" + config.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
