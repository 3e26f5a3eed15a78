// Package server exposes the dashboard, layout and transactions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/layout"
	"github.com/Veraticus/budgly/internal/ledger"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/privacy"
	"github.com/Veraticus/budgly/internal/timewindow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// PaymentModes supplies the configured payment modes.
type PaymentModes interface {
	GetPaymentModes(ctx context.Context) ([]model.PaymentMode, error)
}

// Config holds listener settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Deps are the collaborators the handlers read from and write to.
type Deps struct {
	Ledger    *ledger.Service
	Layout    *layout.Reconciler
	Engine    *analytics.Engine
	Formatter *privacy.Formatter
	Modes     PaymentModes
	Period    timewindow.Period
}

// Server is the HTTP API.
type Server struct {
	router *gin.Engine
	deps   Deps
	config Config
}

// New wires routes for deps. It does not start listening.
func New(config Config, deps Deps) *Server {
	if deps.Period == "" {
		deps.Period = timewindow.PeriodThisMonth
	}
	s := &Server{deps: deps, config: config}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if len(config.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     config.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.GET("/dashboard", s.getDashboard)
	api.GET("/analytics", s.getAnalytics)
	api.GET("/streaks", s.getStreaks)

	api.GET("/layout", s.getLayout)
	api.PUT("/layout/order", s.reorderLayout)
	api.PUT("/layout/visibility", s.setVisibility)
	api.POST("/layout/reset", s.resetLayout)

	api.GET("/transactions", s.listTransactions)
	api.POST("/transactions", s.addTransaction)
	api.GET("/transactions/:id", s.getTransaction)
	api.PATCH("/transactions/:id", s.updateTransaction)
	api.DELETE("/transactions/:id", s.deleteTransaction)

	api.GET("/payment-modes", s.getPaymentModes)

	s.router = r
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down api server: %w", err)
	}
	slog.Info("API server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
