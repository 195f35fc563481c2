// Package webhookhttp is the inbound HTTP surface: the alert webhook plus
// status, metrics and trading-toggle endpoints. It is a thin wrapper; all
// decision logic lives in the engine.
package webhookhttp

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orbot/internal/engine"
	"orbot/internal/logger"
	"orbot/internal/metrics"
	"orbot/internal/signal"
)

// OutcomeNotifier is the notification capability the transport hands results
// to. Delivery is best-effort and must never fail the request.
type OutcomeNotifier interface {
	Notify(out engine.Outcome, rawSignalText string)
}

// ServerConfig describes the transport dependencies.
type ServerConfig struct {
	Addr     string
	Parser   *signal.Parser
	Engine   *engine.Engine
	Notifier OutcomeNotifier
	// TradingEnabled seeds the runtime accept/ignore toggle.
	TradingEnabled bool
}

// Server hosts the webhook endpoint.
type Server struct {
	addr     string
	router   *gin.Engine
	parser   *signal.Parser
	engine   *engine.Engine
	notifier OutcomeNotifier
	enabled  atomic.Bool
}

// NewServer builds the server with all routes registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Parser == nil || cfg.Engine == nil {
		return nil, errors.New("webhook server requires parser and engine")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		addr:     cfg.Addr,
		router:   router,
		parser:   cfg.Parser,
		engine:   cfg.Engine,
		notifier: cfg.Notifier,
	}
	s.enabled.Store(cfg.TradingEnabled)

	router.GET("/", s.handleRoot)
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/webhook", s.handleWebhook)
	router.POST("/api/trading/enable", s.handleToggle(true))
	router.POST("/api/trading/disable", s.handleToggle(false))
	return s, nil
}

// Router exposes the gin engine for httptest.
func (s *Server) Router() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "ORB bot webhook is running"})
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.engine.Ledger().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"trading_enabled": s.enabled.Load(),
		"day":             snap.Day,
		"trade_count":     snap.TradeCount,
		"loss_units":      snap.LossUnits,
	})
}

// handleWebhook is the alert entry point. A malformed body is never an HTTP
// error: the parser degrades it and the engine reports the verdict, so one
// bad alert cannot break processing of the next one.
func (s *Server) handleWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unreadable body"})
		return
	}
	if !s.enabled.Load() {
		logger.Infof("webhook: trading disabled, alert ignored")
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "detail": "trading disabled"})
		return
	}

	sig := s.parser.Parse(body)
	out := s.engine.Process(c.Request.Context(), sig)
	metrics.ObserveOutcome(out)
	if s.notifier != nil {
		go s.notifier.Notify(out, sig.Raw)
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"event":  string(sig.Event),
		"action": string(out.Action),
		"detail": out.Detail,
	})
}

func (s *Server) handleToggle(enable bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.enabled.Store(enable)
		logger.Infof("webhook: trading_enabled set to %v", enable)
		c.JSON(http.StatusOK, gin.H{"status": "ok", "trading_enabled": enable})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		client := c.ClientIP()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			method, path, c.Writer.Status(), client, time.Since(start))
	}
}
