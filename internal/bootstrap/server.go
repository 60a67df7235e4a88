package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// AuditLogger records server lifecycle events.
type AuditLogger interface {
	Started(addr string)
	Stopping(reason string)
	Stopped(err error)
}

type zapAuditLogger struct {
	logger *zap.Logger
}

func NewAuditLogger(logger *zap.Logger) AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapAuditLogger{logger: logger.Named("audit")}
}

func (a *zapAuditLogger) Started(addr string) {
	a.logger.Info("http server started", zap.String("addr", addr))
}

func (a *zapAuditLogger) Stopping(reason string) {
	a.logger.Info("http server stopping", zap.String("reason", reason))
}

func (a *zapAuditLogger) Stopped(err error) {
	if err != nil {
		a.logger.Error("http server stopped with error", zap.Error(err))
		return
	}
	a.logger.Info("http server stopped")
}

// StartHTTPServer serves handler until SIGINT or SIGTERM, then drains
// in-flight requests.
func StartHTTPServer(handler http.Handler, cfg ServerConfig, audit AuditLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, ln, handler, cfg, audit)
}

// Serve runs the server on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, cfg ServerConfig, audit AuditLogger) error {
	if audit == nil {
		audit = NewAuditLogger(nil)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		audit.Started(ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		audit.Stopped(err)
		return err
	case <-ctx.Done():
		audit.Stopping(ctx.Err().Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	audit.Stopped(err)
	return err
}
