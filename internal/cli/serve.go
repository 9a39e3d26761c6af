package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/okian/epp/internal/adapters/http/api"
	"github.com/okian/epp/internal/adapters/http/swagger"
	"github.com/okian/epp/internal/adapters/repository"
	service "github.com/okian/epp/internal/app"
	"github.com/okian/epp/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func (e *env) serveCommand() *ffcli.Command {
	fs := e.flagSet("epp serve")
	addr := fs.String("addr", e.cfg.Addr, "HTTP listen address")

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "epp serve [-addr host:port]",
		ShortHelp:  "Serve the report API.",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
			}
			ln, err := net.Listen("tcp", *addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", *addr, err)
			}
			return e.serve(ctx, ln)
		},
	}
}

// serve runs the API on ln until ctx is cancelled, then shuts down
// gracefully.
func (e *env) serve(ctx context.Context, ln net.Listener) error {
	scale, err := e.cfg.Scale()
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithScale(scale),
		service.WithColumns(e.cfg.Columns),
		service.WithSheetName(e.cfg.SheetName),
		service.WithStore(repository.NewMemoryStore(repository.WithCapacity(e.cfg.ReportCapacity))),
	)

	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc,
		api.WithMaxUploadBytes(e.cfg.MaxUploadBytes),
		api.WithLogger(logger.Named("api")),
	).Register(mux)

	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info(ctx, "starting HTTP server",
			logger.String("addr", ln.Addr().String()),
			logger.String("scale", scale.String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.log.Info(ctx, "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	e.log.Info(ctx, "server stopped")
	return nil
}
