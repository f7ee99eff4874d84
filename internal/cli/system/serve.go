package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/api"
	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
)

const shutdownTimeout = 5 * time.Second

type ServeCmd struct {
	Addr string `help:"Listen address (default: server.addr setting)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return serve(ctx, ln)
}

// serve runs the HTTP API on ln until the context is cancelled or the
// process receives SIGINT or SIGTERM.
func serve(ctx *cli.Context, ln net.Listener) error {
	runCtx, stop := signal.NotifyContext(ctx.Ctx(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:           api.NewRouter(api.NewHandler(ctx.Habits.Uncached(), ctx.Codec)),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return runCtx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	ctx.Printf("Serving habital API on http://%s (Ctrl+C to stop)\n", ln.Addr())
	logger.Info("API server started", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("API server stopped")
	return nil
}
