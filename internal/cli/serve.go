package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/riordanpawley/epicboard/internal/api"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/mcptools"
)

// ServeCommand runs the HTTP API until ctx is cancelled
func ServeCommand(ctx context.Context, deps *Dependencies) error {
	st, err := deps.requireStore("serve")
	if err != nil {
		return err
	}

	srv, err := api.NewServer(st, deps.Logger, &api.Config{
		Host: deps.Config.Server.Host,
		Port: deps.Config.Server.Port,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// MCPCommand serves the MCP tools over stdio
func MCPCommand(deps *Dependencies) error {
	deps.Logger.Info("starting mcp server")
	return server.ServeStdio(mcptools.NewServer(deps.Planner()))
}

// splitAddr parses a host:port listen address
func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("%w: listen address %q: %v", domain.ErrInvalid, addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("%w: listen port %q", domain.ErrInvalid, portStr)
	}
	return host, port, nil
}
