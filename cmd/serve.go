package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/dump-hierarchy/internal/observability"
	"github.com/mj1618/dump-hierarchy/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the device control server",
	Long: `Start the control server for the configured device backend.

Supported transports:
  tcp          Raw socket control plane on host:port (default)
  mcp-stdio    Model Context Protocol over standard I/O
  mcp-http     Model Context Protocol over streamable HTTP on --mcp-port

The server stops cleanly on SIGINT or SIGTERM.

Examples:
  dump-hierarchy serve
  dump-hierarchy serve --port 9100 --max-workers 32
  dump-hierarchy serve --transport mcp-http --mcp-port 8080
  dump-hierarchy serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "tcp", "Transport: tcp, mcp-stdio, mcp-http")
	serveCmd.Flags().String("host", "127.0.0.1", "Listen address for the tcp transport")
	serveCmd.Flags().Int("port", 9000, "Listen port for the tcp transport")
	serveCmd.Flags().Int("max-workers", 16, "Max connections served at once")
	serveCmd.Flags().Duration("cache-ttl", 500*time.Millisecond, "Hierarchy dump cache TTL (0 disables)")
	serveCmd.Flags().Int("mcp-port", 8080, "HTTP port for the mcp-http transport")

	bindFlag("server.host", serveCmd, "host")
	bindFlag("server.port", serveCmd, "port")
	bindFlag("server.max_workers", serveCmd, "max-workers")
	bindFlag("server.dump_cache_ttl", serveCmd, "cache-ttl")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig()
	transport, _ := cmd.Flags().GetString("transport")
	mcpPort, _ := cmd.Flags().GetInt("mcp-port")
	log := observability.GetLogger()

	ctrl, err := newController(cfg)
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch transport {
	case "tcp":
		return server.New(ctrl, cfg.Server, log).ListenAndServe(ctx)
	case "mcp-stdio", "mcp-http":
		srv := newMCPServer(ctrl)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return ctrl.Watch(gctx) })
		g.Go(func() error {
			log.Info("mcp server starting", zap.String("transport", transport))
			return srv.serve(gctx, transport, mcpPort)
		})
		return g.Wait()
	default:
		return fmt.Errorf("unsupported transport: %s (use tcp, mcp-stdio, or mcp-http)", transport)
	}
}
