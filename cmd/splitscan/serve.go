package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/config"
	"github.com/splitscan/splitscan/internal/home"
	"github.com/splitscan/splitscan/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the splitscan server",
	Long: `Start the splitscan HTTP server.

The server provides:
  - /health        - Basic server health check
  - /ready         - Readiness check (includes batch store)
  - /api/v1/...    - Batch lifecycle API

Examples:
  splitscan serve                    # Start on default port 8080
  splitscan serve --port 3000        # Start on custom port
  splitscan serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		// Command-line flags override the config file
		c := cfgMgr.Get()
		if cmd.Flags().Changed("host") {
			c.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			c.Server.Port = servePort
		}

		srv, err := server.New(server.Config{
			ConfigManager: cfgMgr,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
