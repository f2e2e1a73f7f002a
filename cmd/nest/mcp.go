package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aretw0/nest"
	"github.com/aretw0/nest/internal/cli"
	"github.com/aretw0/nest/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the state tree to MCP clients: sessions are started, driven and inspected through tools,
and the tree is published as JSON and Mermaid resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		engine := openEngine(cmd, nil)
		defer engine.Close(context.Background())

		// Logs never go to Stdout: it carries JSON-RPC in stdio mode.
		logger := commandLogger(cmd)
		srv := mcp.NewServer(engine, nest.Version, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting Nest MCP Server (Stdio)")
			if err := srv.ServeStdio(); err != nil {
				exitMCP(logger, err)
			}
		case "sse":
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			addr := fmt.Sprintf(":%d", port)
			baseURL := fmt.Sprintf("http://localhost:%d", port)
			if err := srv.ServeSSE(ctx, addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				exitMCP(logger, err)
			}
			logger.Info("MCP Server stopped gracefully")
		default:
			fmt.Fprintf(os.Stderr, "Unknown transport: %s. Supported: stdio, sse\n", transport)
			os.Exit(1)
		}
	},
}

func exitMCP(logger *slog.Logger, err error) {
	logger.Error("MCP Server execution failed", "err", err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	addEngineFlags(mcpCmd)
}
