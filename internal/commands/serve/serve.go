// Copyright 2025 The vmcp Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgcx/vmcp/internal/commands/shared"
	"github.com/mgcx/vmcp/internal/compute"
	"github.com/mgcx/vmcp/internal/config"
	"github.com/mgcx/vmcp/internal/mcp/server"
	"github.com/mgcx/vmcp/pkg/httpclient"
)

// NewCommand creates the serve command
func NewCommand() *cobra.Command {
	var (
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the vmcp MCP server",
		Long: `Start the vmcp MCP (Model Context Protocol) server.

The server exposes virtual machine management on the compute API as MCP tools
and resources that AI assistants (Claude Code, Cursor, Gemini CLI) can use to
list, create, delete and control instances, and to browse the image,
machine-type, snapshot and backup catalogs.

The server runs in stdio mode, which is suitable for integration with AI
assistants via their MCP configuration.

Configuration example for Claude Code (~/.config/claude/config.json):
  {
    "mcpServers": {
      "vmcp": {
        "command": "vmcp",
        "args": ["serve"],
        "env": {
          "VM_API_KEY": "your-api-key"
        }
      }
    }
  }

The API key is required and read from VM_API_KEY (or the config file). The
endpoint defaults to the br-ne-1 compute API and can be overridden with
VM_API_URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Logging verbosity (debug, info, warn, error)")

	return cmd
}

// Run starts the MCP server and blocks until shutdown. It is exported so the
// root command can make serve the default action.
func Run(cmd *cobra.Command, logLevel string) error {
	versionStr, _, _ := shared.GetVersion()

	cfg, err := config.Load(shared.GetConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	httpClient, err := httpclient.New(httpclient.Config{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: "vmcp/" + versionStr,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	opts := []compute.Option{
		compute.WithBaseURL(cfg.BaseURL),
		compute.WithHTTPClient(httpClient),
		compute.WithUserAgent("vmcp/" + versionStr),
	}
	if cfg.TenantID != "" {
		opts = append(opts, compute.WithTenantID(cfg.TenantID))
	}
	client, err := compute.NewClient(cfg.APIKey, opts...)
	if err != nil {
		return fmt.Errorf("failed to create compute client: %w", err)
	}

	srv, err := server.NewServer(server.ServerConfig{
		Name:     "vmcp",
		Version:  versionStr,
		LogLevel: logLevel,
		Client:   client,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived shutdown signal, shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}

		cancel()
	}()

	// Run the server (blocks until shutdown)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
