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

// Package server implements the MCP server that exposes the upstream
// compute API as tools, resources, and a prompt. Mutating and action
// calls are tools; read-only listings are additionally published as
// vm:// resources.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mgcx/vmcp/internal/compute"
	"github.com/mgcx/vmcp/internal/log"
)

// Server wraps the MCP server and the upstream compute client.
type Server struct {
	mcpServer *server.MCPServer
	name      string
	version   string
	client    *compute.Client
	logger    *slog.Logger
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "vmcp")
	Name string

	// Version is the vmcp version
	Version string

	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string

	// Client performs the upstream compute API calls. Required.
	Client *compute.Client
}

// createLogger creates a logger with the specified log level.
// Writes to stderr to avoid interfering with MCP stdio protocol.
func createLogger(levelStr string) (*slog.Logger, error) {
	switch levelStr {
	case "debug", "info", "warn", "error", "":
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", levelStr)
	}

	cfg := log.DefaultConfig()
	if levelStr != "" {
		cfg.Level = levelStr
	}

	return log.New(cfg), nil
}

// NewServer creates a new MCP server instance.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Name == "" {
		config.Name = "vmcp"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.Client == nil {
		return nil, fmt.Errorf("compute client is required")
	}

	logger, err := createLogger(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	mcpServer := server.NewMCPServer(config.Name, config.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer: mcpServer,
		name:      config.Name,
		version:   config.Version,
		client:    config.Client,
		logger:    logger,
	}

	s.registerInstanceTools()
	s.registerCatalogTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// Run starts the MCP server using stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting vmcp MCP server", slog.String("version", s.version))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down vmcp MCP server")
	// The mcp-go server doesn't have an explicit shutdown method.
	// Returning from ServeStdio() is sufficient.
	return nil
}

// errorResponse reports an argument-shape problem. These never reach the
// upstream, so there is no status code to carry.
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// textResponse creates a plain text success response.
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// jsonResponse passes an upstream payload through as-is.
func jsonResponse(raw json.RawMessage) *mcp.CallToolResult {
	return textResponse(string(raw))
}

// errorEnvelope converts an upstream or transport failure into the
// uniform two-field envelope. The envelope is the tool's result, not a
// protocol error: callers always receive either upstream JSON or this
// shape, never a stack trace.
func errorEnvelope(err error) *mcp.CallToolResult {
	return textResponse(string(envelopeJSON(err)))
}

func envelopeJSON(err error) json.RawMessage {
	status := compute.StatusCode(err)

	message := err.Error()
	var apiErr *compute.Error
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}

	payload, marshalErr := json.Marshal(map[string]any{
		"error":       message,
		"status_code": status,
	})
	if marshalErr != nil {
		return json.RawMessage(fmt.Sprintf(`{"error":%q,"status_code":%d}`, message, status))
	}
	return payload
}

// statusResponse is the acknowledgment for a 204 from the upstream, e.g.
// {"status": "deleted"}.
func statusResponse(status string) *mcp.CallToolResult {
	payload, _ := json.Marshal(map[string]string{"status": status})
	return textResponse(string(payload))
}
