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

package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mgcx/vmcp/internal/compute"
)

// registerCatalogTools registers the read-only catalog listing tools.
func (s *Server) registerCatalogTools() {
	catalogs := []struct {
		name        string
		description string
		defaultSort string
		handler     func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{
			"list_images",
			"List the images available to the current tenant/region.",
			compute.DefaultImageSort,
			s.handleListImages,
		},
		{
			"list_machine_types",
			"List the available machine types.",
			compute.DefaultMachineTypeSort,
			s.handleListMachineTypes,
		},
		{
			"list_snapshots",
			"List the current tenant's instance snapshots.",
			compute.DefaultSnapshotSort,
			s.handleListSnapshots,
		},
		{
			"list_backups",
			"List the current tenant's instance backups.",
			compute.DefaultBackupSort,
			s.handleListBackups,
		},
	}

	for _, catalog := range catalogs {
		s.mcpServer.AddTool(mcp.Tool{
			Name:        catalog.name,
			Description: catalog.description,
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: paginationProperties(catalog.defaultSort),
			},
		}, catalog.handler)
	}
}

func (s *Server) handleListImages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleListing(ctx, request, "list_images", s.client.ListImages)
}

func (s *Server) handleListMachineTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleListing(ctx, request, "list_machine_types", s.client.ListMachineTypes)
}

func (s *Server) handleListSnapshots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleListing(ctx, request, "list_snapshots", s.client.ListSnapshots)
}

func (s *Server) handleListBackups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleListing(ctx, request, "list_backups", s.client.ListBackups)
}

func (s *Server) handleListing(ctx context.Context, request mcp.CallToolRequest, tool string,
	call func(ctx context.Context, opts *compute.ListOptions) (json.RawMessage, error),
) (*mcp.CallToolResult, error) {
	raw, err := call(ctx, listOptions(request))
	if err != nil {
		s.logger.Warn("listing failed", slog.String("tool", tool), slog.Any("error", err))
		return errorEnvelope(err), nil
	}
	return jsonResponse(raw), nil
}
