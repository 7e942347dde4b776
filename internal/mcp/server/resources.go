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

// Resource URIs for the read-only listings.
const (
	resourceInstances    = "vm://instances"
	resourceImages       = "vm://images"
	resourceMachineTypes = "vm://machine-types"
	resourceSnapshots    = "vm://snapshots"
	resourceBackups      = "vm://backups"
)

// registerResources publishes each listing as a vm:// resource. Resources
// take no arguments, so each read serves the default first page; the
// listing tools exist for anything beyond that.
func (s *Server) registerResources() {
	listings := []struct {
		uri         string
		name        string
		description string
		call        func(ctx context.Context, opts *compute.ListOptions) (json.RawMessage, error)
	}{
		{resourceInstances, "Instances", "Virtual machine instances in the current tenant", s.client.ListInstances},
		{resourceImages, "Images", "Images available to the current tenant/region", s.client.ListImages},
		{resourceMachineTypes, "Machine types", "Available machine types", s.client.ListMachineTypes},
		{resourceSnapshots, "Snapshots", "Instance snapshots in the current tenant", s.client.ListSnapshots},
		{resourceBackups, "Backups", "Instance backups in the current tenant", s.client.ListBackups},
	}

	for _, listing := range listings {
		call := listing.call
		uri := listing.uri

		s.mcpServer.AddResource(mcp.Resource{
			URI:         uri,
			Name:        listing.name,
			Description: listing.description,
			MIMEType:    "application/json",
		}, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return s.readListing(ctx, uri, call)
		})
	}
}

// readListing serves a default-parameter listing as resource contents.
// Failures become the same envelope the tools return, so the caller gets
// a uniform failure shape instead of a protocol error.
func (s *Server) readListing(ctx context.Context, uri string,
	call func(ctx context.Context, opts *compute.ListOptions) (json.RawMessage, error),
) ([]mcp.ResourceContents, error) {
	raw, err := call(ctx, nil)
	if err != nil {
		s.logger.Warn("resource read failed", slog.String("resource", uri), slog.Any("error", err))
		raw = envelopeJSON(err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(raw),
		},
	}, nil
}
