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
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mgcx/vmcp/internal/compute"
)

// paginationProperties are the argument schemas shared by every listing
// tool.
func paginationProperties(defaultSort string) map[string]interface{} {
	return map[string]interface{}{
		"limit": map[string]interface{}{
			"type":        "number",
			"description": "Maximum number of results to return (default: 50)",
		},
		"offset": map[string]interface{}{
			"type":        "number",
			"description": "Number of results to skip (default: 0)",
		},
		"sort": map[string]interface{}{
			"type":        "string",
			"description": fmt.Sprintf("Sort expression (default: %q)", defaultSort),
		},
		"expand": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Response fields to expand",
		},
		"tenant_id": map[string]interface{}{
			"type":        "string",
			"description": "Tenant to scope the call to (overrides the configured default)",
		},
	}
}

// listOptions extracts the shared pagination/sort controls from a tool
// request. Unset values stay zero; the compute client applies defaults.
func listOptions(request mcp.CallToolRequest) *compute.ListOptions {
	return &compute.ListOptions{
		Limit:    request.GetInt("limit", 0),
		Offset:   request.GetInt("offset", 0),
		Sort:     request.GetString("sort", ""),
		Expand:   request.GetStringSlice("expand", nil),
		TenantID: request.GetString("tenant_id", ""),
	}
}

// registerInstanceTools registers the instance CRUD and lifecycle tools.
func (s *Server) registerInstanceTools() {
	// Tool: list_vms
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_vms",
		Description: "List virtual machine instances in the current tenant. Returns one page of the upstream's paginated envelope.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: paginationProperties(compute.DefaultInstanceSort),
		},
	}, s.handleListVMs)

	// Tool: get_vm
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_vm",
		Description: "Get details of a specific virtual machine instance by id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vm_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the virtual machine",
				},
			},
			Required: []string{"vm_id"},
		},
	}, s.handleGetVM)

	// Tool: create_vm
	s.mcpServer.AddTool(mcp.Tool{
		Name: "create_vm",
		Description: "Create a new virtual machine instance. Machine type and image may each be given by id or by name, " +
			"but not both. A repeated call creates a second instance; there is no duplicate protection.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name for the new instance",
				},
				"machine_type_id": map[string]interface{}{
					"type":        "string",
					"description": "Machine type id (mutually exclusive with machine_type_name)",
				},
				"machine_type_name": map[string]interface{}{
					"type":        "string",
					"description": "Machine type name (mutually exclusive with machine_type_id)",
				},
				"ssh_key_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the SSH key to install",
				},
				"image_id": map[string]interface{}{
					"type":        "string",
					"description": "Image id (mutually exclusive with image_name)",
				},
				"image_name": map[string]interface{}{
					"type":        "string",
					"description": "Image name (mutually exclusive with image_id)",
				},
				"availability_zone": map[string]interface{}{
					"type":        "string",
					"description": "Availability zone to place the instance in",
				},
				"vpc_id": map[string]interface{}{
					"type":        "string",
					"description": "VPC to attach; when set, the instance gets a public IP association",
				},
				"user_data": map[string]interface{}{
					"type":        "string",
					"description": "Cloud-init user data payload",
				},
				"tenant_id": map[string]interface{}{
					"type":        "string",
					"description": "Tenant to scope the call to",
				},
			},
			Required: []string{"name", "ssh_key_name"},
		},
	}, s.handleCreateVM)

	// Tool: delete_vm
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_vm",
		Description: "Delete a virtual machine instance by id. This requests deletion; it does not wait for the instance to be gone.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vm_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the virtual machine",
				},
				"delete_public_ip": map[string]interface{}{
					"type":        "boolean",
					"description": "Also release the instance's public IP (default: false)",
					"default":     false,
				},
				"tenant_id": map[string]interface{}{
					"type":        "string",
					"description": "Tenant to scope the call to",
				},
			},
			Required: []string{"vm_id"},
		},
	}, s.handleDeleteVM)

	// Lifecycle action tools. Each is a request to transition state, not
	// a confirmation of the transition; the upstream rejects illegal
	// transitions itself.
	actions := []struct {
		name        string
		description string
		handler     func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"start_instance", "Start a virtual machine instance by id.", s.handleStartInstance},
		{"stop_instance", "Stop a virtual machine instance by id.", s.handleStopInstance},
		{"reboot_instance", "Reboot a virtual machine instance by id.", s.handleRebootInstance},
		{"suspend_instance", "Suspend a virtual machine instance by id.", s.handleSuspendInstance},
	}

	for _, action := range actions {
		s.mcpServer.AddTool(mcp.Tool{
			Name:        action.name,
			Description: action.description,
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the virtual machine",
					},
					"tenant_id": map[string]interface{}{
						"type":        "string",
						"description": "Tenant to scope the call to",
					},
				},
				Required: []string{"id"},
			},
		}, action.handler)
	}
}

// handleListVMs implements the list_vms tool.
func (s *Server) handleListVMs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.client.ListInstances(ctx, listOptions(request))
	if err != nil {
		s.logger.Warn("list_vms failed", slog.Any("error", err))
		return errorEnvelope(err), nil
	}
	return jsonResponse(raw), nil
}

// handleGetVM implements the get_vm tool.
func (s *Server) handleGetVM(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vmID, err := request.RequireString("vm_id")
	if err != nil {
		return errorResponse("Missing or invalid 'vm_id' argument"), nil
	}

	raw, err := s.client.GetInstance(ctx, vmID)
	if err != nil {
		s.logger.Warn("get_vm failed", slog.String("instance_id", vmID), slog.Any("error", err))
		return errorEnvelope(err), nil
	}
	return jsonResponse(raw), nil
}

// referenceFromRequest builds the id-or-name reference for field from the
// idKey/nameKey argument pair.
func referenceFromRequest(request mcp.CallToolRequest, field, idKey, nameKey string) (compute.Reference, error) {
	id := request.GetString(idKey, "")
	name := request.GetString(nameKey, "")

	switch {
	case id != "" && name != "":
		return compute.Reference{}, fmt.Errorf("%s: provide either '%s' or '%s', not both", field, idKey, nameKey)
	case id != "":
		return compute.ByID(id), nil
	case name != "":
		return compute.ByName(name), nil
	default:
		return compute.Reference{}, fmt.Errorf("%s: one of '%s' or '%s' is required", field, idKey, nameKey)
	}
}

// handleCreateVM implements the create_vm tool.
func (s *Server) handleCreateVM(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResponse("Missing or invalid 'name' argument"), nil
	}

	sshKeyName, err := request.RequireString("ssh_key_name")
	if err != nil {
		return errorResponse("Missing or invalid 'ssh_key_name' argument"), nil
	}

	machineType, err := referenceFromRequest(request, "machine type", "machine_type_id", "machine_type_name")
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	image, err := referenceFromRequest(request, "image", "image_id", "image_name")
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	createReq := &compute.CreateInstanceRequest{
		Name:             name,
		MachineType:      machineType,
		SSHKeyName:       sshKeyName,
		Image:            image,
		AvailabilityZone: request.GetString("availability_zone", ""),
		UserData:         request.GetString("user_data", ""),
		TenantID:         request.GetString("tenant_id", ""),
	}

	// The network block is only attached when a VPC is named; an absent
	// block lets the upstream apply its own defaults.
	if vpcID := request.GetString("vpc_id", ""); vpcID != "" {
		vpc := compute.ByID(vpcID)
		createReq.Network = &compute.Network{
			VPC:               &vpc,
			AssociatePublicIP: true,
		}
	}

	result, err := s.client.CreateInstance(ctx, createReq)
	if err != nil {
		s.logger.Warn("create_vm failed", slog.String("name", name), slog.Any("error", err))
		return errorEnvelope(err), nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}

	s.logger.Info("instance created", slog.String("instance_id", result.ID), slog.String("name", result.Name))
	return textResponse(string(payload)), nil
}

// handleDeleteVM implements the delete_vm tool.
func (s *Server) handleDeleteVM(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vmID, err := request.RequireString("vm_id")
	if err != nil {
		return errorResponse("Missing or invalid 'vm_id' argument"), nil
	}

	raw, err := s.client.DeleteInstance(ctx, vmID, &compute.DeleteInstanceOptions{
		DeletePublicIP: request.GetBool("delete_public_ip", false),
		TenantID:       request.GetString("tenant_id", ""),
	})
	if err != nil {
		s.logger.Warn("delete_vm failed", slog.String("instance_id", vmID), slog.Any("error", err))
		return errorEnvelope(err), nil
	}

	if raw == nil {
		return statusResponse("deleted"), nil
	}
	return jsonResponse(raw), nil
}

func (s *Server) handleStartInstance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleAction(ctx, request, "started", s.client.StartInstance)
}

func (s *Server) handleStopInstance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleAction(ctx, request, "stopped", s.client.StopInstance)
}

func (s *Server) handleRebootInstance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleAction(ctx, request, "rebooted", s.client.RebootInstance)
}

func (s *Server) handleSuspendInstance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleAction(ctx, request, "suspended", s.client.SuspendInstance)
}

// handleAction implements the shared shape of the four lifecycle tools.
// ack is the status marker returned when the upstream answers 204.
func (s *Server) handleAction(ctx context.Context, request mcp.CallToolRequest, ack string,
	call func(ctx context.Context, id, tenantID string) (json.RawMessage, error),
) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return errorResponse("Missing or invalid 'id' argument"), nil
	}

	raw, err := call(ctx, id, request.GetString("tenant_id", ""))
	if err != nil {
		s.logger.Warn("instance action failed",
			slog.String("instance_id", id),
			slog.String("action", ack),
			slog.Any("error", err))
		return errorEnvelope(err), nil
	}

	if raw == nil {
		return statusResponse(ack), nil
	}
	return jsonResponse(raw), nil
}
