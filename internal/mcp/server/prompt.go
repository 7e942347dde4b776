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

	"github.com/mark3labs/mcp-go/mcp"
)

// registerPrompts registers the vm_query prompt, which points a model at
// the available resources and tools for a free-form VM question.
func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.Prompt{
		Name:        "vm_query",
		Description: "Frame a query about virtual machines in terms of the available vm:// resources and tools.",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "query",
				Description: "The question or operation to perform on virtual machines",
				Required:    true,
			},
		},
	}, s.handleVMQueryPrompt)
}

func (s *Server) handleVMQueryPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	query := request.Params.Arguments["query"]

	return &mcp.GetPromptResult{
		Description: "Query or operate on virtual machines",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent("You want to inspect or operate on virtual machines."),
			},
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent("Query: " + query),
			},
			{
				Role: mcp.RoleAssistant,
				Content: mcp.NewTextContent("Use the resources vm://instances, vm://images, vm://machine-types, " +
					"vm://snapshots and vm://backups for listings, or the tools to create, delete, start, stop, " +
					"reboot or suspend instances."),
			},
		},
	}, nil
}
