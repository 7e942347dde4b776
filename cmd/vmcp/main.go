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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgcx/vmcp/internal/commands/serve"
	"github.com/mgcx/vmcp/internal/commands/shared"
	versioncmd "github.com/mgcx/vmcp/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	shared.SetVersion(version, commit, buildDate)

	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vmcp",
		Short: "MCP server for virtual machine management",
		Long: `vmcp exposes a cloud compute API as MCP tools and resources.

AI assistants connect to vmcp over stdio and use its tools to list, create,
delete and control virtual machine instances, and to browse the image,
machine-type, snapshot and backup catalogs.

Running vmcp with no subcommand starts the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default action is serve with its default log level.
			return serve.Run(cmd, "info")
		},
	}

	jsonFlag, configFlag := shared.RegisterFlagPointers()
	cmd.PersistentFlags().BoolVar(jsonFlag, "json", false, "Output in JSON format where supported")
	cmd.PersistentFlags().StringVar(configFlag, "config", "", "Path to configuration file")

	cmd.AddCommand(serve.NewCommand())
	cmd.AddCommand(versioncmd.NewVersionCommand())

	return cmd
}
