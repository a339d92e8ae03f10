package cmd

import (
	"github.com/spf13/cobra"

	"scenarist/internal/config"
	"scenarist/internal/mcpserver"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcpserver",
		Short: "Serve scenario tools over the Model Context Protocol",
		Long: `Start an MCP server on stdin/stdout exposing scenario_list,
scenario_run and scenario_validate, so MCP clients such as agent
runtimes can drive scenario runs.

Reporter output is suppressed while serving; run results come back
as structured tool results instead.`,
		RunE: runMCPServer,
	}
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	settings, _, err := config.Load()
	if err != nil {
		return err
	}
	initLogging(settings)

	s := mcpserver.New(mcpserver.Config{
		Name:     settings.MCP.ServerName,
		Version:  rootCmd.Version,
		Settings: settings,
	})
	return s.Serve()
}
