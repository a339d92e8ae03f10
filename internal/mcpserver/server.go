// Package mcpserver exposes scenario discovery, execution, and
// validation as MCP tools over stdio, so agent clients can drive runs
// through the Model Context Protocol.
//
// Reporter output is forced to silent: stdout carries protocol frames,
// so run results travel back as tool results instead.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"scenarist/internal/config"
	"scenarist/internal/harness"
	"scenarist/pkg/core"
	"scenarist/pkg/logging"
)

// Config holds the MCP server identity and the base run settings.
type Config struct {
	Name     string        // server name announced to clients (default: scenarist)
	Version  string        // server version announced to clients (default: dev)
	Settings config.Config // base settings applied to every tool call
}

// Server wraps an MCP server with the scenario tools registered.
type Server struct {
	cfg Config
	mcp *server.MCPServer
}

// New creates the server and registers the scenario tools.
func New(cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = "scenarist"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{cfg: cfg}
	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
	)
	mcpServer.AddTools(s.tools()...)
	s.mcp = mcpServer
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	logging.Info("mcpserver", "Serving MCP tools on stdio as %s", s.cfg.Name)
	return server.ServeStdio(s.mcp)
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: s.listTool(), Handler: s.handleList},
		{Tool: s.runTool(), Handler: s.handleRun},
		{Tool: s.validateTool(), Handler: s.handleValidate},
	}
}

func (s *Server) listTool() mcp.Tool {
	return mcp.NewTool("scenario_list",
		mcp.WithDescription("List the discovered scenarios without running them"),
		mcp.WithString("scenarios_dir",
			mcp.Description("Directory to scan instead of the configured one"),
		),
	)
}

func (s *Server) runTool() mcp.Tool {
	return mcp.NewTool("scenario_run",
		mcp.WithDescription("Run the discovered scenarios and return the report"),
		mcp.WithString("scenarios_dir",
			mcp.Description("Directory to scan instead of the configured one"),
		),
		mcp.WithNumber("repeats",
			mcp.Description("Run each scenario N times and aggregate the results"),
		),
	)
}

func (s *Server) validateTool() mcp.Tool {
	return mcp.NewTool("scenario_validate",
		mcp.WithDescription("Parse every scenario file and report the first problem found"),
		mcp.WithString("scenarios_dir",
			mcp.Description("Directory to scan instead of the configured one"),
		),
	)
}

// frameworkFor builds a fresh framework for one tool call, applying the
// per-call overrides on top of the configured settings.
func (s *Server) frameworkFor(req mcp.CallToolRequest) (*harness.Framework, error) {
	settings := s.cfg.Settings
	if dir := req.GetString("scenarios_dir", ""); dir != "" {
		settings.ScenariosDir = dir
	}
	if repeats := req.GetInt("repeats", 0); repeats > 0 {
		settings.Repeats = repeats
	}
	settings.Reporter = "silent"

	cfg := harness.DefaultFrameworkConfig()
	cfg.Settings = settings
	cfg.Stdout = io.Discard
	cfg.NoColor = true
	return harness.New(cfg)
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := s.frameworkFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scenarios, err := f.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Discovery failed: %v", err)), nil
	}

	items := make([]map[string]interface{}, 0, len(scenarios))
	for _, sc := range scenarios {
		item := map[string]interface{}{
			"id":        sc.ID(),
			"subject":   sc.Subject(),
			"namespace": sc.Namespace(),
			"path":      sc.Path(),
			"steps":     len(sc.Steps()),
		}
		if sc.Skipped() {
			item["skipped"] = true
			if reason := sc.SkipReason(); reason != "" {
				item["skip_reason"] = reason
			}
		}
		items = append(items, item)
	}

	resultJSON, _ := json.MarshalIndent(map[string]interface{}{
		"scenarios": items,
		"total":     len(items),
	}, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := s.frameworkFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := f.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Run failed: %v", err)), nil
	}

	results := make([]map[string]interface{}, 0, len(report.Results()))
	for _, res := range report.Results() {
		results = append(results, resultDocument(res))
	}

	resultJSON, _ := json.MarshalIndent(map[string]interface{}{
		"run_id":          report.RunID(),
		"total":           report.Total(),
		"passed":          report.Passed(),
		"failed":          report.Failed(),
		"skipped":         report.Skipped(),
		"elapsed_seconds": report.ElapsedSeconds(),
		"results":         results,
	}, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := s.frameworkFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	count, err := f.Validate(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Validation failed: %v", err)), nil
	}

	resultJSON, _ := json.MarshalIndent(map[string]interface{}{
		"valid":     true,
		"scenarios": count,
	}, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func resultDocument(res *core.ScenarioResult) map[string]interface{} {
	doc := map[string]interface{}{
		"id":        res.Scenario().ID(),
		"subject":   res.Scenario().Subject(),
		"namespace": res.Scenario().Namespace(),
		"status":    res.Status().String(),
	}
	if exc := res.ExcInfo(); exc != nil {
		doc["error"] = exc.String()
	}
	if res.IsSkipped() {
		if reason := res.Scenario().SkipReason(); reason != "" {
			doc["skip_reason"] = reason
		}
	}
	return doc
}
