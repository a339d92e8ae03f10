package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenarist/internal/config"
)

func writeScenario(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeScenario(t, dir, "pass.yaml", `subject: adds numbers
steps:
  - name: seed
    action: set
    with:
      values:
        total: 4
  - name: check
    action: assert
    with:
      that: total == 4
`)
	writeScenario(t, dir, "fail.yaml", `subject: broken arithmetic
steps:
  - name: check
    action: assert
    with:
      that: 2 + 2 == 5
`)
	writeScenario(t, dir, "skip.yaml", "subject: parked\nskip: true\nskip_reason: flaky upstream\n")
	return dir
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	settings := config.Default()
	settings.ScenariosDir = filepath.Join(t.TempDir(), "unset")
	return New(Config{Settings: settings})
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return tc.Text
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, "scenarist", s.cfg.Name)
	assert.Equal(t, "dev", s.cfg.Version)
	assert.NotNil(t, s.mcp)
	assert.Len(t, s.tools(), 3)
}

func TestServer_ScenarioList(t *testing.T) {
	dir := scenarioDir(t)
	s := newTestServer(t)

	result, err := s.handleList(context.Background(), callRequest("scenario_list", map[string]any{
		"scenarios_dir": dir,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var doc struct {
		Total     int `json:"total"`
		Scenarios []struct {
			ID         string `json:"id"`
			Subject    string `json:"subject"`
			Steps      int    `json:"steps"`
			Skipped    bool   `json:"skipped"`
			SkipReason string `json:"skip_reason"`
		} `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &doc))

	require.Equal(t, 3, doc.Total)
	assert.Equal(t, "fail.yaml", doc.Scenarios[0].ID)
	assert.Equal(t, "adds numbers", doc.Scenarios[1].Subject)
	assert.Equal(t, 2, doc.Scenarios[1].Steps)
	assert.True(t, doc.Scenarios[2].Skipped)
	assert.Equal(t, "flaky upstream", doc.Scenarios[2].SkipReason)
}

func TestServer_ScenarioRun(t *testing.T) {
	dir := scenarioDir(t)
	s := newTestServer(t)

	result, err := s.handleRun(context.Background(), callRequest("scenario_run", map[string]any{
		"scenarios_dir": dir,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var doc struct {
		RunID   string `json:"run_id"`
		Total   int    `json:"total"`
		Passed  int    `json:"passed"`
		Failed  int    `json:"failed"`
		Skipped int    `json:"skipped"`
		Results []struct {
			Subject    string `json:"subject"`
			Status     string `json:"status"`
			Error      string `json:"error"`
			SkipReason string `json:"skip_reason"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &doc))

	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, 3, doc.Total)
	assert.Equal(t, 1, doc.Passed)
	assert.Equal(t, 1, doc.Failed)
	assert.Equal(t, 1, doc.Skipped)
	require.Len(t, doc.Results, 3)

	byStatus := map[string]int{}
	for _, res := range doc.Results {
		byStatus[res.Status]++
		switch res.Status {
		case "failed":
			assert.Equal(t, "broken arithmetic", res.Subject)
			assert.Contains(t, res.Error, "assertion failed")
		case "skipped":
			assert.Equal(t, "flaky upstream", res.SkipReason)
		}
	}
	assert.Equal(t, map[string]int{"passed": 1, "failed": 1, "skipped": 1}, byStatus)
}

func TestServer_ScenarioRunMissingDir(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleRun(context.Background(), callRequest("scenario_run", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Run failed")
}

func TestServer_ScenarioValidate(t *testing.T) {
	dir := scenarioDir(t)
	s := newTestServer(t)

	result, err := s.handleValidate(context.Background(), callRequest("scenario_validate", map[string]any{
		"scenarios_dir": dir,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var doc struct {
		Valid     bool `json:"valid"`
		Scenarios int  `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &doc))
	assert.True(t, doc.Valid)
	assert.Equal(t, 3, doc.Scenarios)
}

func TestServer_ScenarioValidateBadFile(t *testing.T) {
	dir := scenarioDir(t)
	writeScenario(t, dir, "broken.yaml", "subject: no steps\n")
	s := newTestServer(t)

	result, err := s.handleValidate(context.Background(), callRequest("scenario_validate", map[string]any{
		"scenarios_dir": dir,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "broken.yaml")
	assert.Contains(t, textOf(t, result), "at least one step is required")
}

func TestServer_ToolDefinitions(t *testing.T) {
	s := newTestServer(t)

	names := make([]string, 0, 3)
	for _, tool := range s.tools() {
		names = append(names, tool.Tool.Name)
		assert.NotEmpty(t, tool.Tool.Description, "tool %s needs a description", tool.Tool.Name)
		assert.NotNil(t, tool.Handler)
	}
	assert.Equal(t, []string{"scenario_list", "scenario_run", "scenario_validate"}, names)
}
