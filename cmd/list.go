package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"scenarist/internal/config"
	"scenarist/internal/harness"
)

var listScenariosDir string

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the discovered scenarios without running them",
		Long: `List discovers YAML scenario files under the scenarios directory and
prints them as a table, one row per scenario.`,
		RunE: runList,
	}
	cmd.Flags().StringVar(&listScenariosDir, "scenarios-dir", "", "Directory scanned for scenario files (defaults to the configured one)")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := frameworkForInspection(listScenariosDir)
	if err != nil {
		return err
	}

	scenarios, err := f.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), text.FgYellow.Sprint("No scenarios found"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)

	headers := make([]interface{}, 0, 4)
	for _, col := range []string{"namespace", "subject", "steps", "status"} {
		headers = append(headers, text.FgHiCyan.Sprint(strings.ToUpper(col)))
	}
	t.AppendHeader(headers)

	for _, sc := range scenarios {
		namespace := sc.Namespace()
		if namespace == "" {
			namespace = "*"
		}
		status := "ready"
		if sc.Skipped() {
			status = "skipped"
			if reason := sc.SkipReason(); reason != "" {
				status = fmt.Sprintf("skipped (%s)", reason)
			}
		}
		t.AppendRow([]interface{}{namespace, sc.Subject(), len(sc.Steps()), status})
	}
	t.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d\n", len(scenarios))
	return nil
}

// frameworkForInspection builds a framework for commands that only read
// scenario files (list, validate), bypassing the run pipeline's flag parsing.
func frameworkForInspection(scenariosDir string) (*harness.Framework, error) {
	settings, configPath, err := config.Load()
	if err != nil {
		return nil, err
	}
	initLogging(settings)
	if scenariosDir != "" {
		settings.ScenariosDir = scenariosDir
	}

	cfg := harness.DefaultFrameworkConfig()
	cfg.Settings = settings
	cfg.ConfigPath = configPath
	return harness.New(cfg)
}
