// Package loader discovers YAML scenario files and turns them into
// executable scenario descriptors.
//
// A scenario file holds one or more YAML documents:
//
//	subject: charges a saved card
//	steps:
//	  - name: open checkout
//	    action: http
//	    with:
//	      url: http://localhost:8080/checkout
//
// Actions are resolved against the registry at load time; argument
// interpolation against the scenario scope happens when the step runs.
// The namespace of a scenario is the directory of its file relative to
// the discovery root.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"gopkg.in/yaml.v3"

	"scenarist/internal/actions"
	"scenarist/pkg/core"
	"scenarist/pkg/logging"
)

type scenarioDoc struct {
	Subject    string    `yaml:"subject"`
	Skip       bool      `yaml:"skip"`
	SkipReason string    `yaml:"skip_reason"`
	SkipIf     string    `yaml:"skip_if"`
	Steps      []stepDoc `yaml:"steps"`
}

type stepDoc struct {
	Name   string         `yaml:"name"`
	Action string         `yaml:"action"`
	With   map[string]any `yaml:"with"`
}

// Loader walks a directory tree for *.yaml and *.yml files and parses
// them into scenarios. It implements core.Discoverer.
type Loader struct {
	registry *actions.Registry
}

var _ core.Discoverer = (*Loader)(nil)

// New creates a loader resolving step actions against registry.
func New(registry *actions.Registry) *Loader {
	return &Loader{registry: registry}
}

// Discover parses every scenario file under root, in lexical path
// order. Documents within one file keep their file order.
func (l *Loader) Discover(ctx context.Context, root string) ([]*core.VirtualScenario, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading scenarios from %s: %w", root, err)
	}
	sort.Strings(paths)

	skipEnv := skipEnvironment()
	var scenarios []*core.VirtualScenario
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := l.loadFile(path, root, skipEnv)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, parsed...)
	}

	logging.Debug("loader", "Discovered %d scenarios under %s", len(scenarios), root)
	return scenarios, nil
}

func (l *Loader) loadFile(path, root string, skipEnv map[string]any) ([]*core.VirtualScenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	namespace := filepath.ToSlash(filepath.Dir(rel))
	if namespace == "." {
		namespace = ""
	}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var scenarios []*core.VirtualScenario
	for docIndex := 0; ; docIndex++ {
		var doc scenarioDoc
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: document %d: %w", path, docIndex, err)
		}
		scenario, err := l.buildScenario(path, rel, namespace, docIndex, doc, skipEnv)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

func (l *Loader) buildScenario(path, rel, namespace string, docIndex int, doc scenarioDoc, skipEnv map[string]any) (*core.VirtualScenario, error) {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%s: document %d: %s", path, docIndex, fmt.Sprintf(format, args...))
	}

	if doc.Subject == "" {
		return nil, fail("subject is required")
	}

	skipped := doc.Skip
	skipReason := doc.SkipReason
	if doc.SkipReason != "" && !doc.Skip && doc.SkipIf == "" {
		return nil, fail("skip_reason requires skip or skip_if")
	}
	if !skipped && doc.SkipIf != "" {
		triggered, err := evalSkipIf(doc.SkipIf, skipEnv)
		if err != nil {
			return nil, fail("skip_if: %v", err)
		}
		if triggered {
			skipped = true
			if skipReason == "" {
				skipReason = doc.SkipIf
			}
		}
	}

	if !skipped && len(doc.Steps) == 0 {
		return nil, fail("at least one step is required")
	}

	steps := make([]*core.VirtualStep, 0, len(doc.Steps))
	for stepIndex, step := range doc.Steps {
		if step.Name == "" {
			return nil, fail("step %d: name is required", stepIndex)
		}
		if step.Action == "" {
			return nil, fail("step %d: action is required", stepIndex)
		}
		action, ok := l.registry.Lookup(step.Action)
		if !ok {
			return nil, fail("step %d: unknown action %q", stepIndex, step.Action)
		}

		args := step.With
		steps = append(steps, core.NewVirtualStep(step.Name, func(ctx context.Context, scope *core.Scope) error {
			resolved, err := actions.Interpolate(args, scope)
			if err != nil {
				return fmt.Errorf("resolving arguments: %w", err)
			}
			return action.Run(ctx, resolved, scope)
		}))
	}

	id := filepath.ToSlash(rel)
	if docIndex > 0 {
		id = fmt.Sprintf("%s#%d", id, docIndex)
	}
	opts := []core.ScenarioOption{core.WithScenarioID(id)}
	if namespace != "" {
		opts = append(opts, core.WithNamespace(namespace))
	}
	if skipped {
		opts = append(opts, core.WithSkip(skipReason))
	}
	return core.NewVirtualScenario(filepath.ToSlash(rel), doc.Subject, steps, opts...), nil
}

func evalSkipIf(condition string, skipEnv map[string]any) (bool, error) {
	program, err := expr.Compile(condition, expr.Env(skipEnv), expr.AsBool())
	if err != nil {
		return false, err
	}
	result, err := expr.Run(program, skipEnv)
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func skipEnvironment() map[string]any {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return map[string]any{"env": env}
}
