package core

import "context"

// StepFunc is the body of a step. Bodies that suspend block inside the
// call; ctx carries cancellation. The scope is the scenario's shared
// key/value state.
type StepFunc func(ctx context.Context, scope *Scope) error

// VirtualStep is an immutable step descriptor: a name and a callable
// body.
type VirtualStep struct {
	name string
	body StepFunc
}

// NewVirtualStep creates a step descriptor.
func NewVirtualStep(name string, body StepFunc) *VirtualStep {
	return &VirtualStep{name: name, body: body}
}

// Name returns the step name.
func (s *VirtualStep) Name() string { return s.name }

// Call invokes the step body.
func (s *VirtualStep) Call(ctx context.Context, scope *Scope) error {
	return s.body(ctx, scope)
}

// VirtualScenario is an immutable scenario descriptor owned by the
// discoverer. Identity is the ID; the path and namespace locate it for
// reporting.
type VirtualScenario struct {
	id         string
	path       string
	namespace  string
	subject    string
	steps      []*VirtualStep
	skipped    bool
	skipReason string
}

// ScenarioOption configures a VirtualScenario at construction.
type ScenarioOption func(*VirtualScenario)

// WithScenarioID overrides the default path-derived identity.
func WithScenarioID(id string) ScenarioOption {
	return func(v *VirtualScenario) { v.id = id }
}

// WithNamespace sets the grouping namespace (usually the directory of
// the scenario file relative to the scenarios root).
func WithNamespace(ns string) ScenarioOption {
	return func(v *VirtualScenario) { v.namespace = ns }
}

// WithSkip marks the scenario skipped with an optional reason.
func WithSkip(reason string) ScenarioOption {
	return func(v *VirtualScenario) {
		v.skipped = true
		v.skipReason = reason
	}
}

// NewVirtualScenario creates a scenario descriptor. The default ID is
// the path.
func NewVirtualScenario(path, subject string, steps []*VirtualStep, opts ...ScenarioOption) *VirtualScenario {
	v := &VirtualScenario{
		id:      path,
		path:    path,
		subject: subject,
		steps:   steps,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ID returns the unique identity of the scenario.
func (v *VirtualScenario) ID() string { return v.id }

// Path returns the source location of the scenario.
func (v *VirtualScenario) Path() string { return v.path }

// Namespace returns the grouping namespace, possibly empty.
func (v *VirtualScenario) Namespace() string { return v.namespace }

// Subject returns the human-readable subject.
func (v *VirtualScenario) Subject() string { return v.subject }

// Steps returns the ordered step descriptors.
func (v *VirtualScenario) Steps() []*VirtualStep { return v.steps }

// Skipped reports whether the scenario is marked skipped.
func (v *VirtualScenario) Skipped() bool { return v.skipped }

// SkipReason returns the skip reason, empty when not skipped or not
// given.
func (v *VirtualScenario) SkipReason() string { return v.skipReason }
