// Package actions provides the step action registry and the builtin
// actions scenario steps are made of.
//
// An action is a named, reusable step behavior (run a command, call an
// HTTP endpoint, assert over the scope). Scenario files reference
// actions by name; the loader resolves them here and hands each step's
// arguments to Run after scope interpolation.
package actions
