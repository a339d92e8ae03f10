// Package config provides layered configuration for scenarist.
//
// Configuration is loaded and merged in the following order, with later
// sources overriding earlier ones field by field:
//
//  1. Built-in defaults
//  2. User configuration (~/.config/scenarist/config.yaml)
//  3. Project configuration (./.scenarist/config.yaml)
//
// The project file is meant to be committed alongside the scenarios it
// configures; the user file holds personal preferences.
//
// # File format
//
//	scenariosDir: scenarios
//	reporter: console            # console|silent|json|tui
//	verbosity: 0
//	tbShowInternals: false
//	repeats: 1
//	noColor: false
//	logLevel: info               # debug|info|warn|error
//	http:
//	  timeout: 30s
//	kube:
//	  context: ""
//	  namespace: default
//	mcp:
//	  serverName: scenarist
//
// Command-line flags override whatever the files resolved to.
package config
