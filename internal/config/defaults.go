package config

import "time"

// Default returns the built-in configuration scenarist runs with when
// no config file exists.
func Default() Config {
	return Config{
		ScenariosDir: "scenarios",
		Reporter:     "console",
		Repeats:      1,
		LogLevel:     "info",
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Kube: KubeConfig{
			Namespace: "default",
		},
		MCP: MCPConfig{
			ServerName: "scenarist",
		},
	}
}
