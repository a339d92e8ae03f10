package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved configuration after all layers merged.
type Config struct {
	ScenariosDir    string
	Reporter        string
	Verbosity       int
	TbShowInternals bool
	Repeats         int
	NoColor         bool
	LogLevel        string
	HTTP            HTTPConfig
	Kube            KubeConfig
	MCP             MCPConfig
}

// HTTPConfig configures the http action.
type HTTPConfig struct {
	Timeout time.Duration
}

// KubeConfig configures the kube_ready action.
type KubeConfig struct {
	Context   string
	Namespace string
}

// MCPConfig configures the MCP server command.
type MCPConfig struct {
	ServerName string
}

// fileConfig is one YAML layer. Pointer fields distinguish an absent
// key from an explicit zero, so a later layer can turn settings off.
type fileConfig struct {
	ScenariosDir    string `yaml:"scenariosDir"`
	Reporter        string `yaml:"reporter"`
	Verbosity       *int   `yaml:"verbosity"`
	TbShowInternals *bool  `yaml:"tbShowInternals"`
	Repeats         *int   `yaml:"repeats"`
	NoColor         *bool  `yaml:"noColor"`
	LogLevel        string `yaml:"logLevel"`
	HTTP            struct {
		Timeout *Duration `yaml:"timeout"`
	} `yaml:"http"`
	Kube struct {
		Context   string `yaml:"context"`
		Namespace string `yaml:"namespace"`
	} `yaml:"kube"`
	MCP struct {
		ServerName string `yaml:"serverName"`
	} `yaml:"mcp"`
}

// Duration wraps time.Duration so YAML can carry values like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}
