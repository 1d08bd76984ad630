// Package config loads exporter settings from defaults, an optional
// config file and TREEPORT_* environment variables, in that precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the run settings that are not per-invocation flags.
type Config struct {
	ProjectName string
	ScriptsOnly bool
	LogLevel    string
	LogFormat   string

	// RespectServices adds service classes to the embedded allow-list.
	RespectServices []string
	// SkipServices removes service classes from the embedded allow-list.
	SkipServices []string
}

// Load reads configuration once at startup. path may be empty, in which
// case only defaults and environment apply; a named file that cannot be
// read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("project_name", "project")
	v.SetDefault("scripts_only", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("TREEPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		ProjectName:     v.GetString("project_name"),
		ScriptsOnly:     v.GetBool("scripts_only"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		RespectServices: v.GetStringSlice("respect_services"),
		SkipServices:    v.GetStringSlice("skip_services"),
	}

	if cfg.ProjectName == "" {
		return nil, fmt.Errorf("project_name must not be empty")
	}
	return cfg, nil
}
