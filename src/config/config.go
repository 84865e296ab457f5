// Package config parses the nb.toml build configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const defaultConfigFile = "nb.toml"

// Config is the top-level nb.toml configuration.
type Config struct {
	Description string        `toml:"description"`
	Team        string        `toml:"team"`
	SDK         SDKConfig     `toml:"sdk"`
	Release     ReleaseConfig `toml:"release"`
}

// SDKConfig holds per-SDK image overrides.
type SDKConfig struct {
	Go     SDKImages `toml:"go"`
	Gradle SDKImages `toml:"gradle"`
	Maven  SDKImages `toml:"maven"`
}

// SDKImages names the builder and runtime images for one SDK.
// Empty fields fall back to the SDK's built-in defaults.
type SDKImages struct {
	BuildDockerImage   string `toml:"build_docker_image"`
	RuntimeDockerImage string `toml:"runtime_docker_image"`
}

// Load reads configuration from a TOML file.
//
// An explicitly given path must exist and parse. If path is empty, the
// default file is used when present; otherwise built-in defaults apply.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("configuration file syntax error: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		SDK: SDKConfig{
			Go: SDKImages{
				// Empty builder image means "pin to the go directive in go.mod".
				RuntimeDockerImage: "gcr.io/distroless/static-debian12:nonroot",
			},
			Gradle: SDKImages{
				BuildDockerImage:   "library/eclipse-temurin:21-jdk",
				RuntimeDockerImage: "library/eclipse-temurin:21-jre-alpine",
			},
			Maven: SDKImages{
				BuildDockerImage:   "library/eclipse-temurin:21-jdk",
				RuntimeDockerImage: "library/eclipse-temurin:21-jre-alpine",
			},
		},
		Release: DefaultReleaseConfig(),
	}
}
