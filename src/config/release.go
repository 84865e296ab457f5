package config

import "fmt"

// ReleaseType selects the destination registry convention.
type ReleaseType string

const (
	// ReleaseGAR releases to Google Artifact Registry.
	ReleaseGAR ReleaseType = "gar"
	// ReleaseGHCR releases to GitHub Container Registry.
	ReleaseGHCR ReleaseType = "ghcr"
)

// UnmarshalText validates the release type while parsing nb.toml.
func (t *ReleaseType) UnmarshalText(text []byte) error {
	switch ReleaseType(text) {
	case ReleaseGAR, ReleaseGHCR:
		*t = ReleaseType(text)
		return nil
	}
	return fmt.Errorf("unknown release type %q (expected %q or %q)", text, ReleaseGAR, ReleaseGHCR)
}

// ReleaseConfig holds release-target parameters. Exactly one target is
// active per run, selected by Type.
type ReleaseConfig struct {
	Type ReleaseType    `toml:"type"`
	GAR  RegistryConfig `toml:"gar"`
	GHCR RegistryConfig `toml:"ghcr"`
}

// RegistryConfig holds per-target registry parameters.
type RegistryConfig struct {
	Registry string `toml:"registry"`
}

// Registry returns the registry host of the active release target.
func (r ReleaseConfig) Registry() string {
	switch r.Type {
	case ReleaseGHCR:
		return r.GHCR.Registry
	default:
		return r.GAR.Registry
	}
}

// DefaultReleaseConfig returns the built-in release configuration.
func DefaultReleaseConfig() ReleaseConfig {
	return ReleaseConfig{
		Type: ReleaseGAR,
		GAR:  RegistryConfig{Registry: "europe-north1-docker.pkg.dev"},
		GHCR: RegistryConfig{Registry: "ghcr.io"},
	}
}
