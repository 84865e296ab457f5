package sdk

import (
	"github.com/rs/zerolog/log"

	"github.com/nais/build/src/config"
)

// probe tries to construct one SDK variant against a source tree.
// It returns nil (and no error) when the variant does not apply.
type probe struct {
	name string
	init func(root string, cfg *config.Config) (SDK, error)
}

// probes is the fixed priority order for SDK detection. The first variant
// whose marker file is present wins; later variants are never probed.
var probes = []probe{
	{"go", func(root string, cfg *config.Config) (SDK, error) {
		sdk, err := NewGolang(root, cfg.SDK.Go)
		if sdk == nil {
			return nil, err
		}
		return sdk, err
	}},
	{"gradle", func(root string, cfg *config.Config) (SDK, error) {
		sdk, err := NewGradle(root, cfg.SDK.Gradle)
		if sdk == nil {
			return nil, err
		}
		return sdk, err
	}},
	{"maven", func(root string, cfg *config.Config) (SDK, error) {
		sdk, err := NewMaven(root, cfg.SDK.Maven)
		if sdk == nil {
			return nil, err
		}
		return sdk, err
	}},
}

// Detect returns the first SDK that recognizes the source tree.
//
// Probing is read-only. A probe that fails for reasons other than a missing
// marker aborts detection; it is not treated as "try the next variant".
func Detect(root string, cfg *config.Config) (SDK, error) {
	for _, p := range probes {
		sdk, err := p.init(root, cfg)
		if err != nil {
			return nil, err
		}
		if sdk != nil {
			log.Debug().Str("sdk", p.name).Str("root", root).Msg("SDK detected")
			return sdk, nil
		}
	}
	return nil, ErrSDKNotDetected
}
