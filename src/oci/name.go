// Package oci formats fully qualified container image references.
package oci

import (
	"fmt"

	"github.com/nais/build/src/config"
)

// Reference holds the parts of an image name before formatting.
type Reference struct {
	Registry string
	Team     string
	App      string
	Tag      string
}

// Format renders a Reference according to the naming convention of the
// active release target. It is a pure function of its inputs.
//
// GAR:  {registry}/{team}/{app}:{tag}
// GHCR: {registry}/{app}:{tag}
func Format(target config.ReleaseType, ref Reference) (string, error) {
	if ref.Registry == "" || ref.App == "" || ref.Tag == "" {
		return "", fmt.Errorf("image reference incomplete: registry=%q app=%q tag=%q", ref.Registry, ref.App, ref.Tag)
	}

	switch target {
	case config.ReleaseGHCR:
		return fmt.Sprintf("%s/%s:%s", ref.Registry, ref.App, ref.Tag), nil
	case config.ReleaseGAR:
		if ref.Team == "" {
			return "", fmt.Errorf("image reference incomplete: team is required for %s releases", target)
		}
		return fmt.Sprintf("%s/%s/%s:%s", ref.Registry, ref.Team, ref.App, ref.Tag), nil
	default:
		return "", fmt.Errorf("unknown release type %q", target)
	}
}
