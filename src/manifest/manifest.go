// Package manifest locates and parses the application's nais.yaml
// deployment manifest.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrNotFound means no manifest candidate exists in the source tree.
var ErrNotFound = errors.New("no nais.yaml found in project")

// candidates are the recognized manifest filenames, in priority order.
var candidates = []string{
	".nais.yaml",
	".nais.yml",
	".naiserator.yaml",
	".naiserator.yml",
	"dev-fss.yaml",
	"dev-fss.yml",
	"dev-gcp.yaml",
	"dev-gcp.yml",
	"dev.yml",
	"nais.yaml",
	"nais.yml",
	"naiserator.yaml",
	"naiserator.yml",
	"prod-fss.yaml",
	"prod-fss.yml",
	"prod-gcp.yaml",
	"prod-gcp.yml",
	"prod.yml",
}

// Manifest is the subset of the Kubernetes resource this tool needs.
type Manifest struct {
	// App is metadata.name.
	App string
	// Team is metadata.namespace.
	Team string
}

type kubernetesResource struct {
	Metadata struct {
		Name      string `yaml:"name"`
		Namespace string `yaml:"namespace"`
	} `yaml:"metadata"`
}

// Detect returns the path of the first manifest candidate found in the
// project root or its .nais directory.
func Detect(root string) (string, error) {
	for _, dir := range []string{root, filepath.Join(root, ".nais")} {
		for _, name := range candidates {
			path := filepath.Join(dir, name)
			info, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return "", fmt.Errorf("scan file system: %w", err)
			}
			if !info.Mode().IsRegular() {
				continue
			}
			log.Debug().Str("path", path).Msg("nais.yaml candidate found")
			return path, nil
		}
	}
	return "", ErrNotFound
}

// Parse reads team and app from a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var resource kubernetesResource
	if err := yaml.Unmarshal(data, &resource); err != nil {
		return nil, fmt.Errorf("deserialize: %w", err)
	}
	return &Manifest{
		App:  resource.Metadata.Name,
		Team: resource.Metadata.Namespace,
	}, nil
}

// ParseFile reads team and app from the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}
