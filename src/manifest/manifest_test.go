package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
apiVersion: nais.io/v1alpha1
kind: Application
metadata:
  name: myapplication
  namespace: myteam
spec:
  image: "{{image}}"
`

func TestDetect(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".nais"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".nais", "dev-gcp.yaml"), []byte(sampleManifest), 0o644))

	path, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".nais", "dev-gcp.yaml"), path)
}

func TestDetectPrefersProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".nais"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nais.yaml"), []byte(sampleManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".nais", "nais.yaml"), []byte(sampleManifest), 0o644))

	path, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "nais.yaml"), path)
}

func TestDetectCandidatePriority(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "nais.yaml"), []byte(sampleManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".nais.yaml"), []byte(sampleManifest), 0o644))

	path, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".nais.yaml"), path)
}

func TestDetectNotFound(t *testing.T) {
	_, err := Detect(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, "myapplication", m.App)
	assert.Equal(t, "myteam", m.Team)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("metadata: ["))
	assert.Error(t, err)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nais.yaml"))
	assert.Error(t, err)
}
