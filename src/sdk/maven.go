package sdk

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nais/build/src/config"
)

// Maven builds JVM projects, including multi-module reactors, from a
// pom.xml in the source tree root.
type Maven struct {
	root         string
	builderImage string
	runtimeImage string
}

// NewMaven probes a source tree for a Maven project. It returns nil when
// the tree has no pom.xml.
func NewMaven(root string, images config.SDKImages) (*Maven, error) {
	ok, err := statFile(filepath.Join(root, "pom.xml"))
	if err != nil {
		return nil, fmt.Errorf("probing for pom.xml: %w", err)
	}
	if !ok {
		return nil, nil
	}

	return &Maven{
		root:         root,
		builderImage: images.BuildDockerImage,
		runtimeImage: images.RuntimeDockerImage,
	}, nil
}

func (m *Maven) Name() string         { return "maven" }
func (m *Maven) Root() string         { return m.root }
func (m *Maven) BuilderImage() string { return m.builderImage }
func (m *Maven) RuntimeImage() string { return m.runtimeImage }

// BuildTargets returns the fixed Maven phase sequence.
func (m *Maven) BuildTargets() ([]string, error) {
	return []string{"test", "package"}, nil
}

func (m *Maven) Dockerfile() (string, error) {
	targets, err := m.BuildTargets()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`# Dockerfile generated by nais build

#
# Builder image
#
FROM %s AS builder
WORKDIR /src
COPY . /src

# Run the build phases across all modules of the reactor
RUN mvn --batch-mode %s

#
# Runtime image
#
FROM %s
WORKDIR /app
COPY --from=builder /src/target/*.jar /app/app.jar
CMD ["java", "-jar", "/app/app.jar"]
`,
		m.builderImage,
		strings.Join(targets, " "),
		m.runtimeImage,
	), nil
}
