package sdk

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nais/build/src/config"
)

// Gradle builds JVM projects through the Gradle wrapper. It is detected by
// the presence of a gradlew script in the source tree root.
type Gradle struct {
	root         string
	builderImage string
	runtimeImage string
}

// NewGradle probes a source tree for a Gradle wrapper. It returns nil when
// the tree has no gradlew.
func NewGradle(root string, images config.SDKImages) (*Gradle, error) {
	ok, err := statFile(filepath.Join(root, "gradlew"))
	if err != nil {
		return nil, fmt.Errorf("probing for gradlew: %w", err)
	}
	if !ok {
		return nil, nil
	}

	return &Gradle{
		root:         root,
		builderImage: images.BuildDockerImage,
		runtimeImage: images.RuntimeDockerImage,
	}, nil
}

func (g *Gradle) Name() string         { return "gradle" }
func (g *Gradle) Root() string         { return g.root }
func (g *Gradle) BuilderImage() string { return g.builderImage }
func (g *Gradle) RuntimeImage() string { return g.runtimeImage }

// BuildTargets returns the fixed Gradle task sequence. Targets are build
// phases here, not output binaries, and are not derived from the
// filesystem.
func (g *Gradle) BuildTargets() ([]string, error) {
	return []string{"test", "build"}, nil
}

func (g *Gradle) Dockerfile() (string, error) {
	targets, err := g.BuildTargets()
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

# Run the build phases through the Gradle wrapper
RUN ./gradlew --no-daemon %s

#
# Runtime image
#
FROM %s
WORKDIR /app
COPY --from=builder /src/build/libs/*.jar /app/app.jar
CMD ["java", "-jar", "/app/app.jar"]
`,
		g.builderImage,
		strings.Join(targets, " "),
		g.runtimeImage,
	), nil
}
