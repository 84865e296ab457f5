package sdk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/nais/build/src/config"
)

const defaultGoBuilderImage = "library/golang:1-alpine"

// Golang builds Go module projects. It is detected by the presence of a
// go.mod file in the source tree root, and builds one binary per
// subdirectory of ./cmd.
type Golang struct {
	root         string
	builderImage string
	runtimeImage string
}

// NewGolang probes a source tree for a Go module. It returns nil when the
// tree has no go.mod.
func NewGolang(root string, images config.SDKImages) (*Golang, error) {
	ok, err := statFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return nil, fmt.Errorf("probing for go.mod: %w", err)
	}
	if !ok {
		return nil, nil
	}

	g := &Golang{
		root:         root,
		builderImage: images.BuildDockerImage,
		runtimeImage: images.RuntimeDockerImage,
	}
	if g.builderImage == "" {
		g.builderImage = builderImageFromGoMod(filepath.Join(root, "go.mod"))
	}
	return g, nil
}

func (g *Golang) Name() string         { return "go" }
func (g *Golang) Root() string         { return g.root }
func (g *Golang) BuilderImage() string { return g.builderImage }
func (g *Golang) RuntimeImage() string { return g.runtimeImage }

// BuildTargets returns one target per subdirectory of ./cmd, in lexical
// order. Zero targets is valid and produces an image without a default
// entrypoint.
func (g *Golang) BuildTargets() ([]string, error) {
	dir := filepath.Join(g.root, "cmd")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("detect build targets: %w", err)
	}

	// os.ReadDir sorts entries by filename, so target order is stable
	// across runs on an unchanged filesystem.
	targets := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Name() == "" {
			return nil, fmt.Errorf("detect build targets: %w", ErrEmptyTargetName)
		}
		targets = append(targets, entry.Name())
	}
	return targets, nil
}

// Dockerfile generates a two-stage build: compile every ./cmd target in the
// builder image, copy the binaries into the runtime image.
func (g *Golang) Dockerfile() (string, error) {
	targets, err := g.BuildTargets()
	if err != nil {
		return "", err
	}

	buildCommands := make([]string, 0, len(targets))
	copyCommands := make([]string, 0, len(targets))
	for _, target := range targets {
		buildCommands = append(buildCommands, fmt.Sprintf("RUN go build -a -installsuffix cgo -o /build/%s ./cmd/%s", target, target))
		copyCommands = append(copyCommands, fmt.Sprintf("COPY --from=builder /build/%s /app/%s", target, target))
	}

	defaultTarget := "# Default CMD omitted due to zero or multiple build targets"
	if len(targets) == 1 {
		defaultTarget = fmt.Sprintf(`CMD ["/app/%s"]`, targets[0])
	}

	return fmt.Sprintf(`# Dockerfile generated by nais build

#
# Builder image
#
FROM %s AS builder
ENV GOOS=linux
ENV CGO_ENABLED=0
WORKDIR /src

# Copy go.mod and go.sum into the source directory before the rest of
# the source code, so that the dependency download layer stays cached
# across source changes.
COPY go.* /src/
RUN go mod download
COPY . /src

# Test all packages
RUN go test ./...

# Build all binaries found in ./cmd/*
%s

#
# Runtime image
#
FROM %s
WORKDIR /app
%s
%s
`,
		g.builderImage,
		strings.Join(buildCommands, "\n"),
		g.runtimeImage,
		strings.Join(copyCommands, "\n"),
		defaultTarget,
	), nil
}

// builderImageFromGoMod pins the builder image to the major.minor of the
// module's go directive. Unreadable or unparseable directives fall back to
// the floating default tag.
func builderImageFromGoMod(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultGoBuilderImage
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "go ") {
			continue
		}
		v, err := semver.NewVersion(strings.TrimSpace(strings.TrimPrefix(line, "go ")))
		if err != nil {
			break
		}
		return fmt.Sprintf("library/golang:%d.%d-alpine", v.Major(), v.Minor())
	}
	return defaultGoBuilderImage
}
