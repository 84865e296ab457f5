// Package pipeline drives the build→release→deploy lifecycle as a strictly
// ordered sequence of stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/nais/build/src/auth"
	"github.com/nais/build/src/deploy"
	"github.com/nais/build/src/sdk"
)

// Stage is one phase of the lifecycle. Requesting a stage runs every stage
// before it, except that an operator-supplied image reference skips
// Dockerfile and Build.
type Stage int

const (
	StageDockerfile Stage = iota
	StageBuild
	StageRelease
	StageDeploy
)

func (s Stage) String() string {
	switch s {
	case StageDockerfile:
		return "dockerfile"
	case StageBuild:
		return "build"
	case StageRelease:
		return "release"
	case StageDeploy:
		return "deploy"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Engine is the subset of the container engine the pipeline drives.
type Engine interface {
	Build(ctx context.Context, dockerfile, contextDir, tag string) error
	Login(ctx context.Context, registry, username, password string) error
	Logout(ctx context.Context, registry string) error
	Push(ctx context.Context, image string) error
}

// TokenSource produces a registry bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Deployer invokes the external deploy collaborator.
type Deployer interface {
	Deploy(ctx context.Context, cfg deploy.Config) error
}

// TODO: GHCR wants the GitHub actor as username, not oauth2accesstoken.
const registryUsername = "oauth2accesstoken"

// Pipeline holds everything resolved before the first stage executes. A
// Pipeline runs once; nothing is retried and any stage failure aborts all
// later stages.
type Pipeline struct {
	// SDK is the detected build SDK. Nil when Overridden is set, in which
	// case no stage needs it.
	SDK       sdk.SDK
	SourceDir string

	// Image is the fully formatted image reference. When Overridden, the
	// operator supplied it and it is trusted verbatim.
	Image      string
	Overridden bool

	// Registry is the host to authenticate against during release.
	Registry string

	// Out receives the generated Dockerfile for the dockerfile stage.
	Out io.Writer

	Engine       Engine
	Tokens       TokenSource
	Deployer     Deployer
	DeployConfig deploy.Config
}

// Run executes every stage up to and including the requested one.
func (p *Pipeline) Run(ctx context.Context, stage Stage) error {
	if stage == StageDockerfile {
		return p.dockerfile()
	}

	if stage >= StageBuild && !p.Overridden {
		if err := p.build(ctx); err != nil {
			return err
		}
	}
	if stage >= StageRelease {
		if err := p.release(ctx); err != nil {
			return err
		}
	}
	if stage >= StageDeploy {
		if err := p.deploy(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) dockerfile() error {
	content, err := p.SDK.Dockerfile()
	if err != nil {
		return fmt.Errorf("dockerfile generation failed: %w", err)
	}
	_, err = fmt.Fprintln(p.Out, content)
	return err
}

// build writes the generated Dockerfile to a transient file and hands it to
// the container engine. The file is removed on every exit path.
func (p *Pipeline) build(ctx context.Context) error {
	content, err := p.SDK.Dockerfile()
	if err != nil {
		return fmt.Errorf("dockerfile generation failed: %w", err)
	}

	tmp, err := os.CreateTemp("", "nb-dockerfile-*")
	if err != nil {
		return fmt.Errorf("creating transient dockerfile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing transient dockerfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing transient dockerfile: %w", err)
	}

	return p.Engine.Build(ctx, tmp.Name(), p.SourceDir, p.Image)
}

// release authenticates to the registry, pushes the image, and always
// de-authenticates afterwards, even when the push failed. The first error
// wins; a logout failure never masks a push failure.
func (p *Pipeline) release(ctx context.Context) error {
	token, err := p.Tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquiring registry token: %w", err)
	}

	if err := p.Engine.Login(ctx, p.Registry, registryUsername, auth.NormalizeToken(token)); err != nil {
		return err
	}

	pushErr := p.Engine.Push(ctx, p.Image)
	logoutErr := p.Engine.Logout(ctx, p.Registry)

	if pushErr != nil {
		if logoutErr != nil {
			log.Warn().Err(logoutErr).Msg("docker logout failed after failed push")
		}
		return pushErr
	}
	return logoutErr
}

// deploy validates configuration completeness before the external client is
// invoked; a partial configuration never reaches the collaborator.
func (p *Pipeline) deploy(ctx context.Context) error {
	if err := p.DeployConfig.Validate(); err != nil {
		return err
	}
	return p.Deployer.Deploy(ctx, p.DeployConfig)
}
