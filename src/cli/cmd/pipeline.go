package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nais/build/src/auth"
	"github.com/nais/build/src/deploy"
	"github.com/nais/build/src/docker"
	"github.com/nais/build/src/git"
	"github.com/nais/build/src/manifest"
	"github.com/nais/build/src/oci"
	"github.com/nais/build/src/pipeline"
	"github.com/nais/build/src/sdk"
)

// newPipeline resolves every input the requested stage needs, before any
// stage executes: the deployment manifest, git metadata, the formatted
// image reference, and the SDK.
func newPipeline(stage pipeline.Stage) (*pipeline.Pipeline, error) {
	p := &pipeline.Pipeline{
		SourceDir: sourceDir,
		Out:       os.Stdout,
		Engine:    docker.New(),
		Tokens:    auth.NewProvider(),
		Deployer:  deploy.NewClient(),
		Registry:  cfg.Release.Registry(),
	}

	manifestPath, err := manifest.Detect(sourceDir)
	if err != nil && !errors.Is(err, manifest.ErrNotFound) {
		return nil, err
	}

	// Deploy always needs git metadata; the other stages only need it to
	// derive a tag, which an operator-supplied reference replaces.
	var gitInfo *git.Info
	if imageOverride == "" || stage >= pipeline.StageDeploy {
		gitInfo, err = git.Examine(sourceDir)
		if err != nil {
			return nil, fmt.Errorf("docker tag could not be generated: %w", err)
		}
	}

	if imageOverride != "" {
		// Trusted verbatim; the image is never checked against the engine.
		p.Image = imageOverride
		p.Overridden = true
	} else {
		team, app, err := projectIdentity(manifestPath, gitInfo)
		if err != nil {
			return nil, err
		}
		p.Image, err = oci.Format(cfg.Release.Type, oci.Reference{
			Registry: cfg.Release.Registry(),
			Team:     team,
			App:      app,
			Tag:      git.Tag(gitInfo, time.Now()),
		})
		if err != nil {
			return nil, err
		}
	}

	// The dockerfile stage always needs an SDK; build does too unless the
	// operator supplied a prebuilt image.
	if stage == pipeline.StageDockerfile || !p.Overridden {
		p.SDK, err = sdk.Detect(sourceDir, cfg)
		if err != nil {
			return nil, err
		}
	}

	if stage >= pipeline.StageDeploy {
		dcfg := deploy.FromEnv()
		dcfg.Owner = gitInfo.Owner
		dcfg.Ref = gitInfo.SHA
		if gitInfo.Owner != "" && gitInfo.Repository != "" {
			dcfg.Repository = gitInfo.Owner + "/" + gitInfo.Repository
		}
		if manifestPath != "" {
			dcfg.Resources = []string{manifestPath}
		}
		dcfg.Vars = []string{"image=" + p.Image}
		p.DeployConfig = dcfg
	}

	log.Debug().Str("image", p.Image).Msg("image reference resolved")
	return p, nil
}

// projectIdentity resolves the team and application name, preferring the
// deployment manifest and falling back to nb.toml and the origin remote.
func projectIdentity(manifestPath string, gitInfo *git.Info) (string, string, error) {
	if manifestPath != "" {
		m, err := manifest.ParseFile(manifestPath)
		if err != nil {
			return "", "", err
		}
		return m.Team, m.App, nil
	}
	return cfg.Team, gitInfo.Repository, nil
}
