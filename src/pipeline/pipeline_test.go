package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nais/build/src/deploy"
)

type fakeSDK struct {
	dockerfile string
	err        error
}

func (f *fakeSDK) Name() string                    { return "fake" }
func (f *fakeSDK) Root() string                    { return "." }
func (f *fakeSDK) BuilderImage() string            { return "builder" }
func (f *fakeSDK) RuntimeImage() string            { return "runtime" }
func (f *fakeSDK) BuildTargets() ([]string, error) { return nil, nil }
func (f *fakeSDK) Dockerfile() (string, error)     { return f.dockerfile, f.err }

type fakeEngine struct {
	ops            []string
	dockerfilePath string
	loginPassword  string
	loginRegistry  string
	pushedImage    string

	buildErr  error
	loginErr  error
	pushErr   error
	logoutErr error
}

func (f *fakeEngine) Build(_ context.Context, dockerfile, _, _ string) error {
	f.ops = append(f.ops, "build")
	f.dockerfilePath = dockerfile
	return f.buildErr
}

func (f *fakeEngine) Login(_ context.Context, registry, _, password string) error {
	f.ops = append(f.ops, "login")
	f.loginRegistry = registry
	f.loginPassword = password
	return f.loginErr
}

func (f *fakeEngine) Logout(_ context.Context, _ string) error {
	f.ops = append(f.ops, "logout")
	return f.logoutErr
}

func (f *fakeEngine) Push(_ context.Context, image string) error {
	f.ops = append(f.ops, "push")
	f.pushedImage = image
	return f.pushErr
}

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) { return string(s), nil }

type failingTokens struct{}

func (failingTokens) Token(context.Context) (string, error) {
	return "", errors.New("no credentials")
}

type fakeDeployer struct {
	calls []deploy.Config
	err   error
}

func (f *fakeDeployer) Deploy(_ context.Context, cfg deploy.Config) error {
	f.calls = append(f.calls, cfg)
	return f.err
}

func deployConfig() deploy.Config {
	return deploy.Config{
		APIKey:    "secret",
		Cluster:   "dev-gcp",
		Server:    "https://deploy.example.com",
		Resources: []string{"nais.yaml"},
		Wait:      true,
	}
}

func testPipeline(engine *fakeEngine, deployer *fakeDeployer) *Pipeline {
	return &Pipeline{
		SDK:          &fakeSDK{dockerfile: "FROM scratch\n"},
		SourceDir:    ".",
		Image:        "registry/team/app:1",
		Registry:     "registry",
		Out:          io.Discard,
		Engine:       engine,
		Tokens:       staticTokens("token"),
		Deployer:     deployer,
		DeployConfig: deployConfig(),
	}
}

func TestDockerfileStage(t *testing.T) {
	engine := &fakeEngine{}
	p := testPipeline(engine, &fakeDeployer{})

	require.NoError(t, p.Run(context.Background(), StageDockerfile))
	assert.Empty(t, engine.ops, "dockerfile stage never touches the engine")
}

func TestBuildStage(t *testing.T) {
	engine := &fakeEngine{}
	p := testPipeline(engine, &fakeDeployer{})

	require.NoError(t, p.Run(context.Background(), StageBuild))
	assert.Equal(t, []string{"build"}, engine.ops)

	// The transient dockerfile is gone after the run.
	_, err := os.Stat(engine.dockerfilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildStageCleansUpOnFailure(t *testing.T) {
	engine := &fakeEngine{buildErr: errors.New("boom")}
	p := testPipeline(engine, &fakeDeployer{})

	require.Error(t, p.Run(context.Background(), StageBuild))

	_, err := os.Stat(engine.dockerfilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestReleaseRunsFullSequence(t *testing.T) {
	engine := &fakeEngine{}
	p := testPipeline(engine, &fakeDeployer{})

	require.NoError(t, p.Run(context.Background(), StageRelease))
	assert.Equal(t, []string{"build", "login", "push", "logout"}, engine.ops)
	assert.Equal(t, "registry", engine.loginRegistry)
	assert.Equal(t, "registry/team/app:1", engine.pushedImage)
}

func TestReleaseWithImageOverrideSkipsBuild(t *testing.T) {
	engine := &fakeEngine{}
	p := testPipeline(engine, &fakeDeployer{})
	p.SDK = nil // override mode resolves no SDK at all
	p.Overridden = true
	p.Image = "prebuilt/app:sha"

	require.NoError(t, p.Run(context.Background(), StageRelease))
	assert.Equal(t, []string{"login", "push", "logout"}, engine.ops)
	assert.Equal(t, "prebuilt/app:sha", engine.pushedImage)
}

func TestReleaseTokenIsNormalized(t *testing.T) {
	engine := &fakeEngine{}
	p := testPipeline(engine, &fakeDeployer{})
	p.Tokens = staticTokens("Bearer ya29.secret")

	require.NoError(t, p.Run(context.Background(), StageRelease))
	assert.Equal(t, "ya29.secret", engine.loginPassword)
}

func TestReleaseTokenFailureAborts(t *testing.T) {
	engine := &fakeEngine{}
	p := testPipeline(engine, &fakeDeployer{})
	p.Tokens = failingTokens{}

	err := p.Run(context.Background(), StageRelease)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquiring registry token")
	assert.Equal(t, []string{"build"}, engine.ops, "no registry interaction without a token")
}

func TestReleaseLoginFailureSkipsPush(t *testing.T) {
	engine := &fakeEngine{loginErr: errors.New("denied")}
	p := testPipeline(engine, &fakeDeployer{})

	require.Error(t, p.Run(context.Background(), StageRelease))
	assert.Equal(t, []string{"build", "login"}, engine.ops)
}

func TestReleasePushFailureStillLogsOutOnce(t *testing.T) {
	pushErr := errors.New("push denied")
	engine := &fakeEngine{pushErr: pushErr}
	p := testPipeline(engine, &fakeDeployer{})

	err := p.Run(context.Background(), StageRelease)
	require.ErrorIs(t, err, pushErr)
	assert.Equal(t, []string{"build", "login", "push", "logout"}, engine.ops)
}

func TestReleasePushErrorWinsOverLogoutError(t *testing.T) {
	pushErr := errors.New("push denied")
	engine := &fakeEngine{pushErr: pushErr, logoutErr: errors.New("logout broken")}
	p := testPipeline(engine, &fakeDeployer{})

	err := p.Run(context.Background(), StageRelease)
	require.ErrorIs(t, err, pushErr)
	assert.NotContains(t, err.Error(), "logout")
}

func TestReleaseLogoutErrorSurfacesWhenPushSucceeds(t *testing.T) {
	logoutErr := errors.New("logout broken")
	engine := &fakeEngine{logoutErr: logoutErr}
	p := testPipeline(engine, &fakeDeployer{})

	err := p.Run(context.Background(), StageRelease)
	assert.ErrorIs(t, err, logoutErr)
}

func TestDeployStage(t *testing.T) {
	engine := &fakeEngine{}
	deployer := &fakeDeployer{}
	p := testPipeline(engine, deployer)

	require.NoError(t, p.Run(context.Background(), StageDeploy))
	assert.Equal(t, []string{"build", "login", "push", "logout"}, engine.ops)
	require.Len(t, deployer.calls, 1)
	assert.Equal(t, "dev-gcp", deployer.calls[0].Cluster)
}

func TestDeployPreflightBlocksIncompleteConfig(t *testing.T) {
	engine := &fakeEngine{}
	deployer := &fakeDeployer{}
	p := testPipeline(engine, deployer)
	p.DeployConfig.APIKey = ""

	err := p.Run(context.Background(), StageDeploy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy configuration incomplete")
	assert.Empty(t, deployer.calls, "collaborator must never see a partial configuration")
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "dockerfile", StageDockerfile.String())
	assert.Equal(t, "deploy", StageDeploy.String())
}
