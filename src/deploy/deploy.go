// Package deploy invokes the external nais deploy client.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Environment variables preloading the deploy configuration in CI.
const (
	envAPIKey = "NAIS_DEPLOY_APIKEY"
	envServer = "NAIS_DEPLOY_SERVER"
)

// Config holds the deploy client invocation. Field names correspond to the
// client's flag names, except Ref which maps to --ref.
type Config struct {
	APIKey     string
	Cluster    string
	Server     string
	Owner      string
	Ref        string
	Repository string
	Resources  []string // --resource, repeatable
	Vars       []string // --var key=value, repeatable
	VarsFile   string   // --vars
	Wait       bool
}

// FromEnv returns a Config preloaded with the fields available from the
// environment. Completeness is checked separately by Validate.
func FromEnv() Config {
	return Config{
		APIKey: os.Getenv(envAPIKey),
		Server: os.Getenv(envServer),
		Wait:   true,
	}
}

// Validate checks that the configuration is complete. The external client
// is never invoked with a partial configuration.
func (c Config) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "api key ("+envAPIKey+")")
	}
	if c.Server == "" {
		missing = append(missing, "deploy server ("+envServer+")")
	}
	if c.Cluster == "" {
		missing = append(missing, "cluster")
	}
	if len(c.Resources) == 0 {
		missing = append(missing, "resource file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("deploy configuration incomplete: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Args renders the configuration as deploy client arguments.
func Args(cfg Config) []string {
	var args []string
	for _, resource := range cfg.Resources {
		args = append(args, "--resource", resource)
	}
	for _, v := range cfg.Vars {
		args = append(args, "--var", v)
	}
	args = append(args,
		"--apikey", cfg.APIKey,
		"--cluster", cfg.Cluster,
		"--deploy-server", cfg.Server,
		"--owner", cfg.Owner,
		"--ref", cfg.Ref,
		"--repository", cfg.Repository,
		"--wait", strconv.FormatBool(cfg.Wait),
	)
	if cfg.VarsFile != "" {
		args = append(args, "--vars", cfg.VarsFile)
	}
	return args
}

// CommandError is a non-zero exit from the deploy client.
type CommandError struct {
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("deploy client exited with code %d", e.ExitCode)
}

// Client wraps the deploy binary, streaming its output through.
type Client struct {
	Stdout io.Writer
	Stderr io.Writer
	bin    string
}

// NewClient returns a Client streaming to the current process's
// stdout/stderr.
func NewClient() *Client {
	return &Client{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		bin:    "deploy",
	}
}

// Deploy runs the external deploy client with the given configuration.
func (c *Client) Deploy(ctx context.Context, cfg Config) error {
	args := Args(cfg)
	log.Debug().Str("cluster", cfg.Cluster).Strs("resources", cfg.Resources).Msg("invoking deploy client")

	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{ExitCode: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("deploy client: %w", err)
	}
	return nil
}
