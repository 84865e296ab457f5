// Package docker drives the external docker CLI through the build, login,
// push, and logout operations of the pipeline.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// CommandError is a non-zero exit from the docker CLI.
type CommandError struct {
	Op       string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("docker %s failed with exit code %d", e.Op, e.ExitCode)
}

// CLI wraps the docker binary. Process output streams through Stdout and
// Stderr rather than being captured.
type CLI struct {
	Stdout io.Writer
	Stderr io.Writer
	bin    string
}

// New returns a CLI streaming to the current process's stdout/stderr.
func New() *CLI {
	return &CLI{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		bin:    "docker",
	}
}

// Build runs a container build of contextDir against the given Dockerfile,
// tagging the result.
func (d *CLI) Build(ctx context.Context, dockerfile, contextDir, tag string) error {
	return d.run(ctx, "build", nil, "build", "--file", dockerfile, "--tag", tag, contextDir)
}

// Login authenticates to a registry, feeding the password over stdin so it
// never appears in the process table.
func (d *CLI) Login(ctx context.Context, registry, username, password string) error {
	log.Debug().Str("registry", registry).Msg("logging in to Docker registry")
	return d.run(ctx, "login", strings.NewReader(password),
		"login", registry, "--username", username, "--password-stdin")
}

// Logout removes the registry credentials stored by Login.
func (d *CLI) Logout(ctx context.Context, registry string) error {
	return d.run(ctx, "logout", nil, "logout", registry)
}

// Push uploads an image to its registry.
func (d *CLI) Push(ctx context.Context, image string) error {
	log.Debug().Str("image", image).Msg("pushing image")
	return d.run(ctx, "push", nil, "push", image)
}

func (d *CLI) run(ctx context.Context, op string, stdin io.Reader, args ...string) error {
	log.Debug().Str("bin", d.bin).Strs("args", args).Msg("exec")

	cmd := exec.CommandContext(ctx, d.bin, args...)
	cmd.Stdin = stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Op: op, ExitCode: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("docker %s: %w", op, err)
	}
	return nil
}
