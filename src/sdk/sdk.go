// Package sdk detects which build SDK applies to a source tree and
// generates the Dockerfile that builds it.
package sdk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// SDK is anything that can turn a source tree into a container image
// description.
type SDK interface {
	// Name identifies the SDK ("go", "gradle", "maven").
	Name() string
	// BuilderImage is the image the application is compiled in.
	BuilderImage() string
	// RuntimeImage is the image the application runs in.
	RuntimeImage() string
	// BuildTargets returns the artifacts this SDK will build.
	BuildTargets() ([]string, error)
	// Dockerfile generates a multi-stage Dockerfile for the source tree.
	Dockerfile() (string, error)
	// Root is the source tree the SDK was detected in.
	Root() string
}

var (
	// ErrSDKNotDetected means no SDK recognized the source tree.
	ErrSDKNotDetected = errors.New("no compatible SDKs for this source directory")

	// ErrEmptyTargetName means a build target directory entry has no
	// usable name.
	ErrEmptyTargetName = errors.New("build target name is empty")
)

// statFile reports whether path exists and is a regular file.
//
// A missing file is a negative probe, not an error. Any other stat failure
// (e.g. permission denied) is returned so the caller can distinguish
// "not applicable" from "could not look".
func statFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}
