// Package git reads the version-control metadata a pipeline run needs:
// revision, dirty state, and repository ownership.
package git

import (
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
)

// Info holds metadata resolved from the source tree's repository.
type Info struct {
	SHA        string
	ShortSHA   string
	Dirty      bool   // uncommitted changes in the worktree
	Owner      string // repository owner from the origin remote
	Repository string // repository name from the origin remote
}

// Examine opens the repository at root and resolves its metadata.
func Examine(root string) (*Info, error) {
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("opening git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	info := &Info{SHA: head.Hash().String()}
	info.ShortSHA = info.SHA[:7]

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading worktree status: %w", err)
	}
	info.Dirty = !status.IsClean()

	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		info.Owner, info.Repository = OwnerRepository(remote.Config().URLs[0])
	}

	return info, nil
}

// Tag formats the image tag for a revision: a UTC timestamp plus the short
// SHA, with a -dirty suffix when the worktree has local modifications.
func Tag(info *Info, now time.Time) string {
	tag := fmt.Sprintf("%s-%s", now.UTC().Format("20060102.150405"), info.ShortSHA)
	if info.Dirty {
		tag += "-dirty"
	}
	return tag
}

// OwnerRepository extracts the owner and repository name from a git remote
// URL. Handles SSH (git@host:owner/repo.git) and HTTPS
// (https://host/owner/repo.git) forms.
func OwnerRepository(remote string) (string, string) {
	remote = strings.TrimSuffix(remote, ".git")

	// SSH: git@host:owner/repo
	if idx := strings.LastIndex(remote, ":"); idx != -1 && !strings.Contains(remote, "://") {
		remote = remote[idx+1:]
	}

	// HTTPS: strip scheme and host
	if idx := strings.Index(remote, "://"); idx != -1 {
		remote = remote[idx+3:]
		if idx := strings.Index(remote, "/"); idx != -1 {
			remote = remote[idx+1:]
		}
	}

	parts := strings.Split(strings.Trim(remote, "/"), "/")
	if len(parts) < 2 {
		return "", ""
	}
	// Deep paths (self-hosted groups) keep the last two components.
	return parts[len(parts)-2], parts[len(parts)-1]
}
