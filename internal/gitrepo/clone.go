// Package gitrepo acquires repositories: it validates GitHub URLs and
// shallow-clones them into temporary directories. The rest of the system
// only ever sees the resulting local directory.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// MaxRepoBytes is the hard size limit for a cloned repository (100 MB).
const MaxRepoBytes = 100 << 20

// ValidateURL checks that the URL looks like a GitHub repository:
// https://github.com/owner/repo with an optional .git suffix.
func ValidateURL(repoURL string) error {
	u := strings.TrimSpace(repoURL)
	if !strings.HasPrefix(u, "https://github.com/") {
		return fmt.Errorf("invalid GitHub URL %q: expected https://github.com/owner/repo", repoURL)
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(u, "https://github.com/"), ".git")
	rest = strings.TrimSuffix(rest, "/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid GitHub URL %q: expected https://github.com/owner/repo", repoURL)
	}
	return nil
}

// cloneURL canonicalizes a validated repository URL for the git transport:
// whitespace and any trailing slash dropped, ".git" suffix ensured.
func cloneURL(repoURL string) string {
	u := strings.TrimSuffix(strings.TrimSpace(repoURL), "/")
	if !strings.HasSuffix(u, ".git") {
		u += ".git"
	}
	return u
}

// Clone shallow-clones the repository (depth 1) into a fresh temporary
// directory and returns its path plus a cleanup function. Repositories
// over MaxRepoBytes are rejected and cleaned up immediately.
func Clone(ctx context.Context, repoURL string) (dir string, cleanup func(), err error) {
	if err := ValidateURL(repoURL); err != nil {
		return "", nil, err
	}
	u := cloneURL(repoURL)

	dir, err = os.MkdirTemp("", "endee-repo-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp directory: %w", err)
	}
	cleanup = func() {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not clean up %s: %v\n", dir, err)
		}
	}

	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   u,
		Depth: 1,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("clone %s: %w", repoURL, err)
	}

	size, err := dirSize(dir)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("measure %s: %w", repoURL, err)
	}
	if size > MaxRepoBytes {
		cleanup()
		return "", nil, fmt.Errorf("repository too large (%d MB), maximum allowed is %d MB",
			size>>20, MaxRepoBytes>>20)
	}

	return dir, cleanup, nil
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total, err
}
