// Package gitsource fetches a remote content repository into a local
// workspace, for blogs whose content lives in its own repo.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

var (
	// ErrCloneFailed indicates the content repository could not be cloned.
	ErrCloneFailed = errors.New("failed to clone content repository")
	// ErrAuthFailed indicates the remote rejected the provided credentials.
	ErrAuthFailed = errors.New("content repository authentication failed")
)

// Fetcher clones content repositories into a workspace directory.
type Fetcher struct {
	workspaceDir string
}

// NewFetcher creates a fetcher. An empty workspaceDir uses a temp directory
// per Fetch call.
func NewFetcher(workspaceDir string) *Fetcher {
	return &Fetcher{workspaceDir: workspaceDir}
}

// Fetch clones the configured content repository and returns the path of the
// checked-out tree. The clone is single-branch; every build starts from a
// fresh copy.
func (f *Fetcher) Fetch(ctx context.Context, src *config.SourceConfig) (string, error) {
	dir := f.workspaceDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "blogbuilder-content-*")
		if err != nil {
			return "", fmt.Errorf("create content workspace: %w", err)
		}
		dir = tmp
	}
	repoPath := filepath.Join(dir, "content-repo")

	slog.Debug("Cloning content repository", logfields.URL(src.URL), slog.String("branch", src.Branch), logfields.Path(repoPath))
	if err := os.RemoveAll(repoPath); err != nil {
		return "", fmt.Errorf("failed to remove existing directory: %w", err)
	}

	cloneOptions := &git.CloneOptions{URL: src.URL, SingleBranch: true}
	if src.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
	}
	if src.Token != "" {
		// Token auth over HTTPS; the username is ignored by most forges.
		cloneOptions.Auth = &http.BasicAuth{Username: "token", Password: src.Token}
	}

	repository, err := git.PlainCloneContext(ctx, repoPath, false, cloneOptions)
	if err != nil {
		return "", classifyCloneError(src.URL, err)
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Content repository cloned",
			logfields.URL(src.URL),
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(repoPath))
	} else {
		slog.Info("Content repository cloned", logfields.URL(src.URL), logfields.Path(repoPath))
	}
	return repoPath, nil
}

func classifyCloneError(url string, err error) error {
	l := strings.ToLower(err.Error())
	if strings.Contains(l, "authentication") || strings.Contains(l, "auth fail") || strings.Contains(l, "invalid username or password") {
		return fmt.Errorf("%w: %s: %w", ErrAuthFailed, url, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrCloneFailed, url, err)
}
