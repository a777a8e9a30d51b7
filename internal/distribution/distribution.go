// Package distribution copies the partner distribution tree into the
// application directory of a source tree.
package distribution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultRepo carries the distribution files of the Debian package
	DefaultRepo = "https://github.com/mozilla-partners/deb.git"

	// TreePath is the distribution tree inside the repository
	TreePath = "desktop/deb/distribution"
)

// CloneFunc clones a repository into a directory
type CloneFunc func(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error)

// Clone performs a normal clone operation.
var Clone CloneFunc = git.PlainCloneContext

// Injector copies the distribution tree of a git repository
type Injector struct {
	RepoURL string
	Clone   CloneFunc
}

// NewInjector creates an injector for repoURL, or DefaultRepo when empty
func NewInjector(repoURL string) *Injector {
	if repoURL == "" {
		repoURL = DefaultRepo
	}
	return &Injector{RepoURL: repoURL, Clone: Clone}
}

// Inject clones the repository into a scratch directory and copies its
// distribution tree to <sourceDir>/<lower(appName)>/distribution
func (i *Injector) Inject(ctx context.Context, sourceDir, appName string) error {
	scratch, err := os.MkdirTemp("", "debrepack-distribution-")
	if err != nil {
		return models.Wrap(models.ErrFileOp, "", fmt.Errorf("failed to create clone dir: %w", err))
	}
	defer os.RemoveAll(scratch)

	logrus.Infof("Cloning %s", i.RepoURL)
	repo, err := i.Clone(ctx, scratch, false, &git.CloneOptions{
		URL:   i.RepoURL,
		Depth: 1,
	})
	if err != nil {
		return models.Wrap(models.ErrDistribution, i.RepoURL, fmt.Errorf("failed to clone: %w", err))
	}
	if repo != nil {
		if head, err := repo.Head(); err == nil {
			logrus.Debugf("Distribution repository at %s", head.Hash())
		}
	}

	src := filepath.Join(scratch, filepath.FromSlash(TreePath))
	if !utils.DirExists(src) {
		return models.Wrap(models.ErrDistribution, i.RepoURL, fmt.Errorf("%s not found in repository", TreePath))
	}

	dst := filepath.Join(sourceDir, strings.ToLower(appName), "distribution")
	if err := utils.CopyTree(src, dst); err != nil {
		return models.Wrap(models.ErrFileOp, dst, fmt.Errorf("failed to copy distribution: %w", err))
	}
	logrus.Infof("Copied distribution files to %s", dst)
	return nil
}
