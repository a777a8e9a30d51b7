// Package repackage turns browser and language pack builds into Debian
// packages.
package repackage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ralt/debrepack/internal/debian"
	"github.com/ralt/debrepack/internal/distribution"
	"github.com/ralt/debrepack/internal/httpx"
	"github.com/ralt/debrepack/internal/l10n"
	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/signer"
	"github.com/sirupsen/logrus"
)

// UserAgent identifies localization requests
const UserAgent = "debrepack"

// Deps are the collaborators of a run that reach outside the process
type Deps struct {
	Runner     debian.Runner
	ChrootRoot string
	Clone      distribution.CloneFunc
	Client     httpx.BasicClient
	Retry      httpx.RetryPolicy
	Log        l10n.LogFunc
	// Signer is optional
	Signer signer.Signer
	// ExportKey publishes the signer's public key with the package
	ExportKey bool
}

// DefaultDeps returns the collaborators used outside of tests
func DefaultDeps() Deps {
	return Deps{
		Runner:     debian.ExecRunner{},
		ChrootRoot: debian.ChrootRoot,
		Clone:      distribution.Clone,
		Client:     &httpx.WithUserAgent{BasicClient: http.DefaultClient, UserAgent: UserAgent},
		Retry:      httpx.DefaultRetryPolicy(),
		Log:        l10n.LogrusFunc,
	}
}

// NewSigner loads the signing key at keyPath. It returns a nil signer when
// keyPath is empty.
func NewSigner(keyPath, passphrase string) (signer.Signer, error) {
	if keyPath == "" {
		return nil, nil
	}
	s, err := signer.NewGPGSigner(keyPath, passphrase)
	if err != nil {
		return nil, models.Wrap(models.ErrSigning, keyPath, fmt.Errorf("failed to initialize GPG signer: %w", err))
	}
	logrus.Info("GPG signer initialized")
	return s, nil
}

func (d Deps) builder() *debian.Builder {
	b := debian.NewBuilder()
	if d.Runner != nil {
		b.Runner = d.Runner
	}
	b.Signer = d.Signer
	b.ExportKey = d.ExportKey
	b.ChrootRoot = d.ChrootRoot
	return b
}

// workspace is the temp dir of one run; the packaging tool writes the
// artifact next to the source tree
type workspace struct {
	root      string
	sourceDir string
}

func newWorkspace(b *debian.Builder, arch debian.Arch) (*workspace, error) {
	root, err := b.TempDir(arch)
	if err != nil {
		return nil, models.Wrap(models.ErrFileOp, "", err)
	}
	logrus.Debugf("Working in %s", root)
	return &workspace{root: root, sourceDir: filepath.Join(root, debian.SourceDirName)}, nil
}

func (w *workspace) remove() {
	if err := os.RemoveAll(w.root); err != nil {
		logrus.Warnf("Failed to remove %s: %v", w.root, err)
	}
}
