package repackage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ralt/debrepack/internal/appini"
	"github.com/ralt/debrepack/internal/archive"
	"github.com/ralt/debrepack/internal/assets"
	"github.com/ralt/debrepack/internal/buildvars"
	"github.com/ralt/debrepack/internal/debian"
	"github.com/ralt/debrepack/internal/desktop"
	"github.com/ralt/debrepack/internal/distribution"
	"github.com/ralt/debrepack/internal/l10n"
	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/templates"
	"github.com/ralt/debrepack/internal/utils"
	"github.com/sirupsen/logrus"
)

// shlibsDepends lets dpkg-shlibdeps fill in the browser's library dependencies
const shlibsDepends = "${shlibs:Depends},"

// Deb repackages the browser tarball in cfg.Input into the .deb at cfg.Output
func Deb(ctx context.Context, cfg *models.RepackConfig, deps Deps) error {
	arch, err := debian.LookupArch(cfg.Arch)
	if err != nil {
		return models.Wrap(models.ErrInvalidConfig, "", err)
	}
	if !archive.IsTarball(cfg.Input) {
		return models.Wrap(models.ErrInvalidInput, cfg.Input, fmt.Errorf("not a tar archive"))
	}
	if !utils.DirExists(cfg.TemplateDir) {
		return models.Wrap(models.ErrInvalidInput, cfg.TemplateDir, fmt.Errorf("template directory not found"))
	}

	b := deps.builder()
	ws, err := newWorkspace(b, arch)
	if err != nil {
		return err
	}
	defer ws.remove()

	compression, err := archive.DetectFileCompression(cfg.Input)
	if err != nil {
		return models.Wrap(models.ErrFileOp, cfg.Input, err)
	}
	logrus.Infof("Extracting %s (%s)", cfg.Input, compression)
	if err := archive.ExtractAll(cfg.Input, ws.sourceDir); err != nil {
		return models.Wrap(models.ErrFileOp, cfg.Input, fmt.Errorf("failed to extract: %w", err))
	}

	meta, err := appini.Load(cfg.Input, cfg.Version, cfg.BuildNumber)
	if err != nil {
		return models.Wrap(models.ErrMetadata, cfg.Input, err)
	}
	logrus.Infof("Packaging %s %s (build %s)", meta.DisplayName, meta.DebPkgVersion, meta.BuildID)

	vars, err := buildvars.Get(meta, cfg.Arch, shlibsDepends, buildvars.Options{ReleaseProduct: cfg.ReleaseProduct})
	if err != nil {
		return models.Wrap(models.ErrInvalidConfig, "", err)
	}
	logrus.Debugf("Build variables: %v", vars)

	if err := templates.CopyPlain(cfg.TemplateDir, ws.sourceDir); err != nil {
		return models.Wrap(models.ErrTemplate, cfg.TemplateDir, err)
	}
	if err := templates.Render(cfg.TemplateDir, ws.sourceDir, vars, assets.PrefsFileName); err != nil {
		return models.Wrap(models.ErrTemplate, cfg.TemplateDir, err)
	}

	if err := assets.WritePackagedMarker(ws.sourceDir, meta.Name); err != nil {
		return err
	}

	injector := distribution.NewInjector(cfg.DistributionRepo)
	if deps.Clone != nil {
		injector.Clone = deps.Clone
	}
	if err := injector.Inject(ctx, ws.sourceDir, meta.Name); err != nil {
		return err
	}

	resolver := l10n.NewResolver(cfg.SourceDir, filepath.Join(ws.root, "l10n"))
	if cfg.L10nBaseURL != "" {
		resolver.BaseURL = cfg.L10nBaseURL
	}
	if deps.Client != nil {
		resolver.Client = deps.Client
	}
	if deps.Retry.Attempts > 0 {
		resolver.Retry = deps.Retry
	}
	if deps.Log != nil {
		resolver.Log = deps.Log
	}
	locs, err := resolver.Resolve(ctx, cfg.ReleaseType, cfg.ReleaseProduct)
	if err != nil {
		return models.Wrap(models.ErrLocalization, "", err)
	}

	if err := desktop.Inject(ws.sourceDir, vars, cfg.ReleaseProduct, locs); err != nil {
		return models.Wrap(models.ErrFileOp, ws.sourceDir, fmt.Errorf("failed to write desktop entry: %w", err))
	}

	if err := assets.InjectPrefs(ws.sourceDir, meta.Name, cfg.TemplateDir); err != nil {
		return err
	}

	return b.Build(ctx, ws.sourceDir, ws.root, cfg.Output, vars, arch)
}
