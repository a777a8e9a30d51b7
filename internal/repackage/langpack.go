package repackage

import (
	"context"
	"fmt"

	"github.com/ralt/debrepack/internal/appini"
	"github.com/ralt/debrepack/internal/archive"
	"github.com/ralt/debrepack/internal/assets"
	"github.com/ralt/debrepack/internal/buildvars"
	"github.com/ralt/debrepack/internal/debian"
	"github.com/ralt/debrepack/internal/langpack"
	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/templates"
	"github.com/ralt/debrepack/internal/utils"
	"github.com/sirupsen/logrus"
)

// LangpackArch is the architecture of language pack packages
const LangpackArch = "all"

// LangpackDepends returns the dependency pinning a language pack to its browser
func LangpackDepends(meta *models.ApplicationMetadata, releaseProduct string) string {
	name := meta.RemotingName
	if releaseProduct == buildvars.ProductDevedition {
		name = "firefox-devedition"
	}
	return fmt.Sprintf("%s (= %s)", name, meta.DebPkgVersion)
}

// Langpack repackages the language pack in cfg.InputXPI, built alongside the
// browser tarball cfg.InputTar, into the .deb at cfg.Output
func Langpack(ctx context.Context, cfg *models.LangpackConfig, deps Deps) error {
	arch, err := debian.LookupArch(LangpackArch)
	if err != nil {
		return models.Wrap(models.ErrInvalidConfig, "", err)
	}
	if !archive.IsTarball(cfg.InputTar) {
		return models.Wrap(models.ErrInvalidInput, cfg.InputTar, fmt.Errorf("not a tar archive"))
	}
	if !utils.DirExists(cfg.TemplateDir) {
		return models.Wrap(models.ErrInvalidInput, cfg.TemplateDir, fmt.Errorf("template directory not found"))
	}

	manifest, err := langpack.ReadManifest(cfg.InputXPI)
	if err != nil {
		return err
	}
	logrus.Infof("Packaging language pack %s (%s)", manifest.LangpackID, manifest.ExtensionID())

	meta, err := appini.Load(cfg.InputTar, cfg.Version, cfg.BuildNumber)
	if err != nil {
		return models.Wrap(models.ErrMetadata, cfg.InputTar, err)
	}

	vars, err := buildvars.Get(meta, LangpackArch, LangpackDepends(meta, cfg.ReleaseProduct), buildvars.Options{
		PackageNameSuffix: manifest.PackageNameSuffix(),
		DescriptionSuffix: manifest.DescriptionSuffix(),
		ReleaseProduct:    cfg.ReleaseProduct,
	})
	if err != nil {
		return models.Wrap(models.ErrInvalidConfig, "", err)
	}
	logrus.Debugf("Build variables: %v", vars)

	b := deps.builder()
	ws, err := newWorkspace(b, arch)
	if err != nil {
		return err
	}
	defer ws.remove()

	if err := utils.EnsureDir(ws.sourceDir); err != nil {
		return models.Wrap(models.ErrFileOp, ws.sourceDir, err)
	}
	if err := templates.CopyPlain(cfg.TemplateDir, ws.sourceDir); err != nil {
		return models.Wrap(models.ErrTemplate, cfg.TemplateDir, err)
	}
	if err := templates.Render(cfg.TemplateDir, ws.sourceDir, vars); err != nil {
		return models.Wrap(models.ErrTemplate, cfg.TemplateDir, err)
	}

	if err := assets.InjectLangpack(ws.sourceDir, cfg.InputXPI, manifest.ExtensionID()); err != nil {
		return err
	}

	return b.Build(ctx, ws.sourceDir, ws.root, cfg.Output, vars, arch)
}
