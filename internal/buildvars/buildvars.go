// Package buildvars derives the template variables used to render Debian
// packaging files.
package buildvars

import (
	"fmt"

	"github.com/ralt/debrepack/internal/debian"
	"github.com/ralt/debrepack/internal/models"
)

// ProductDevedition is the release product shipped under a fixed package name
const ProductDevedition = "devedition"

// ChangelogDateLayout is the RFC 2822 layout used in debian/changelog.
// The descriptor's build id carries no zone, hence -0000.
const ChangelogDateLayout = "Mon, 02 Jan 2006 15:04:05 -0000"

// Options tweak package naming for sub-packages such as language packs
type Options struct {
	PackageNameSuffix string
	DescriptionSuffix string
	ReleaseProduct    string
}

// Get computes the build variables for meta on arch
func Get(meta *models.ApplicationMetadata, arch, depends string, opts Options) (models.BuildVariables, error) {
	a, err := debian.LookupArch(arch)
	if err != nil {
		return nil, err
	}

	var installPath, pkgName string
	if opts.ReleaseProduct == ProductDevedition {
		installPath = "usr/lib/firefox-devedition"
		pkgName = "firefox-devedition" + opts.PackageNameSuffix
	} else {
		installPath = fmt.Sprintf("usr/lib/%s", meta.RemotingName)
		pkgName = meta.RemotingName + opts.PackageNameSuffix
	}

	return models.BuildVariables{
		models.VarDescription:   fmt.Sprintf("%s %s%s", meta.Vendor, meta.DisplayName, opts.DescriptionSuffix),
		models.VarInstallPath:   installPath,
		models.VarPkgName:       pkgName,
		models.VarPkgVersion:    meta.DebPkgVersion,
		models.VarChangelogDate: meta.Timestamp.Format(ChangelogDateLayout),
		models.VarArchName:      a.DebArch,
		models.VarDepends:       depends,
	}, nil
}
