package models

import "time"

// ApplicationMetadata holds the fields read from the application descriptor
// of a browser archive
type ApplicationMetadata struct {
	Name         string
	DisplayName  string
	Vendor       string
	RemotingName string
	BuildID      string

	// Derived values
	Timestamp     time.Time
	DebPkgVersion string
}

// Template variable names understood by the packaging templates
const (
	VarDescription   = "DEB_DESCRIPTION"
	VarInstallPath   = "DEB_PKG_INSTALL_PATH"
	VarPkgName       = "DEB_PKG_NAME"
	VarPkgVersion    = "DEB_PKG_VERSION"
	VarChangelogDate = "DEB_CHANGELOG_DATE"
	VarArchName      = "DEB_ARCH_NAME"
	VarDepends       = "DEB_DEPENDS"
)

// BuildVariables maps template variable names to their values
type BuildVariables map[string]string

// PkgName returns the Debian package name
func (v BuildVariables) PkgName() string {
	return v[VarPkgName]
}

// PkgVersion returns the Debian package version
func (v BuildVariables) PkgVersion() string {
	return v[VarPkgVersion]
}

// ArchName returns the Debian architecture name
func (v BuildVariables) ArchName() string {
	return v[VarArchName]
}
