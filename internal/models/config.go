package models

// RepackConfig contains configuration for repackaging a browser archive
type RepackConfig struct {
	// Input/Output
	Input       string
	Output      string
	TemplateDir string

	// Build identity
	Arch           string
	Version        string
	BuildNumber    string
	ReleaseProduct string // firefox, devedition
	ReleaseType    string // nightly, beta, release, release-rc, esr*, unofficial

	// Localization
	SourceDir   string // Source checkout holding browser/locales and browser/branding
	L10nBaseURL string // Remote root serving per-revision localization files

	// Distribution
	DistributionRepo string // Git repository carrying the partner distribution tree

	// Signing
	GPGKeyPath    string
	GPGPassphrase string
	ExportKey     bool // Publish the public key next to the package
}

// LangpackConfig contains configuration for repackaging a language pack
type LangpackConfig struct {
	// Input/Output
	InputXPI    string
	InputTar    string
	Output      string
	TemplateDir string

	// Build identity
	Version        string
	BuildNumber    string
	ReleaseProduct string

	// Signing
	GPGKeyPath    string
	GPGPassphrase string
	ExportKey     bool // Publish the public key next to the package
}
