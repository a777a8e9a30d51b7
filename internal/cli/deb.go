package cli

import (
	"context"
	"fmt"

	"github.com/ralt/debrepack/internal/buildvars"
	"github.com/ralt/debrepack/internal/debian"
	"github.com/ralt/debrepack/internal/distribution"
	"github.com/ralt/debrepack/internal/l10n"
	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/repackage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewDebCmd creates the deb command
func NewDebCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deb",
		Short: "Repackage a browser tarball as a .deb",
		Long: `Extracts the browser tarball, renders the Debian packaging templates,
adds the desktop entry, distribution files and preferences, and runs
dpkg-buildpackage. The resulting package is checked and written to --output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadRepackConfig(cmd)
			if err != nil {
				return err
			}

			logrus.Info("Starting repackaging...")
			logrus.Debugf("Configuration: %+v", redactRepack(*config))

			return runDeb(cmd.Context(), config)
		},
	}

	// Input/Output flags
	cmd.Flags().StringP("input", "i", "", "Browser tarball to repackage")
	cmd.Flags().StringP("output", "o", "", "Path of the .deb to write")
	cmd.Flags().StringP("template-dir", "t", "", "Directory holding the Debian packaging templates")

	// Build identity flags
	cmd.Flags().String("arch", "x86_64", fmt.Sprintf("Target architecture (%v)", debian.SupportedArches()))
	cmd.Flags().String("version", "", "Browser version, e.g. 121.0 or 122.0a1")
	cmd.Flags().String("build-number", "", "Release build number")
	cmd.Flags().String("release-product", "firefox", "Release product (firefox, devedition)")
	cmd.Flags().String("release-type", "", "Release type (nightly, beta, release, release-rc, esr*, unofficial)")

	// Localization and distribution flags
	cmd.Flags().String("source-dir", "", "Source checkout holding browser/locales and browser/branding")
	cmd.Flags().String("l10n-base-url", l10n.DefaultBaseURL, "Root serving per-revision localization files")
	cmd.Flags().String("distribution-repo", distribution.DefaultRepo, "Git repository holding the distribution files")

	addSigningFlags(cmd)

	return cmd
}

func addSigningFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("gpg-key", "k", "", "Path to GPG private key signing the package")
	cmd.Flags().StringP("gpg-passphrase", "p", "", "GPG key passphrase")
	cmd.Flags().Bool("export-key", false, "Write the public key next to the package signature")
}

// validateSigning rejects a key export without a key to export
func validateSigning(keyPath string, exportKey bool) error {
	if exportKey && keyPath == "" {
		return &models.RepackError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("export-key requires gpg-key"),
		}
	}
	return nil
}

func loadRepackConfig(cmd *cobra.Command) (*models.RepackConfig, error) {
	v, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if err := required(v, "input", "output", "template-dir", "version", "build-number", "release-type", "source-dir"); err != nil {
		return nil, err
	}

	config := &models.RepackConfig{
		Input:            v.GetString("input"),
		Output:           v.GetString("output"),
		TemplateDir:      v.GetString("template-dir"),
		Arch:             v.GetString("arch"),
		Version:          v.GetString("version"),
		BuildNumber:      v.GetString("build-number"),
		ReleaseProduct:   v.GetString("release-product"),
		ReleaseType:      v.GetString("release-type"),
		SourceDir:        v.GetString("source-dir"),
		L10nBaseURL:      v.GetString("l10n-base-url"),
		DistributionRepo: v.GetString("distribution-repo"),
		GPGKeyPath:       v.GetString("gpg-key"),
		GPGPassphrase:    v.GetString("gpg-passphrase"),
		ExportKey:        v.GetBool("export-key"),
	}
	if err := validateRepackConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateRepackConfig(config *models.RepackConfig) error {
	if _, err := debian.LookupArch(config.Arch); err != nil {
		return &models.RepackError{Type: models.ErrInvalidConfig, Err: err}
	}
	if err := validateReleaseProduct(&config.ReleaseProduct); err != nil {
		return err
	}
	if _, err := l10n.Brand(config.ReleaseType, config.ReleaseProduct); err != nil {
		return &models.RepackError{Type: models.ErrInvalidConfig, Err: err}
	}
	if err := validateSigning(config.GPGKeyPath, config.ExportKey); err != nil {
		return err
	}

	for _, check := range []struct{ flag, path string }{
		{"input", config.Input},
		{"template-dir", config.TemplateDir},
		{"source-dir", config.SourceDir},
	} {
		if err := existing(check.flag, check.path); err != nil {
			return err
		}
	}

	// Set defaults for empty values
	if config.L10nBaseURL == "" {
		config.L10nBaseURL = l10n.DefaultBaseURL
	}
	if config.DistributionRepo == "" {
		config.DistributionRepo = distribution.DefaultRepo
	}
	return nil
}

func validateReleaseProduct(product *string) error {
	switch *product {
	case "":
		*product = "firefox"
	case "firefox", buildvars.ProductDevedition:
	default:
		return &models.RepackError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("unsupported release product %q", *product),
		}
	}
	return nil
}

func redactRepack(config models.RepackConfig) models.RepackConfig {
	if config.GPGPassphrase != "" {
		config.GPGPassphrase = "***"
	}
	return config
}

func runDeb(ctx context.Context, config *models.RepackConfig) error {
	deps := repackage.DefaultDeps()

	s, err := repackage.NewSigner(config.GPGKeyPath, config.GPGPassphrase)
	if err != nil {
		return err
	}
	deps.Signer = s
	deps.ExportKey = config.ExportKey

	if err := repackage.Deb(ctx, config, deps); err != nil {
		return err
	}

	logrus.Info("Repackaging completed successfully!")
	logrus.Infof("Package: %s", config.Output)
	return nil
}
