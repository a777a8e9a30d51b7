package cli

import (
	"context"

	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/repackage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewLangpackCmd creates the langpack command
func NewLangpackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "langpack",
		Short: "Repackage a language pack as a .deb",
		Long: `Packages a language pack (.xpi) as an architecture independent .deb
that depends on the exact version of the browser package built from
--input-tar.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadLangpackConfig(cmd)
			if err != nil {
				return err
			}

			logrus.Info("Starting language pack repackaging...")
			logrus.Debugf("Configuration: %+v", redactLangpack(*config))

			return runLangpack(cmd.Context(), config)
		},
	}

	// Input/Output flags
	cmd.Flags().String("input-xpi", "", "Language pack to repackage")
	cmd.Flags().String("input-tar", "", "Browser tarball the language pack was built with")
	cmd.Flags().StringP("output", "o", "", "Path of the .deb to write")
	cmd.Flags().StringP("template-dir", "t", "", "Directory holding the Debian packaging templates")

	// Build identity flags
	cmd.Flags().String("version", "", "Browser version, e.g. 121.0")
	cmd.Flags().String("build-number", "", "Release build number")
	cmd.Flags().String("release-product", "firefox", "Release product (firefox, devedition)")

	addSigningFlags(cmd)

	return cmd
}

func loadLangpackConfig(cmd *cobra.Command) (*models.LangpackConfig, error) {
	v, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if err := required(v, "input-xpi", "input-tar", "output", "template-dir", "version", "build-number"); err != nil {
		return nil, err
	}

	config := &models.LangpackConfig{
		InputXPI:       v.GetString("input-xpi"),
		InputTar:       v.GetString("input-tar"),
		Output:         v.GetString("output"),
		TemplateDir:    v.GetString("template-dir"),
		Version:        v.GetString("version"),
		BuildNumber:    v.GetString("build-number"),
		ReleaseProduct: v.GetString("release-product"),
		GPGKeyPath:     v.GetString("gpg-key"),
		GPGPassphrase:  v.GetString("gpg-passphrase"),
		ExportKey:      v.GetBool("export-key"),
	}
	if err := validateReleaseProduct(&config.ReleaseProduct); err != nil {
		return nil, err
	}
	if err := validateSigning(config.GPGKeyPath, config.ExportKey); err != nil {
		return nil, err
	}
	for _, check := range []struct{ flag, path string }{
		{"input-xpi", config.InputXPI},
		{"input-tar", config.InputTar},
		{"template-dir", config.TemplateDir},
	} {
		if err := existing(check.flag, check.path); err != nil {
			return nil, err
		}
	}
	return config, nil
}

func redactLangpack(config models.LangpackConfig) models.LangpackConfig {
	if config.GPGPassphrase != "" {
		config.GPGPassphrase = "***"
	}
	return config
}

func runLangpack(ctx context.Context, config *models.LangpackConfig) error {
	deps := repackage.DefaultDeps()

	s, err := repackage.NewSigner(config.GPGKeyPath, config.GPGPassphrase)
	if err != nil {
		return err
	}
	deps.Signer = s
	deps.ExportKey = config.ExportKey

	if err := repackage.Langpack(ctx, config, deps); err != nil {
		return err
	}

	logrus.Info("Language pack repackaging completed successfully!")
	logrus.Infof("Package: %s", config.Output)
	return nil
}
