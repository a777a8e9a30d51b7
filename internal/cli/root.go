package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "debrepack",
		Short: "Repackage Firefox builds as Debian packages",
		Long: `Debrepack turns a Firefox release tarball into a .deb package, adding the
packaging files, desktop entry, distribution files and preferences a
system-wide install needs. Language packs are repackaged into packages
depending on the matching browser package.

Every flag can also be set in the --config YAML file or through a
DEBREPACK_ environment variable (e.g. DEBREPACK_TEMPLATE_DIR).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")

	// Add subcommands
	rootCmd.AddCommand(NewDebCmd())
	rootCmd.AddCommand(NewLangpackCmd())

	return rootCmd
}
