package commands

import (
	"os"

	"propertychat/internal/observability"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	listingsFile string
	areasFile    string
	logLevel     string
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "propertychat",
	Short: "London property chat assistant",
	Long: `propertychat talks through a property search: it collects whether you want
to rent or buy, your budget, bedrooms and location, answers questions about
London areas, and recommends matching listings from the catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}
		observability.Setup(observability.LogConfig{
			Level:       logLevel,
			Format:      "console",
			Output:      os.Stderr,
			ServiceName: "propertychat",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&listingsFile, "catalog", "", "listings file (.json or .yaml); embedded catalog when empty")
	rootCmd.PersistentFlags().StringVar(&areasFile, "areas", "", "area directory file (.json or .yaml); embedded directory when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(validateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
