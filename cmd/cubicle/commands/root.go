package commands

import (
	"github.com/spf13/cobra"
)

var (
	// dbPath is the path to the SQLite snapshot database.
	dbPath string

	// apiKey is the Gemini API key. Falls back to $GEMINI_API_KEY.
	apiKey string

	// logLevel is the minimum log level.
	logLevel string

	// logFile is an optional rotating log file path.
	logFile string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "cubicle",
	Short: "Cubicle corporate world simulator",
	Long: `Cubicle runs a simulated company: email threads, instant messages,
a social feed, projects and a calendar, all populated by generated coworker
personas that keep working whether or not anyone is watching.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "",
		"Path to SQLite snapshot database (default: "+
			"~/.cubicle/cubicle.db)",
	)
	rootCmd.PersistentFlags().StringVar(
		&apiKey, "api-key", "",
		"Gemini API key (default: $GEMINI_API_KEY)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info",
		"Log level: trace, debug, info, warn, error, critical, off",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFile, "log-file", "",
		"Optional rotating log file path",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(versionCmd)
}
