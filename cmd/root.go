package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "subrefine",
	Short: "Consolidate, correct, and review subtitles",
	Long: `subrefine merges speech-to-text and diarization output into subtitle
segments, applies a user-managed correction dictionary, translates the
segments, and runs automated review passes that propose corrections.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
