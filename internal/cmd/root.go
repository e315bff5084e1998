package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intel-brief",
	Short: "Threat-intelligence briefing pipeline",
	Long: `intel-brief fetches threat-intelligence signals for a search term,
extracts IoCs and MITRE ATT&CK techniques with a language model, posts the
summary to a chat webhook, and writes JSON/Markdown artifacts to disk.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
