package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/strrl/intel-brief/internal/config"
	"github.com/strrl/intel-brief/internal/logging"
	"github.com/strrl/intel-brief/internal/pipeline"
)

var (
	runRSSURL     string
	runNVDURL     string
	runTwitterURL string
	runModel      string
	runBaseURL    string
)

var runCmd = &cobra.Command{
	Use:   "run [term]",
	Short: "Run the briefing pipeline once for a search term",
	Long: `Run the full pipeline for a search term: collect the RSS feed, NVD
vulnerability search, and Twitter recent search in parallel, enrich the bundle
with the model, post the summary to the webhook, and write the timestamped
JSON and Markdown artifacts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runRSSURL, "rss-url", "", "RSS feed endpoint override")
	runCmd.Flags().StringVar(&runNVDURL, "nvd-url", "", "NVD search endpoint override")
	runCmd.Flags().StringVar(&runTwitterURL, "twitter-url", "", "Twitter search endpoint override")
	runCmd.Flags().StringVar(&runModel, "model", "", "Completion model (default gpt-4o-mini)")
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "Completion endpoint override")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	term := ""
	if len(args) > 0 {
		term = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := logging.New(os.Stderr, cfg.Secrets())

	p := pipeline.New(cfg, pipeline.Sources{
		RSSURL:       runRSSURL,
		NVDURL:       runNVDURL,
		TwitterURL:   runTwitterURL,
		Model:        runModel,
		ModelBaseURL: runBaseURL,
	}, log)

	result, err := p.Run(cmd.Context(), term)
	if err != nil {
		// Already logged and reported to the webhook by the pipeline;
		// returning it makes Execute exit with code 1.
		return err
	}

	fmt.Printf("Summary: %s\n", result.Summary)
	fmt.Printf("IoCs: %d, MITRE techniques: %d\n", len(result.IoCs), len(result.MITRE))
	fmt.Printf("Artifacts written to %s\n", cfg.OutputDir)
	return nil
}
