package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/founder-scout/internal/observability"
	"github.com/jonathan/founder-scout/internal/pipeline"
	"github.com/jonathan/founder-scout/internal/types"
)

var extractPageCommand = &cobra.Command{
	Use:   "extract-page <url>",
	Short: "Extract founders from a single page and print them as JSON",
	Long: `Fetches one page and runs extraction, noise filtering and reconciliation on it.
Nothing is read from or written to a store. Founder drafts are written to stdout
as JSON; --verbose also prints the raw candidates per strategy to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtractPageCmd,
}

var (
	extractPageOrgName    string
	extractPageUseBrowser bool
)

func init() {
	extractPageCommand.Flags().StringVar(&extractPageOrgName, "org-name", "", "Organization name, used to drop the company's own name from results")
	extractPageCommand.Flags().BoolVar(&extractPageUseBrowser, "browser", false, "Render the page in headless Chrome (requires Chrome)")

	rootCmd.AddCommand(extractPageCommand)
}

// pageOutput is the JSON document printed by extract-page.
type pageOutput struct {
	URL              string                  `json:"url"`
	Founders         []types.FounderRecord   `json:"founders"`
	Candidates       []types.PersonCandidate `json:"candidates,omitempty"`
	StrategyFailures []string                `json:"strategy_failures,omitempty"`
}

func runExtractPageCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("browser") {
		cfg.UseBrowser = extractPageUseBrowser
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ex, noise, err := newExtraction(cfg, log)
	if err != nil {
		return err
	}

	snap, err := newFetcher(cfg, nil, log).Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, ex, noise, log, pipeline.Options{DryRun: true})
	founders, result := runner.ExtractPage(snap, extractPageOrgName)

	out := pageOutput{URL: snap.URL, Founders: founders}
	if out.Founders == nil {
		out.Founders = []types.FounderRecord{}
	}
	for _, f := range result.Failures {
		out.StrategyFailures = append(out.StrategyFailures, f.Error())
	}
	if cfg.Verbose {
		out.Candidates = result.Candidates
		observability.NewPrinter(os.Stderr).PrintCandidates(result.Candidates)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
