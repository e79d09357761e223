package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/founder-scout/internal/observability"
	"github.com/jonathan/founder-scout/internal/pipeline"
)

var extractCommand = &cobra.Command{
	Use:   "extract",
	Short: "Extract founders for every organization pending extraction",
	Long: `Fetches each pending organization page, extracts founder candidates, filters noise,
reconciles them and upserts the result with fill-only merging.

An organization is pending when it has a canonical URL without a query string and
either has no founders, was never extracted, or was extracted longer ago than
stale_after. Fetch failures skip the organization; it stays pending.

--org extracts one organization by id whether or not it is pending.`,
	RunE: runExtractCmd,
}

var (
	extractLimit          int
	extractConcurrency    int
	extractUseBrowser     bool
	extractDryRun         bool
	extractPeopleFallback bool
	extractOrgID          string
)

func init() {
	extractCommand.Flags().IntVar(&extractLimit, "limit", 0, "Maximum organizations to process (0 = all pending)")
	extractCommand.Flags().IntVar(&extractConcurrency, "concurrency", 0, "Organizations processed in parallel")
	extractCommand.Flags().BoolVar(&extractUseBrowser, "browser", false, "Render every page in headless Chrome (requires Chrome)")
	extractCommand.Flags().BoolVar(&extractDryRun, "dry-run", false, "Print extracted founders without writing to the store")
	extractCommand.Flags().BoolVar(&extractPeopleFallback, "people-fallback", true, "Try <url>/people when the main page yields no founders")
	extractCommand.Flags().StringVar(&extractOrgID, "org", "", "Extract only this organization id")

	rootCmd.AddCommand(extractCommand)
}

func runExtractCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = extractConcurrency
	}
	if cmd.Flags().Changed("browser") {
		cfg.UseBrowser = extractUseBrowser
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	ex, noise, err := newExtraction(cfg, log)
	if err != nil {
		return err
	}

	opts := runOptions(cfg)
	opts.Limit = extractLimit
	opts.DryRun = extractDryRun
	opts.PeopleFallback = extractPeopleFallback

	runner := pipeline.NewRunner(st, newFetcher(cfg, st, log), ex, noise, log, opts)
	var summary *pipeline.Summary
	if extractOrgID != "" {
		summary, err = runOne(ctx, st, runner, extractOrgID)
	} else {
		summary, err = runner.Run(ctx)
	}
	if summary == nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	if extractDryRun {
		for _, res := range summary.Results {
			if len(res.Drafts) == 0 {
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "\n%s (%s)\n", res.Organization.DisplayName(), res.Organization.CanonicalURL)
			printer.PrintFounders(res.Drafts)
		}
	}
	printer.PrintSummary(summary)
	return err
}

func runOne(ctx context.Context, st store, runner *pipeline.Runner, rawID string) (*pipeline.Summary, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization id %q: %w", rawID, err)
	}
	org, err := st.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("organization %s not found", id)
	}
	res := runner.RunOrganization(ctx, *org)
	return pipeline.Summarize([]*pipeline.OrgResult{&res}), res.Err
}
