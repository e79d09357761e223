package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/founder-scout/internal/types"
)

var addOrgCommand = &cobra.Command{
	Use:   "add-org",
	Short: "Register an organization for extraction",
	Long: `Registers an organization. An existing organization with the same canonical URL
(or, without a URL, the same name) is reused instead of creating a duplicate.`,
	RunE: runAddOrgCmd,
}

var addOrg types.OrganizationRecord

func init() {
	flags := addOrgCommand.Flags()
	flags.StringVar(&addOrg.Name, "name", "", "Organization name (required)")
	flags.StringVar(&addOrg.CanonicalURL, "url", "", "Directory page URL to extract founders from")
	flags.StringVar(&addOrg.Batch, "batch", "", "Batch label, e.g. W24")
	flags.StringVar(&addOrg.Description, "description", "", "Short description")
	flags.StringVar(&addOrg.Website, "website", "", "Company website")
	flags.StringVar(&addOrg.Location, "location", "", "Location")
	flags.StringVar(&addOrg.Industry, "industry", "", "Industry")
	flags.BoolVar(&addOrg.IsHiring, "hiring", false, "Organization is hiring")
	_ = addOrgCommand.MarkFlagRequired("name")

	rootCmd.AddCommand(addOrgCommand)
}

func runAddOrgCmd(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(addOrg.Name) == "" {
		return fmt.Errorf("--name must not be empty")
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, closeStore, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	org, created, err := st.FindOrCreateOrganization(cmd.Context(), addOrg)
	if err != nil {
		return err
	}
	verb := "exists"
	if created {
		verb = "created"
	}
	_, _ = fmt.Fprintf(os.Stdout, "%s %s %s\n", verb, org.ID, org.DisplayName())
	return nil
}
