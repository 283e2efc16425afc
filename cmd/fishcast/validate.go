package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fishcast/internal/config"
	"fishcast/internal/external"
	"fishcast/internal/job"
)

func newValidateCmd() *cobra.Command {
	var catalogDir, snapshot string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and check the rule catalogue",
		Long: "Loads the four catalogue documents, applies schema and semantic checks " +
			"and prints the versions, rule counts, disabled rules and content digest. Exits 2 when the catalogue is invalid.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if catalogDir == "" {
				catalogDir = cfg.Engine.CatalogDir
			}
			b, err := job.LoadCatalog(catalogDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := catalogDir
			if source == "" {
				source = "embedded"
			}
			fmt.Fprintf(out, "catalogue: %s\n", source)
			active, disabled := b.Rules.Counts()
			fmt.Fprintf(out, "  rules:       %s (%d rules, %d active, %d disabled)\n",
				b.Versions.Rules, len(b.RuleSpecs), active, disabled)
			for _, r := range b.Rules.Disabled() {
				fmt.Fprintf(out, "    disabled: %s (%s)\n", r.ID, r.DisabledReason)
			}
			fmt.Fprintf(out, "  scoring:     %s\n", b.Versions.Scoring)
			fmt.Fprintf(out, "  seasonality: %s\n", b.Versions.Seasonality)
			fmt.Fprintf(out, "  locations:   %s (%d locations)\n", b.Versions.Locations, len(b.Locations))
			fmt.Fprintf(out, "  digest:      %s\n", b.Digest)
			for _, w := range b.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}

			if snapshot != "" {
				snap, err := external.LoadSnapshot(cmd.Context(), snapshot, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "snapshot: %s (weather=%t sea=%t lunar=%t reports=%d log=%d)\n",
					snapshot, snap.Weather != nil, snap.Sea != nil, snap.Lunar != nil,
					len(snap.Reports), len(snap.ReportLog))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogDir, "catalog", "", "catalogue directory (default CATALOG_DIR or embedded)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "also parse a local snapshot file")
	return cmd
}
