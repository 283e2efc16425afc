package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fishcast/internal/config"
	"fishcast/internal/decision"
	"fishcast/internal/job"
	"fishcast/internal/types"
)

type decideOptions struct {
	at       string
	trace    string
	catalog  string
	snapshot string
	offline  bool
	compact  bool
}

func newDecideCmd() *cobra.Command {
	opts := &decideOptions{}
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Generate a decision and print it as JSON",
		Example: `  fishcast decide --offline
  fishcast decide --snapshot replays/2026-10-15.yaml --at 2026-10-15T06:30:00+03:00 --trace full`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDecide(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.at, "at", "", "evaluation instant, RFC 3339 (default now)")
	f.StringVar(&opts.trace, "trace", "", "trace level: none, minimal or full (default DEFAULT_TRACE_LEVEL)")
	f.StringVar(&opts.catalog, "catalog", "", "catalogue directory (default CATALOG_DIR or embedded)")
	f.StringVar(&opts.snapshot, "snapshot", "", "replay readings from a snapshot file")
	f.BoolVar(&opts.offline, "offline", false, "use the offline data set, no network calls")
	f.BoolVar(&opts.compact, "compact", false, "print single-line JSON")
	return cmd
}

func runDecide(cmd *cobra.Command, opts *decideOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if opts.catalog != "" {
		cfg.Engine.CatalogDir = opts.catalog
	}
	if opts.snapshot != "" {
		cfg.Provider.SnapshotPath = opts.snapshot
	}
	if opts.offline {
		cfg.Provider.Offline = true
	}

	req := job.RunRequest{}
	if opts.at != "" {
		at, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return &config.ConfigError{Type: config.ErrParsing, Message: "--at must be RFC 3339", Err: err}
		}
		req.EvaluatedAt = at
	}
	if opts.trace != "" {
		req.TraceLevel = decision.ParseTraceLevel(opts.trace)
	}

	logger := newLogger(cfg.LogLevel)
	var clock types.Clock = types.RealClock{}
	if !req.EvaluatedAt.IsZero() {
		clock = types.FixedClock{T: req.EvaluatedAt.UTC()}
	}

	j, err := job.New(cmd.Context(), cfg, job.Deps{
		Slog:   logger,
		Logger: &slogAdapter{logger: logger},
		Clock:  clock,
	})
	if err != nil {
		return err
	}

	doc, err := j.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !opts.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write decision: %w", err)
	}
	return nil
}
