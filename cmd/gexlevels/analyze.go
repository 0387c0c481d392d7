package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-levels/internal/alert"
	"github.com/dgnsrekt/gexbot-levels/internal/analysis"
	"github.com/dgnsrekt/gexbot-levels/internal/chain"
	"github.com/dgnsrekt/gexbot-levels/internal/config"
)

func analyzeCmd() *cobra.Command {
	var (
		chainPath    string
		price        float64
		expiry       string
		futuresPrice float64
		spreadValue  float64
		watchPrice   float64
		volume       float64
		velocity     float64
		format       string
		output       string
		save         bool
		noFilter     bool
	)

	cmd := &cobra.Command{
		Use:   "analyze --chain FILE --price PRICE",
		Short: "Compute gamma levels for an options chain snapshot",
		Long: `Compute dealer gamma exposure, put wall, call wall and gamma flip for
one options chain snapshot.

The chain file may be CSV, JSON (array) or JSONL, optionally zstd
compressed (.zst suffix).

Examples:
  # Analyze the nearest expiration
  gexlevels analyze --chain spx.csv --price 5850

  # Convert levels to futures and check a live price
  gexlevels analyze --chain spx.jsonl --price 5850 --futures-price 5875.5 --watch-price 5876

  # Every expiration, rendered as a table
  gexlevels analyze --chain spx.json.zst --price 5850 --expiry all --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if format == "" {
				format = cfg.Output.Format
			}
			if !config.ValidFormats[config.Format(format)] {
				return fmt.Errorf("invalid format %q (use json, table or csv)", format)
			}
			if cmd.Flags().Changed("futures-price") && cmd.Flags().Changed("spread") {
				return fmt.Errorf("--futures-price and --spread are mutually exclusive")
			}

			records, err := chain.Load(chainPath)
			if err != nil {
				return err
			}
			logger.Info("chain loaded",
				zap.String("file", chainPath),
				zap.Int("contracts", len(records)),
			)

			svc, err := analysis.NewService(cfg, logger)
			if err != nil {
				return err
			}

			req := analysis.Request{
				Records:        records,
				ReferencePrice: price,
				Expiry:         expiry,
				FuturesPrice:   flagFloat(cmd, "futures-price", futuresPrice),
				Spread:         flagFloat(cmd, "spread", spreadValue),
				WatchPrice:     flagFloat(cmd, "watch-price", watchPrice),
				Observation: alert.Observation{
					Volume:   flagFloat(cmd, "volume", volume),
					Velocity: flagFloat(cmd, "velocity", velocity),
				},
				SkipFilter: noFilter,
			}

			rep, err := svc.Run(ctx, req)
			if err != nil {
				return err
			}
			rep.AnalysisID = uuid.New().String()

			for _, ev := range rep.Alerts {
				logger.Warn("level alert",
					zap.String("level", ev.Name),
					zap.Float64("levelPrice", ev.Level),
					zap.Float64("price", ev.Price),
					zap.Float64("distance", ev.Distance),
				)
			}

			if save && output == "" {
				output = reportPath(cfg.Output.Directory, rep.Date, tickerOf(records), config.Format(format))
			}

			if output != "" && output != "-" {
				if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				if err := writeReport(f, rep, config.Format(format)); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("closing output file: %w", err)
				}
				logger.Info("report written", zap.String("file", output))
				return nil
			}

			return writeReport(cmd.OutOrStdout(), rep, config.Format(format))
		},
	}

	cmd.Flags().StringVar(&chainPath, "chain", "", "options chain file (.csv, .json, .jsonl, optionally .zst)")
	cmd.Flags().Float64Var(&price, "price", 0, "reference (index) price")
	cmd.Flags().StringVar(&expiry, "expiry", "", "expiration YYYY-MM-DD, or \"all\" (default: nearest on or after today)")
	cmd.Flags().Float64Var(&futuresPrice, "futures-price", 0, "futures price used to derive the spread")
	cmd.Flags().Float64Var(&spreadValue, "spread", 0, "explicit futures minus index spread")
	cmd.Flags().Float64Var(&watchPrice, "watch-price", 0, "futures price to check against converted levels")
	cmd.Flags().Float64Var(&volume, "volume", 0, "observed futures volume for alert gating")
	cmd.Flags().Float64Var(&velocity, "velocity", 0, "observed price velocity for alert gating")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, table or csv (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to FILE instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "write the report under the configured output directory")
	cmd.Flags().BoolVar(&noFilter, "no-filter", false, "skip the strike range and volume filter")

	_ = cmd.MarkFlagRequired("chain")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}
