package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-levels/internal/chain"
	"github.com/dgnsrekt/gexbot-levels/internal/session"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions YYYY-MM-DD [END_DATE]",
		Short: "List market sessions in a date range",
		Long: `List the dates the exchange is open between the given dates (inclusive).

Examples:
  gexlevels sessions 2025-12-22 2026-01-02`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseDates(args)
			if err != nil {
				return err
			}

			cal, err := session.New(cfg.Session.Timezone)
			if err != nil {
				return err
			}

			open := marketDays(cal, dates)
			logger.Debug("market sessions",
				zap.Int("days", len(dates)),
				zap.Int("open", len(open)),
			)
			for _, d := range open {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}

	return cmd
}

func expirationsCmd() *cobra.Command {
	var chainPath string

	cmd := &cobra.Command{
		Use:   "expirations --chain FILE",
		Short: "List the expirations present in a chain file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := chain.Load(chainPath)
			if err != nil {
				return err
			}

			for _, exp := range chain.Expirations(records) {
				fmt.Fprintln(cmd.OutOrStdout(), exp)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chainPath, "chain", "", "options chain file")
	_ = cmd.MarkFlagRequired("chain")

	return cmd
}
