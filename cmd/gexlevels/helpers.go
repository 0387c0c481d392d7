package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/gexbot-levels/internal/chain"
	"github.com/dgnsrekt/gexbot-levels/internal/config"
	"github.com/dgnsrekt/gexbot-levels/internal/report"
	"github.com/dgnsrekt/gexbot-levels/internal/session"
)

// flagFloat returns a pointer to value when the flag was set explicitly.
func flagFloat(cmd *cobra.Command, name string, value float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func writeReport(w io.Writer, rep *report.Report, format config.Format) error {
	switch format {
	case config.FormatJSON:
		return report.WriteJSON(w, rep)
	case config.FormatTable:
		return report.WriteTable(w, rep)
	case config.FormatCSV:
		return report.WriteCSV(w, rep)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// reportPath builds {dir}/{date}/{ticker}_levels.{ext}.
func reportPath(dir, date, ticker string, format config.Format) string {
	if ticker == "" {
		ticker = "chain"
	}
	if date == "" {
		date = "undated"
	}
	ext := string(format)
	if format == config.FormatTable {
		ext = "txt"
	}
	return filepath.Join(dir, date, fmt.Sprintf("%s_levels.%s", strings.ToLower(ticker), ext))
}

func tickerOf(records []chain.Record) string {
	for _, r := range records {
		if r.Ticker != "" {
			return r.Ticker
		}
	}
	return ""
}

// parseDates parses date arguments and returns a list of dates
func parseDates(args []string) ([]string, error) {
	start, err := time.Parse(session.DateLayout, args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid start date format (use YYYY-MM-DD): %w", err)
	}

	if len(args) == 1 {
		return []string{args[0]}, nil
	}

	end, err := time.Parse(session.DateLayout, args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid end date format (use YYYY-MM-DD): %w", err)
	}

	if end.Before(start) {
		return nil, fmt.Errorf("end date must be after start date")
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(session.DateLayout))
	}

	return dates, nil
}

// marketDays keeps the dates the exchange is open.
func marketDays(cal *session.Calendar, dates []string) []string {
	var open []string
	for _, d := range dates {
		if cal.IsMarketDay(d) {
			open = append(open, d)
		}
	}
	return open
}
