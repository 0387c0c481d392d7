package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

// WriteTable renders the key levels and top strikes as text tables.
func WriteTable(w io.Writer, rep *Report) error {
	header := fmt.Sprintf("Reference price: %.2f  Regime: %s\n", rep.ReferencePrice, rep.Regime)
	if rep.Spread != nil {
		header += fmt.Sprintf("Spread: %.2f\n", *rep.Spread)
	}
	if _, err := io.WriteString(w, header+"\nKey Levels:\n"); err != nil {
		return err
	}

	levels := tablewriter.NewWriter(w)
	levels.SetHeader([]string{"Level", "Strike", "Gamma", "Futures"})
	levels.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, lvl := range rep.Levels.Named() {
		futures := "-"
		if c, ok := rep.Converted(lvl.Name); ok {
			futures = formatPrice(c.Futures)
		}
		levels.Append([]string{lvl.Name, formatPrice(lvl.Strike), formatGamma(lvl.Gamma), futures})
	}
	levels.Render()

	if _, err := io.WriteString(w, "\nTop Strikes:\n"); err != nil {
		return err
	}

	top := tablewriter.NewWriter(w)
	top.SetHeader([]string{"#", "Strike", "Net Gamma", "Volume", "Score"})
	top.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, s := range rep.TopStrikes {
		top.Append(rankRow(i+1, s))
	}
	top.Render()

	if len(rep.Alerts) > 0 {
		if _, err := io.WriteString(w, "\nAlerts:\n"); err != nil {
			return err
		}
		alerts := tablewriter.NewWriter(w)
		alerts.SetHeader([]string{"Level", "Target", "Price", "Distance"})
		for _, ev := range rep.Alerts {
			alerts.Append([]string{ev.Name, formatPrice(ev.Level), formatPrice(ev.Price), formatPrice(ev.Distance)})
		}
		alerts.Render()
	}
	return nil
}

func rankRow(pos int, s gamma.RankedStrike) []string {
	return []string{
		strconv.Itoa(pos),
		formatPrice(s.Strike),
		formatGamma(s.NetGamma),
		strconv.FormatInt(s.VolumeSum, 10),
		formatGamma(s.Score),
	}
}

func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatGamma(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
