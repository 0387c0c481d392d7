package report

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

// dailyRowDTO is the one-line daily summary. Empty cells mean the value was
// not available.
type dailyRowDTO struct {
	Date         string `csv:"date"`
	Timestamp    string `csv:"timestamp"`
	IndexPrice   string `csv:"index_price"`
	FuturesPrice string `csv:"futures_price"`
	Spread       string `csv:"spread"`
	Regime       string `csv:"regime"`
	PutWall      string `csv:"put_wall"`
	PutWallFut   string `csv:"put_wall_futures"`
	CallWall     string `csv:"call_wall"`
	CallWallFut  string `csv:"call_wall_futures"`
	GammaFlip    string `csv:"gamma_flip"`
	GammaFlipFut string `csv:"gamma_flip_futures"`
}

// WriteCSV writes the daily summary row with a header.
func WriteCSV(w io.Writer, rep *Report) error {
	row := dailyRowDTO{
		Date:         rep.Date,
		Timestamp:    rep.GeneratedAt.Format(time.RFC3339),
		IndexPrice:   formatPrice(rep.ReferencePrice),
		FuturesPrice: optional(rep.FuturesPrice),
		Spread:       optional(rep.Spread),
		Regime:       string(rep.Regime),
	}
	row.PutWall, row.PutWallFut = rep.levelCells(gamma.LevelPutWall, rep.Levels.PutWall)
	row.CallWall, row.CallWallFut = rep.levelCells(gamma.LevelCallWall, rep.Levels.CallWall)
	row.GammaFlip, row.GammaFlipFut = rep.levelCells(gamma.LevelGammaFlip, rep.Levels.GammaFlip)

	rows := []dailyRowDTO{row}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write daily csv: %w", err)
	}
	return nil
}

func (r *Report) levelCells(name string, lvl *gamma.Level) (string, string) {
	if lvl == nil {
		return "", ""
	}
	futures := ""
	if c, ok := r.Converted(name); ok {
		futures = formatPrice(c.Futures)
	}
	return formatPrice(lvl.Strike), futures
}

func optional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatPrice(*f)
}
