package chain

import (
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

// csvRecordDTO keeps every column as text so a bad cell degrades to zero
// instead of failing the whole file.
type csvRecordDTO struct {
	Ticker       string `csv:"ticker"`
	Expiration   string `csv:"expiration"`
	Strike       string `csv:"strike"`
	Type         string `csv:"type"`
	Volume       string `csv:"volume"`
	OpenInterest string `csv:"open_interest"`
	Gamma        string `csv:"gamma"`
}

func (dto csvRecordDTO) toRecord() Record {
	return Record{
		Ticker:       dto.Ticker,
		Expiration:   dto.Expiration,
		Strike:       parseFloat(dto.Strike),
		Type:         gamma.ParseContractType(dto.Type),
		Volume:       parseCount(dto.Volume),
		OpenInterest: parseCount(dto.OpenInterest),
		Gamma:        parseFloat(dto.Gamma),
	}
}

// ReadCSV parses a headered CSV chain. Columns may appear in any order and
// unknown columns are ignored.
func ReadCSV(r io.Reader) ([]Record, error) {
	var dtos []csvRecordDTO
	if err := gocsv.Unmarshal(r, &dtos); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("%w: csv: %w", ErrMalformedChain, err)
	}

	records := make([]Record, len(dtos))
	for i, dto := range dtos {
		records[i] = dto.toRecord()
	}
	return records, nil
}
