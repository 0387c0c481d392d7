package chain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

// lenientFloat decodes numbers, quoted numbers and null. Anything it cannot
// read becomes zero.
type lenientFloat float64

func (f *lenientFloat) UnmarshalJSON(b []byte) error {
	*f = lenientFloat(parseFloat(strings.Trim(string(b), `"`)))
	return nil
}

type lenientCount int64

func (c *lenientCount) UnmarshalJSON(b []byte) error {
	*c = lenientCount(parseCount(strings.Trim(string(b), `"`)))
	return nil
}

type jsonRecordDTO struct {
	Ticker       string       `json:"ticker"`
	Expiration   string       `json:"expiration"`
	Strike       lenientFloat `json:"strike"`
	Type         string       `json:"type"`
	ContractType string       `json:"contract_type"`
	Volume       lenientCount `json:"volume"`
	OpenInterest lenientCount `json:"open_interest"`
	Gamma        lenientFloat `json:"gamma"`
}

func (dto jsonRecordDTO) toRecord() Record {
	side := dto.Type
	if side == "" {
		side = dto.ContractType
	}
	return Record{
		Ticker:       dto.Ticker,
		Expiration:   dto.Expiration,
		Strike:       float64(dto.Strike),
		Type:         gamma.ParseContractType(side),
		Volume:       int64(dto.Volume),
		OpenInterest: int64(dto.OpenInterest),
		Gamma:        float64(dto.Gamma),
	}
}

// DecodeRecords converts raw JSON contract objects, as found in an HTTP
// request body, into records using the same lenient field rules as ReadJSON.
func DecodeRecords(raw []json.RawMessage) ([]Record, error) {
	records := make([]Record, 0, len(raw))
	for i, msg := range raw {
		var dto jsonRecordDTO
		if err := json.Unmarshal(msg, &dto); err != nil {
			return nil, fmt.Errorf("%w: contract %d: %w", ErrMalformedChain, i, err)
		}
		records = append(records, dto.toRecord())
	}
	return records, nil
}

// ReadJSON parses a JSON array of contract objects.
func ReadJSON(r io.Reader) ([]Record, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json chain: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []Record{}, nil
	}

	var dtos []jsonRecordDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedChain, errorLine(body, err), err)
	}

	records := make([]Record, len(dtos))
	for i, dto := range dtos {
		records[i] = dto.toRecord()
	}
	return records, nil
}

// errorLine maps a decoder error offset to a 1-based line number.
func errorLine(body []byte, err error) int {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 1
	}
	if offset > int64(len(body)) {
		offset = int64(len(body))
	}
	return bytes.Count(body[:offset], []byte("\n")) + 1
}
