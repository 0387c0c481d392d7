package chain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

const sampleCSV = `ticker,expiration,strike,type,volume,open_interest,gamma
SPX,2025-03-07,5800,call,1200,3400,0.0021
SPX,2025-03-07,5800,P,900,2800,0.0019
SPX,2025-03-07,5850,Call,,1500,n/a
SPX,2025-03-10,5900,put,10,20,0.001
`

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	first := records[0]
	if first.Strike != 5800 || first.Type != gamma.Call || first.Volume != 1200 || first.OpenInterest != 3400 || first.Gamma != 0.0021 {
		t.Errorf("unexpected first record: %+v", first)
	}
	if records[1].Type != gamma.Put {
		t.Errorf("expected P to parse as put, got %q", records[1].Type)
	}

	degraded := records[2]
	if degraded.Volume != 0 || degraded.Gamma != 0 {
		t.Errorf("expected empty and unparsable fields to be zero, got %+v", degraded)
	}
	if degraded.Type != gamma.Call {
		t.Errorf("expected case-insensitive type, got %q", degraded.Type)
	}
}

func TestReadCSV_ColumnOrderAndExtras(t *testing.T) {
	input := "gamma,bid,strike,type,open_interest\n0.5,1.2,100,put,4\n"

	records, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if r := records[0]; r.Strike != 100 || r.Gamma != 0.5 || r.OpenInterest != 4 || r.Type != gamma.Put {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty csv should not error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	input := "strike,type,gamma\n100,call,\"0.5\n"

	_, err := ReadCSV(strings.NewReader(input))
	if !errors.Is(err, ErrMalformedChain) {
		t.Errorf("expected ErrMalformedChain, got %v", err)
	}
}

func TestReadJSON(t *testing.T) {
	input := `[
  {"strike": 100, "type": "put", "open_interest": 10, "gamma": 0.01, "volume": 5},
  {"strike": "110", "contract_type": "call", "open_interest": "20", "gamma": null},
  {"strike": 120, "type": "CALL", "volume": 7.0, "gamma": "bad"}
]`

	records, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	if r := records[0]; r.Strike != 100 || r.Type != gamma.Put || r.OpenInterest != 10 || r.Volume != 5 {
		t.Errorf("unexpected first record: %+v", r)
	}
	if r := records[1]; r.Strike != 110 || r.Type != gamma.Call || r.OpenInterest != 20 || r.Gamma != 0 {
		t.Errorf("expected quoted numbers and contract_type alias to decode, got %+v", r)
	}
	if r := records[2]; r.Volume != 7 || r.Gamma != 0 || r.Type != gamma.Call {
		t.Errorf("unexpected third record: %+v", r)
	}
}

func TestReadJSON_MalformedReportsLine(t *testing.T) {
	input := "[\n  {\"strike\": 100},\n  {\"strike\": 110,,}\n]"

	_, err := ReadJSON(strings.NewReader(input))
	if !errors.Is(err, ErrMalformedChain) {
		t.Fatalf("expected ErrMalformedChain, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected error to name line 3, got %v", err)
	}
}

func TestReadJSONL(t *testing.T) {
	input := `{"strike": 100, "type": "put", "open_interest": 10, "gamma": 0.01}

{"strike": 110, "type": "c", "open_interest": 20, "gamma": 0.02}
`

	records, err := ReadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Type != gamma.Call {
		t.Errorf("expected call, got %q", records[1].Type)
	}
}

func TestReadJSONL_MalformedReportsLine(t *testing.T) {
	input := "{\"strike\": 100}\n{\"strike\": 105}\nnot json\n"

	_, err := ReadJSONL(strings.NewReader(input))
	if !errors.Is(err, ErrMalformedChain) {
		t.Fatalf("expected ErrMalformedChain, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected error to name line 3, got %v", err)
	}
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "chain.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	jsonlPath := filepath.Join(dir, "chain.jsonl")
	if err := os.WriteFile(jsonlPath, []byte(`{"strike": 100, "type": "put"}`+"\n"), 0644); err != nil {
		t.Fatalf("failed to write jsonl: %v", err)
	}

	records, err := Load(csvPath)
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("expected 4 csv records, got %d", len(records))
	}

	records, err = Load(jsonlPath)
	if err != nil {
		t.Fatalf("load jsonl: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 jsonl record, got %d", len(records))
	}
}

func TestLoad_Zstd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.json.zst")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	if _, err := enc.Write([]byte(`[{"strike": 100, "type": "put", "open_interest": 1, "gamma": 0.5}]`)); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close encoder: %v", err)
	}
	f.Close()

	records, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Strike != 100 {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.txt")
	if err := os.WriteFile(path, []byte("strike\n100\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1200", 1200},
		{"1200.0", 1200},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"9223372036854775808", 0}, // 2^63 as a float
		{"1e19", 0},
		{"-1e19", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseCount(tt.in); got != tt.want {
				t.Errorf("parseCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
