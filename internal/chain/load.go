package chain

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const zstdExt = ".zst"

// Load reads a chain file, choosing the parser from the extension: .csv,
// .json or .jsonl, each optionally followed by .zst.
func Load(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chain: %w", err)
	}
	defer file.Close()

	name := strings.ToLower(filepath.Base(path))
	var r io.Reader = file
	if strings.HasSuffix(name, zstdExt) {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
		name = strings.TrimSuffix(name, zstdExt)
	}

	read, err := readerFor(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	records, err := read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func readerFor(name string) (func(io.Reader) ([]Record, error), error) {
	switch filepath.Ext(name) {
	case ".csv":
		return ReadCSV, nil
	case ".json":
		return ReadJSON, nil
	case ".jsonl":
		return ReadJSONL, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}
