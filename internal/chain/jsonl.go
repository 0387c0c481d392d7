package chain

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ReadJSONL parses one contract object per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)

	// chain exports can carry long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	records := []Record{}
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var dto jsonRecordDTO
		if err := json.Unmarshal(line, &dto); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedChain, lineNum, err)
		}
		records = append(records, dto.toRecord())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl chain: %w", err)
	}
	return records, nil
}
