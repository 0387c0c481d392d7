package chain

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported chain file format")
	ErrMalformedChain    = errors.New("malformed chain document")
)
