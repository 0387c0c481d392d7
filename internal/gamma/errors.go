package gamma

import "errors"

var (
	ErrInvalidParams         = errors.New("invalid engine parameters")
	ErrInvalidReferencePrice = errors.New("reference price must be a positive finite number")
)
