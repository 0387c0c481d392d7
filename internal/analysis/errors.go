package analysis

import "errors"

var ErrInvalidRequest = errors.New("invalid analysis request")
