package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrBadGranularity = errors.New("unknown granularity")
	ErrZeroDate       = errors.New("transaction has zero date")
)
