package normalize

import "errors"

// Sentinel kinds for normalization errors.
var (
	ErrZeroDate = errors.New("transaction has zero date")
)
