package ledger

import "errors"

// Sentinel kinds for ledger gateway errors.
var (
	ErrMissingColumns = errors.New("ledger header missing required columns")
	ErrMissingAccount = errors.New("row has empty account id")
	ErrMissingDate    = errors.New("row has empty date")
	ErrBadDate        = errors.New("unparseable date")
)
