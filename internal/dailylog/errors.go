package dailylog

import "errors"

var (
	// ErrStorage wraps every failure to read, encode or write the persisted log.
	ErrStorage = errors.New("log storage failure")

	// ErrOutOfRange indicates the date is not logged or the index is outside
	// its entries. The store is left unchanged.
	ErrOutOfRange = errors.New("entry out of range")
)
