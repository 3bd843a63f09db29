package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000

	// validation errors, rejected immediately and never retried

	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100100
	// ErrInvalidAddress invalid address
	ErrInvalidAddress ErrorCode = 100101
	// ErrUnsupportedAsset asset not in the configured identifier map
	ErrUnsupportedAsset ErrorCode = 100102
	// ErrInvalidPoolConfig pool violates threshold >= max LTV
	ErrInvalidPoolConfig ErrorCode = 100103
	// ErrPositionNotFound no position
	ErrPositionNotFound ErrorCode = 100104
	// ErrPoolNotFound no pool
	ErrPoolNotFound ErrorCode = 100105
	// ErrInvalidTraceID trace id is not a valid uuid
	ErrInvalidTraceID ErrorCode = 100106

	// oracle errors, drive the fallback chain and only surface once
	// every fallback is exhausted

	// ErrZeroPrice oracle returned a non-positive price
	ErrZeroPrice ErrorCode = 100200
	// ErrStalePrice quote age exceeds the staleness tolerance
	ErrStalePrice ErrorCode = 100201
	// ErrInsufficientSources aggregated source count below minimum
	ErrInsufficientSources ErrorCode = 100202
	// ErrNetworkTimeout oracle query timed out
	ErrNetworkTimeout ErrorCode = 100203

	// safety errors, always rejected, never retried

	// ErrLTVExceeded operation would exceed the pool max LTV
	ErrLTVExceeded ErrorCode = 100300
	// ErrInsufficientLiquidity borrowed exceeds supplied
	ErrInsufficientLiquidity ErrorCode = 100301
	// ErrInsufficientCollateral seizure exceeds remaining collateral
	ErrInsufficientCollateral ErrorCode = 100302
	// ErrHealthFactorBelowOne operation would leave the position liquidatable
	ErrHealthFactorBelowOne ErrorCode = 100303
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

// Temporary reports whether the error belongs to the oracle class and the
// caller may retry, as opposed to a validation or safety rejection
func (e ErrorCode) Temporary() bool {
	return e >= 100200 && e < 100300
}
