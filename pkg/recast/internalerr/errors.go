package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// Pipeline errors. Only ErrInvalidInput and ErrUnsupportedMode abort a run;
	// the rest are recorded as diagnostics on the result.
	ErrUnsupportedMode   = errors.New("unsupported transformation mode")
	ErrOracleUnavailable = errors.New("oracle unavailable")
	ErrNoRootToken       = errors.New("no root token")
	ErrUnresolvedHead    = errors.New("unresolved ingredient head")
	ErrUnresolvedMethod  = errors.New("unresolved instruction method")
	ErrNoKnownSubstitute = errors.New("no known substitute")
)
