package domain

import "go.trai.ch/zerr"

// FutureDateHint explains an ErrOutOfRange raised while snapping a start past the calendar's last day.
const FutureDateHint = "`start_time` uses a future date, if you want to get future trading days, you can use: `future=True`"

var (
	// ErrDataNotFound is returned when the backend holds no data for a leaf over the requested range.
	ErrDataNotFound = zerr.New("data not found")

	// ErrOutOfRange is returned when a calendar range cannot be snapped to known trading timestamps.
	ErrOutOfRange = zerr.New("calendar range out of bounds")

	// ErrAlignment is returned when child series of one operator do not cover the same range.
	ErrAlignment = zerr.New("misaligned series")

	// ErrUnknownNamespace is returned when a cache namespace outside calendar, instrument and feature is requested.
	ErrUnknownNamespace = zerr.New("unknown cache namespace")

	// ErrInvalidPolicy is returned when the configured cache policy is not recognized.
	ErrInvalidPolicy = zerr.New("invalid cache policy, expected 'count' or 'bytesize'")

	// ErrInvalidFreq is returned when a frequency string cannot be parsed.
	ErrInvalidFreq = zerr.New("invalid frequency")

	// ErrInvalidWindow is returned when a rolling operator is built with a non-positive window.
	ErrInvalidWindow = zerr.New("rolling window must be positive")

	// ErrInvalidName is returned when a feature name or instrument code contains reserved characters.
	ErrInvalidName = zerr.New("invalid name, expected letters, digits, '_' or '.'")

	// ErrParseExpression is returned when an expression string cannot be parsed.
	ErrParseExpression = zerr.New("failed to parse expression")

	// ErrUnknownOperator is returned when an expression references an operator that does not exist.
	ErrUnknownOperator = zerr.New("unknown operator")

	// ErrInvalidRange is returned when an evaluation range has start after end or a negative start.
	ErrInvalidRange = zerr.New("invalid index range")

	// ErrInvalidTime is returned when a timestamp string matches none of the accepted layouts.
	ErrInvalidTime = zerr.New("invalid timestamp, expected YYYY-MM-DD, 'YYYY-MM-DD hh:mm:ss' or RFC 3339")

	// ErrInvalidFilter is returned when a filter pipe entry cannot be interpreted.
	ErrInvalidFilter = zerr.New("invalid instrument filter")

	// ErrComputationPanicked is returned to waiters when the in-flight computation panicked.
	ErrComputationPanicked = zerr.New("computation panicked")

	// ErrConfigReadFailed is returned when the settings file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the settings file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidSetting is returned when a settings value is out of its allowed domain.
	ErrInvalidSetting = zerr.New("invalid setting")

	// ErrUnknownBackend is returned when the configured storage backend is not supported.
	ErrUnknownBackend = zerr.New("unknown storage backend")

	// ErrStorageOpenFailed is returned when a storage backend cannot be opened.
	ErrStorageOpenFailed = zerr.New("failed to open storage backend")

	// ErrStorageQueryFailed is returned when a storage backend query fails.
	ErrStorageQueryFailed = zerr.New("storage query failed")

	// ErrStorageWriteFailed is returned when writing to a storage backend fails.
	ErrStorageWriteFailed = zerr.New("storage write failed")

	// ErrDatasetParseFailed is returned when a dataset file cannot be decoded.
	ErrDatasetParseFailed = zerr.New("failed to parse dataset file")

	// ErrStateCleanFailed is returned when persisted state cannot be removed.
	ErrStateCleanFailed = zerr.New("failed to remove persisted state")
)
