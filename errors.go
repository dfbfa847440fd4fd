package papertrade

import "errors"

// Error taxonomy of the simulator. Operations wrap these sentinels with
// fmt.Errorf("...: %w", Err...) so callers can classify failures with
// errors.Is while still getting a contextual message.
var (
	// ErrValidation reports a malformed request: bad date format or range,
	// non-positive amount, weights not summing to 100, bad identifier, or a
	// duplicate (portfolio ID, tracked ticker). Rejected before any side
	// effect.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound reports a missing portfolio, strategy or ticker. Persistence
	// read failures (missing or corrupt file) surface as ErrNotFound too.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable reports missing market data: no price for a requested
	// date, an unreadable data file, or insufficient traded volume. It may
	// strike in the middle of a batch, in which case earlier purchases remain
	// committed.
	ErrUnavailable = errors.New("data unavailable")
)
