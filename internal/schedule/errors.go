package schedule

import (
	"errors"
	"fmt"
)

// Tier-local failure classes. Every one of these is absorbed by the resolver's
// fall-through policy; only ErrBundledPayloadCorrupt can reach a caller.
var (
	ErrNetwork          = errors.New("network failure")
	ErrTimeout          = errors.New("fetch timed out")
	ErrMalformedPayload = errors.New("malformed schedule payload")
	ErrSchemaViolation  = errors.New("schedule schema violation")
	ErrCacheAbsent      = errors.New("schedule cache absent")
	ErrCacheCorrupt     = errors.New("schedule cache corrupt")

	// ErrBundledPayloadCorrupt means the payload compiled into the binary does
	// not decode. That is a packaging defect, not a runtime condition, and it
	// is the only error Resolve is allowed to return.
	ErrBundledPayloadCorrupt = errors.New("bundled schedule payload corrupt")
)

// HTTPStatusError reports a non-2xx response from the schedule endpoint.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}
