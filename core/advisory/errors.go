package advisory

import "errors"

// Error marks any advisory failure: unreachable service, malformed reply, or
// an out-of-range value. Callers surface it distinctly so a client can tell
// "AI failed" apart from "save failed".
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "advisory: " + e.Reason + ": " + e.Err.Error()
	}
	return "advisory: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNotConfigured is returned when no API key is present.
var ErrNotConfigured = &Error{Reason: "no API key configured"}

// IsAdvisoryError reports whether err belongs to the advisory taxonomy.
func IsAdvisoryError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}
