package aranet

import (
	"errors"
	"fmt"
)

// ErrNoMetrics is returned when a time series request names no metric ids.
var ErrNoMetrics = errors.New("at least one metric id is required")

// ConfigError reports missing or malformed credentials configuration.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return "invalid configuration: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InvalidFieldError reports a field name the sensors endpoint does not accept.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("unknown sensor field %q", e.Field)
}

// InvalidRangeError reports an unparseable or inverted time range.
type InvalidRangeError struct {
	Reason string
	Err    error
}

func (e *InvalidRangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid time range: %s: %v", e.Reason, e.Err)
	}
	return "invalid time range: " + e.Reason
}

func (e *InvalidRangeError) Unwrap() error { return e.Err }

// InvalidTimezoneError reports a timezone string that is not a signed or
// unsigned 4-digit hhmm offset.
type InvalidTimezoneError struct {
	Timezone string
}

func (e *InvalidTimezoneError) Error() string {
	return fmt.Sprintf("invalid timezone %q, expected hhmm offset", e.Timezone)
}

// AuthenticationError reports a failed login, or a request that was still
// unauthorized after the single re-login attempt.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// TransportError reports a request that failed for reasons other than
// authentication: network errors, non-2xx statuses, undecodable bodies.
type TransportError struct {
	Endpoint string
	Status   int
	Body     string
	Err      error
}

func (e *TransportError) Error() string {
	msg := "request to " + e.Endpoint + " failed"
	if e.Status != 0 {
		msg = fmt.Sprintf("%s; [%d] %s", msg, e.Status, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProjectionError reports a response payload that does not match the shape
// the projector expects.
type ProjectionError struct {
	Reason string
}

func (e *ProjectionError) Error() string {
	return "cannot project response: " + e.Reason
}

// excerpt trims a response body for inclusion in an error message.
func excerpt(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
