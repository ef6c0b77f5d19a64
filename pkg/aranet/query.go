package aranet

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultSensorFields is the field set requested when the caller does not
// name one.
var DefaultSensorFields = []string{"metrics", "telemetry", "name"}

// recognizedFields are the item fields the sensors endpoint accepts.
// Anything else is rejected before a request is sent.
var recognizedFields = map[string]struct{}{
	"name":         {},
	"metrics":      {},
	"telemetry":    {},
	"devices":      {},
	"type":         {},
	"integrations": {},
	"skills":       {},
}

var timezonePattern = regexp.MustCompile(`^[+-]?[0-9]{4}$`)

// buildItemQuery encodes a field selection for the sensors endpoint. The
// service takes a single comma-joined fields parameter; request order is
// preserved.
func buildItemQuery(fields []string) (url.Values, error) {
	for _, f := range fields {
		if _, ok := recognizedFields[f]; !ok {
			return nil, &InvalidFieldError{Field: f}
		}
	}
	q := url.Values{}
	q.Set("fields", strings.Join(fields, ","))
	return q, nil
}

// buildTimeseriesQuery validates and encodes the parameters of an export
// request. From and to must be RFC 3339 instants with from <= to; the
// timezone is a strict hhmm offset. Instants are re-encoded in UTC, which
// never moves them.
func buildTimeseriesQuery(from, to, timezone string, metricIDs []string) (url.Values, error) {
	fromT, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return nil, &InvalidRangeError{Reason: "cannot parse from time", Err: err}
	}
	toT, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return nil, &InvalidRangeError{Reason: "cannot parse to time", Err: err}
	}
	if fromT.After(toT) {
		return nil, &InvalidRangeError{Reason: "from time is after to time"}
	}
	if !timezonePattern.MatchString(timezone) {
		return nil, &InvalidTimezoneError{Timezone: timezone}
	}
	if len(metricIDs) == 0 {
		return nil, ErrNoMetrics
	}

	q := url.Values{}
	q.Set("metric", strings.Join(metricIDs, ","))
	q.Set("from", fromT.UTC().Format(time.RFC3339))
	q.Set("to", toT.UTC().Format(time.RFC3339))
	q.Set("timezone", timezone)
	return q, nil
}

// offsetLocation turns an hhmm offset string into a fixed time.Location.
func offsetLocation(timezone string) (*time.Location, error) {
	if !timezonePattern.MatchString(timezone) {
		return nil, &InvalidTimezoneError{Timezone: timezone}
	}
	sign := 1
	digits := timezone
	switch timezone[0] {
	case '+':
		digits = timezone[1:]
	case '-':
		sign = -1
		digits = timezone[1:]
	}
	hours, _ := strconv.Atoi(digits[:2])
	minutes, _ := strconv.Atoi(digits[2:])
	return time.FixedZone("UTC"+timezone, sign*(hours*3600+minutes*60)), nil
}
