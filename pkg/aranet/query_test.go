package aranet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildItemQuery(t *testing.T) {
	q, err := buildItemQuery([]string{"name", "metrics", "telemetry"})
	require.NoError(t, err)
	assert.Equal(t, "name,metrics,telemetry", q.Get("fields"))
}

func TestBuildItemQueryUnknownField(t *testing.T) {
	_, err := buildItemQuery([]string{"name", "favourites"})
	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "favourites", fieldErr.Field)
}

func TestBuildTimeseriesQuery(t *testing.T) {
	q, err := buildTimeseriesQuery(
		"2021-03-23T10:00:00Z", "2021-03-24T10:00:00Z", "0000", []string{"1", "3"})
	require.NoError(t, err)
	assert.Equal(t, "1,3", q.Get("metric"))
	assert.Equal(t, "0000", q.Get("timezone"))
}

func TestBuildTimeseriesQueryRoundTrip(t *testing.T) {
	// offsets in the inputs must not shift the encoded instants
	from := "2021-03-23T10:15:30+02:00"
	to := "2021-03-23T23:45:00-05:00"
	q, err := buildTimeseriesQuery(from, to, "+0200", []string{"1"})
	require.NoError(t, err)

	wantFrom, _ := time.Parse(time.RFC3339, from)
	wantTo, _ := time.Parse(time.RFC3339, to)
	gotFrom, err := time.Parse(time.RFC3339, q.Get("from"))
	require.NoError(t, err)
	gotTo, err := time.Parse(time.RFC3339, q.Get("to"))
	require.NoError(t, err)

	assert.True(t, gotFrom.Equal(wantFrom))
	assert.True(t, gotTo.Equal(wantTo))
}

func TestBuildTimeseriesQueryInvertedRange(t *testing.T) {
	_, err := buildTimeseriesQuery(
		"2021-03-24T10:00:00Z", "2021-03-23T10:00:00Z", "0000", []string{"1"})
	var rangeErr *InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestBuildTimeseriesQueryUnparseableInstant(t *testing.T) {
	_, err := buildTimeseriesQuery("yesterday", "2021-03-23T10:00:00Z", "0000", []string{"1"})
	var rangeErr *InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestBuildTimeseriesQueryBadTimezone(t *testing.T) {
	for _, tz := range []string{"", "12", "12345", "+12:00", "abcd", "+-0100"} {
		_, err := buildTimeseriesQuery(
			"2021-03-23T10:00:00Z", "2021-03-24T10:00:00Z", tz, []string{"1"})
		var tzErr *InvalidTimezoneError
		assert.ErrorAs(t, err, &tzErr, "timezone %q", tz)
	}
}

func TestBuildTimeseriesQueryNoMetrics(t *testing.T) {
	_, err := buildTimeseriesQuery(
		"2021-03-23T10:00:00Z", "2021-03-24T10:00:00Z", "0000", nil)
	assert.ErrorIs(t, err, ErrNoMetrics)
}

func TestOffsetLocation(t *testing.T) {
	for tz, want := range map[string]int{
		"0000":  0,
		"+0230": 2*3600 + 30*60,
		"-0500": -5 * 3600,
	} {
		loc, err := offsetLocation(tz)
		require.NoError(t, err)
		_, offset := time.Unix(0, 0).In(loc).Zone()
		assert.Equal(t, want, offset, "timezone %q", tz)
	}
}
