package aranet

import (
	"sort"
	"time"
)

// datetimeColumn is the first column of every time series table.
const datetimeColumn = "datetime"

// datetimeLayout is the fixed-width local-time format of that column.
const datetimeLayout = "2006-01-02 15:04:05"

// MetricLabel is the human-readable name and unit of one metric id.
type MetricLabel struct {
	Name string
	Unit string
}

// MetricLabels maps metric ids to labels. It is plain data passed into
// projection calls, never ambient state, so projection stays deterministic.
type MetricLabels map[string]MetricLabel

// Column is the table column label for a metric id, in the
// <name>(<unit>) convention. An id with no label keeps its raw id as the
// column label; readings are never silently dropped.
func (l MetricLabels) Column(id string) string {
	ml, ok := l[id]
	if !ok {
		return id
	}
	if ml.Unit == "" {
		return ml.Name
	}
	return ml.Name + "(" + ml.Unit + ")"
}

// DefaultMetricLabels covers the environmental metrics of Aranet CO2
// sensors, as listed by the metrics endpoint.
var DefaultMetricLabels = MetricLabels{
	"1": {Name: "temperature", Unit: "C"},
	"2": {Name: "humidity", Unit: "%"},
	"3": {Name: "co2", Unit: "ppm"},
	"4": {Name: "pressure", Unit: "hPa"},
}

// DefaultTelemetryLabels covers the device-health telemetry ids.
var DefaultTelemetryLabels = MetricLabels{
	"61": {Name: "rssi", Unit: "dBm"},
	"62": {Name: "battery", Unit: "%"},
}

// DefaultMetricIDs is the metric selection used when a caller requests
// sensor data without naming metrics.
var DefaultMetricIDs = []string{"1", "2", "3", "4"}

// mergedLabels combines the default metric and telemetry dictionaries.
func mergedLabels() MetricLabels {
	m := make(MetricLabels, len(DefaultMetricLabels)+len(DefaultTelemetryLabels))
	for id, l := range DefaultMetricLabels {
		m[id] = l
	}
	for id, l := range DefaultTelemetryLabels {
		m[id] = l
	}
	return m
}

// ProjectTimeseries pivots a metric-grouped export response into one row per
// distinct timestamp, ascending. Columns are the datetime column followed by
// the requested metrics in request order. A metric with no sample at a given
// timestamp leaves its cell absent; it is never defaulted to zero.
func ProjectTimeseries(resp *TimeseriesResponse, metricIDs []string, timezone string, labels MetricLabels) (*TimeSeriesTable, error) {
	if resp == nil {
		return nil, &ProjectionError{Reason: "no time series payload"}
	}
	loc, err := offsetLocation(timezone)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]struct{}, len(metricIDs))
	for _, id := range metricIDs {
		requested[id] = struct{}{}
	}

	// samples per metric id, and the distinct timestamps across all
	// requested metrics
	samples := make(map[string]map[int64]float64, len(metricIDs))
	stampSet := map[int64]struct{}{}
	for _, series := range resp.Readings {
		id := string(series.ID)
		if _, ok := requested[id]; !ok {
			continue
		}
		byTime, ok := samples[id]
		if !ok {
			byTime = make(map[int64]float64, len(series.Values))
			samples[id] = byTime
		}
		for _, p := range series.Values {
			byTime[p.Time] = p.Value
			stampSet[p.Time] = struct{}{}
		}
	}

	stamps := make([]int64, 0, len(stampSet))
	for t := range stampSet {
		stamps = append(stamps, t)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	columns := make([]string, 0, len(metricIDs)+1)
	columns = append(columns, datetimeColumn)
	for _, id := range metricIDs {
		columns = append(columns, labels.Column(id))
	}

	table := &TimeSeriesTable{Columns: columns, Rows: make([]TableRow, 0, len(stamps))}
	for _, t := range stamps {
		row := TableRow{
			Time:     time.Unix(t, 0).UTC(),
			Datetime: time.Unix(t, 0).In(loc).Format(datetimeLayout),
			Cells:    make(map[string]float64, len(metricIDs)),
		}
		for _, id := range metricIDs {
			if v, ok := samples[id][t]; ok {
				row.Cells[labels.Column(id)] = v
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ProjectItems flattens a sensors response into SensorItem values,
// preserving item and per-item reading order. An empty items array yields
// an empty slice, not an error.
func ProjectItems(resp *SensorsInfoResponse) ([]SensorItem, error) {
	if resp == nil {
		return nil, &ProjectionError{Reason: "no sensors payload"}
	}
	items := make([]SensorItem, 0, len(resp.Data.Items))
	for _, p := range resp.Data.Items {
		items = append(items, SensorItem{
			ID:        string(p.ID),
			Name:      p.Name,
			TypeID:    string(p.Type),
			Metrics:   p.Metrics,
			Telemetry: p.Telemetry,
			Devices:   p.Devices,
		})
	}
	return items, nil
}
