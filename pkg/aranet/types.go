package aranet

import (
	"encoding/json"
	"time"
)

// ID is a sensor, metric, or device identifier. The cloud is inconsistent
// about whether ids arrive as JSON numbers or strings, so both are accepted.
type ID string

func (i *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = ID(n.String())
	return nil
}

// MetricRecord is a single reading from a sensor item's metrics or telemetry
// array. Keys other than id, t, and v (percent variants, novelty flags) are
// kept verbatim in Extra.
type MetricRecord struct {
	ID    string
	Time  int64 // epoch seconds
	Value float64
	Extra map[string]json.RawMessage
}

func (m *MetricRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	rec := MetricRecord{}
	for k, v := range fields {
		switch k {
		case "id":
			var id ID
			if err := json.Unmarshal(v, &id); err != nil {
				return err
			}
			rec.ID = string(id)
		case "t":
			if err := json.Unmarshal(v, &rec.Time); err != nil {
				return err
			}
		case "v":
			if err := json.Unmarshal(v, &rec.Value); err != nil {
				return err
			}
		default:
			if rec.Extra == nil {
				rec.Extra = map[string]json.RawMessage{}
			}
			rec.Extra[k] = v
		}
	}
	*m = rec
	return nil
}

// Timestamp returns the reading time as a time.Time in UTC.
func (m *MetricRecord) Timestamp() time.Time {
	return time.Unix(m.Time, 0).UTC()
}

// DevicePairing describes a gateway a sensor is, or was, paired to.
type DevicePairing struct {
	ID         ID     `json:"id"`
	PairedAt   string `json:"pair"`
	RemovedAt  string `json:"removed,omitempty"`
	SensorName string `json:"name,omitempty"`
}

// Removed reports whether this pairing has been dissolved.
func (d *DevicePairing) Removed() bool { return d.RemovedAt != "" }

// SensorPayload is one element of the sensors endpoint's items array, as
// sent by the service. Which keys are present depends on the requested
// fields. The integrations and skills payloads are not documented by the
// cloud and are passed through undecoded.
type SensorPayload struct {
	ID           ID              `json:"id"`
	Name         string          `json:"name,omitempty"`
	Type         ID              `json:"type,omitempty"`
	Metrics      []MetricRecord  `json:"metrics,omitempty"`
	Telemetry    []MetricRecord  `json:"telemetry,omitempty"`
	Devices      []DevicePairing `json:"devices,omitempty"`
	Integrations json.RawMessage `json:"integrations,omitempty"`
	Skills       json.RawMessage `json:"skills,omitempty"`
}

// SensorsInfoResponse mirrors GET /sensors/{space}.
type SensorsInfoResponse struct {
	Data struct {
		Items []SensorPayload `json:"items"`
	} `json:"data"`
}

// SensorItem is the flattened form of a SensorPayload produced by
// ProjectItems.
type SensorItem struct {
	ID        string
	Name      string
	TypeID    string
	Metrics   []MetricRecord
	Telemetry []MetricRecord
	Devices   []DevicePairing
}

// MetricUnit is one unit a catalog metric can be reported in.
type MetricUnit struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Precision int    `json:"precision"`
	Default   bool   `json:"selected"`
}

// MetricCatalogEntry describes one metric from the metrics endpoint.
type MetricCatalogEntry struct {
	ID    ID           `json:"id"`
	Name  string       `json:"name"`
	Units []MetricUnit `json:"units"`
}

// MetricsResponse mirrors GET /metrics/{space}.
type MetricsResponse struct {
	Metrics []MetricCatalogEntry `json:"metrics"`
}

// Rule is one alert rule. The cloud does not document the full rule shape,
// so everything beyond id and name stays available through Raw.
type Rule struct {
	ID   ID              `json:"id"`
	Name string          `json:"name"`
	Raw  json.RawMessage `json:"-"`
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	type alias Rule
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Rule(a)
	r.Raw = append([]byte(nil), data...)
	return nil
}

// RulesResponse mirrors GET /rules/{space}.
type RulesResponse struct {
	Rules []Rule `json:"rules"`
}

// Gateway is one base station from the gateways endpoint.
type Gateway struct {
	ID     ID     `json:"id"`
	Device string `json:"device"`
	Serial string `json:"serial"`
}

// GatewaysResponse mirrors GET /gateways/{space}.
type GatewaysResponse struct {
	Devices []Gateway `json:"devices"`
}

// SeriesPoint is one sample of a per-metric series.
type SeriesPoint struct {
	Time  int64   `json:"t"`
	Value float64 `json:"v"`
}

// MetricSeries is the history of one metric: the export endpoint groups by
// metric, not by timestamp row.
type MetricSeries struct {
	ID     ID            `json:"id"`
	Values []SeriesPoint `json:"values"`
}

// TimeseriesResponse mirrors GET /sensors/{space}/sensor/{id}/export.
type TimeseriesResponse struct {
	Readings []MetricSeries `json:"readings"`
}

// TableRow is one row of a TimeSeriesTable. Cells is keyed by column label;
// a metric with no sample at this timestamp has no entry, it is never
// zero-filled.
type TableRow struct {
	Time     time.Time
	Datetime string
	Cells    map[string]float64
}

// TimeSeriesTable is the tabular projection of a TimeseriesResponse: one row
// per distinct timestamp in ascending order, the datetime column first,
// then one column per requested metric in request order.
type TimeSeriesTable struct {
	Columns []string
	Rows    []TableRow
}
