// Package aranet is a client for the Aranet Cloud sensor-data API: login and
// session caching, parameterized reads, and projection of the cloud's nested
// JSON into flat tables.
package aranet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// errUnauthorized marks a 401 from a data endpoint so the client can tell a
// stale token apart from other transport failures.
var errUnauthorized = errors.New("unauthorized")

// Client talks to the Aranet Cloud. Before each operation it loads the
// cached session optimistically; when the cloud rejects the token it
// re-logs-in exactly once and retries the request exactly once.
type Client struct {
	cfg       *Config
	client    *http.Client
	limit     *rate.Limiter
	log       *zap.Logger
	clock     clockwork.Clock
	labels    MetricLabels
	cacheFile string
	timeout   time.Duration

	store *SessionStore
	auth  *Authenticator
}

type Option func(c *Client) error

func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, &ConfigError{Reason: "no configuration provided"}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		log:     zap.L(),
		clock:   clockwork.NewRealClock(),
		labels:  mergedLabels(),
		limit:   rate.NewLimiter(rate.Every(time.Second), 4),
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: 30 * time.Second,
	}

	// apply the options
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}

	c.store = NewSessionStore(c.log)
	c.auth = &Authenticator{cfg: c.cfg, client: c.client, log: c.log, clock: c.clock}
	return c, nil
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) error {
		c.client = h
		return nil
	}
}

// WithCacheFile enables persisting the login session to path. Without it
// every client instance logs in on its first operation.
func WithCacheFile(path string) Option {
	return func(c *Client) error {
		c.cacheFile = path
		return nil
	}
}

func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) error {
		c.limit = l
		return nil
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) error {
		c.clock = clock
		return nil
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// WithMetricLabels replaces the metric-id label dictionary used for table
// columns, e.g. one built from GetMetrics.
func WithMetricLabels(labels MetricLabels) Option {
	return func(c *Client) error {
		c.labels = labels
		return nil
	}
}

// GetSensorsInfo returns the latest data for all sensors in the space. A nil
// fields slice requests DefaultSensorFields; unknown field names are
// rejected before any request is sent.
func (c *Client) GetSensorsInfo(ctx context.Context, fields []string) (*SensorsInfoResponse, error) {
	if len(fields) == 0 {
		fields = DefaultSensorFields
	}
	q, err := buildItemQuery(fields)
	if err != nil {
		return nil, err
	}

	c.log.Info("making request for sensor data to Aranet cloud")
	var out SensorsInfoResponse
	if err := c.get(ctx, func(space string) string { return "/sensors/" + space }, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSensorData fetches the history of one sensor between from and to (both
// RFC 3339) and projects it into a table. An empty timezone means UTC
// ("0000"); a nil metric list requests the default environmental metrics.
func (c *Client) GetSensorData(ctx context.Context, sensorID, from, to, timezone string, metricIDs []string) (*TimeSeriesTable, error) {
	if timezone == "" {
		timezone = "0000"
	}
	if len(metricIDs) == 0 {
		metricIDs = DefaultMetricIDs
	}
	q, err := buildTimeseriesQuery(from, to, timezone, metricIDs)
	if err != nil {
		return nil, err
	}

	c.log.Info("making request for sensor data to Aranet cloud", zap.String("sensorId", sensorID))
	var out TimeseriesResponse
	pathFor := func(space string) string {
		return "/sensors/" + space + "/sensor/" + url.PathEscape(sensorID) + "/export"
	}
	if err := c.get(ctx, pathFor, q, &out); err != nil {
		return nil, err
	}

	table, err := ProjectTimeseries(&out, metricIDs, timezone, c.labels)
	if err != nil {
		return nil, err
	}
	c.log.Info("downloaded sensor data records",
		zap.String("sensorId", sensorID),
		zap.Int("records", len(table.Rows)),
	)
	return table, nil
}

// GetMetrics returns the metric catalog of the space.
func (c *Client) GetMetrics(ctx context.Context) (*MetricsResponse, error) {
	var out MetricsResponse
	if err := c.get(ctx, func(space string) string { return "/metrics/" + space }, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRules returns the alert rules of the space.
func (c *Client) GetRules(ctx context.Context) (*RulesResponse, error) {
	var out RulesResponse
	if err := c.get(ctx, func(space string) string { return "/rules/" + space }, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGateways returns the base stations of the space.
func (c *Client) GetGateways(ctx context.Context) (*GatewaysResponse, error) {
	var out GatewaysResponse
	if err := c.get(ctx, func(space string) string { return "/gateways/" + space }, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Labels returns the label dictionary the client projects tables with.
func (c *Client) Labels() MetricLabels { return c.labels }

// get runs one logical operation: obtain a valid session, send the request,
// and on a 401 re-login once and retry once. A second 401 is final.
func (c *Client) get(ctx context.Context, pathFor func(spaceID string) string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess := c.store.Load(c.cacheFile)
	if sess == nil {
		var err error
		if sess, err = c.login(ctx); err != nil {
			return err
		}
	}

	raw, err := c.send(ctx, sess, pathFor, query)
	if errors.Is(err, errUnauthorized) {
		c.log.Warn("Aranet cloud rejected the session token, logging in again")
		if sess, err = c.login(ctx); err != nil {
			return err
		}
		raw, err = c.send(ctx, sess, pathFor, query)
		if errors.Is(err, errUnauthorized) {
			return &AuthenticationError{Reason: "request unauthorized after re-login"}
		}
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Endpoint: c.cfg.Endpoint, Err: err}
	}
	return nil
}

// login authenticates and persists the new session best-effort: a cache
// write failure is logged, never fatal for the operation.
func (c *Client) login(ctx context.Context) (*Session, error) {
	sess, err := c.auth.Login(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(c.cacheFile, sess); err != nil {
		c.log.Error("error saving the login data to cache", zap.Error(err))
	}
	return sess, nil
}

// send performs a single authorized GET. A 401 maps to errUnauthorized;
// everything else that fails is a TransportError.
func (c *Client) send(ctx context.Context, sess *Session, pathFor func(spaceID string) string, query url.Values) ([]byte, error) {
	spaceID, err := resolveSpaceID(sess.Login, c.cfg.Space, c.log)
	if err != nil {
		return nil, err
	}

	u := c.cfg.Endpoint + pathFor(spaceID)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: u, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	// apply the ratelimit
	if err := c.limit.Wait(ctx); err != nil {
		return nil, &TransportError{Endpoint: u, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: u, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: u, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Endpoint: u, Status: resp.StatusCode, Body: excerpt(raw)}
	}
	return raw, nil
}
