// Package horizons fetches state vectors from the JPL Horizons API and turns them into
// orbitplane ephemeris records.
package horizons

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// DefaultURL is the Horizons API endpoint.
const DefaultURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

// Query selects a body and the time span of its vector table.
type Query struct {
	Center  string // coordinate center, e.g. 500@5 for Jupiter's barycenter
	Command string // body id, e.g. 502 for Europa
	Start   string
	Stop    string
	Step    string
}

// Values returns the query parameters of a state vector table in km and km/s,
// ICRF, ecliptic reference plane, with labels and object data.
func (q Query) Values() url.Values {
	vals := url.Values{"format": {"text"}}
	for key, val := range q.params() {
		vals.Set(key, "'"+val+"'")
	}
	return vals
}

// Encode returns Values as a query string. Values are percent-encoded inside literal quotes,
// with spaces as %20 rather than +.
func (q Query) Encode() string {
	params := q.params()
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("format=text")
	for _, key := range keys {
		fmt.Fprintf(&b, "&%s='%s'", key, strings.ReplaceAll(url.QueryEscape(params[key]), "+", "%20"))
	}
	return b.String()
}

func (q Query) params() map[string]string {
	return map[string]string{
		"MAKE_EPHEM":  "YES",
		"COMMAND":     q.Command,
		"EPHEM_TYPE":  "VECTORS",
		"CENTER":      q.Center,
		"START_TIME":  q.Start,
		"STOP_TIME":   q.Stop,
		"STEP_SIZE":   q.Step,
		"VEC_TABLE":   "3",
		"REF_SYSTEM":  "ICRF",
		"REF_PLANE":   "ECLIPTIC",
		"VEC_CORR":    "NONE",
		"CAL_TYPE":    "M",
		"OUT_UNITS":   "KM-S",
		"VEC_LABELS":  "YES",
		"VEC_DELTA_T": "NO",
		"CSV_FORMAT":  "NO",
		"OBJ_DATA":    "YES",
	}
}

// Validate validates a Query.
func (q Query) Validate() error {
	if q.Center == "" || q.Command == "" {
		return errors.New("both a coordinate center and a body id are required")
	}
	return nil
}

// Client is a Horizons API client. Transient failures are retried.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	logger  log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout of every attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// WithRetries sets the maximum number of retries.
func WithRetries(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithRetryWait sets the bounds of the backoff between attempts.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient returns a client for the provided API URL (DefaultURL if empty).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{baseURL: baseURL, http: retryablehttp.NewClient(), logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.With(c.logger, "subsys", "horizons")
	c.http.Logger = leveledLogger{c.logger}
	return c
}

// Fetch returns the raw text answer of Horizons for the query.
func (c *Client) Fetch(ctx context.Context, q Query) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	target := c.baseURL + "?" + q.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	level.Info(c.logger).Log("center", q.Center, "command", q.Command, "start", q.Start, "stop", q.Stop)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetching %s", q.Command)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("horizons answered %s: %s", resp.Status, truncate(string(body), 200))
	}
	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// leveledLogger adapts a go-kit logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger log.Logger
}

func (l leveledLogger) log(lvl func(log.Logger) log.Logger, msg string, keysAndValues []interface{}) {
	kv := append([]interface{}{"message", msg}, keysAndValues...)
	// retryablehttp passes requests and responses, which logfmt cannot encode.
	for i := 1; i < len(kv); i += 2 {
		kv[i] = fmt.Sprint(kv[i])
	}
	lvl(l.logger).Log(kv...)
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(level.Error, msg, keysAndValues)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(level.Info, msg, keysAndValues)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(level.Debug, msg, keysAndValues)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(level.Warn, msg, keysAndValues)
}
