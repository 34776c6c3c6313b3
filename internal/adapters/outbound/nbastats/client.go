// Package nbastats is the outbound adapter for the NBA public data
// feeds: the CDN live endpoints (scoreboard, boxscore) and the stats API
// (career totals, game logs, rosters, team defense). All calls share one
// rate limiter because the stats API throttles aggressively.
package nbastats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/raghav-misra/buddard/internal/telemetry"
)

const (
	defaultStatsBase = "https://stats.nba.com/stats"
	defaultLiveBase  = "https://cdn.nba.com/static/json/liveData"
	requestTimeout   = 15 * time.Second
	requestSpacing   = 2 * time.Second // stats API starts returning 429s below this
)

// ErrNotActive reports a game whose live feed is not being served yet
// (pre-game the CDN answers with an error document, not JSON).
var ErrNotActive = errors.New("game not active")

// ErrNoData reports an empty or missing result for an otherwise valid
// request. Callers treat it as "skip", never as fatal.
var ErrNoData = errors.New("no data")

// Headers mimicking a browser; the stats API rejects bare clients.
var statsHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.5",
	"Referer":         "https://www.nba.com/",
}

type Client struct {
	statsBase  string
	liveBase   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient() *Client {
	return &Client{
		statsBase:  defaultStatsBase,
		liveBase:   defaultLiveBase,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Every(requestSpacing), 1),
	}
}

// NewClientWithBases overrides the endpoint bases (tests, mocks, proxies).
func NewClientWithBases(statsBase, liveBase string) *Client {
	c := NewClient()
	if statsBase != "" {
		c.statsBase = statsBase
	}
	if liveBase != "" {
		c.liveBase = liveBase
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	for k, v := range statsHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()
	telemetry.Metrics.ProviderLatency.Record(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("nbastats: GET %s: status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}

	telemetry.Debugf("nbastats: GET %s (%s)", url, time.Since(start))
	return nil
}

// ── stats API resultSet tables ─────────────────────────────────

// statsResponse is the generic stats API envelope: named tables with a
// header row and untyped row cells.
type statsResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

func (r statsResponse) table(name string) (resultSet, bool) {
	for _, rs := range r.ResultSets {
		if rs.Name == name {
			return rs, true
		}
	}
	return resultSet{}, false
}

func (rs resultSet) column(name string) int {
	for i, h := range rs.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// row wraps one untyped rowSet entry with typed accessors. Cells arrive
// as float64, string, or null depending on the column.
type row struct {
	rs   resultSet
	vals []any
}

func (rs resultSet) rows() []row {
	out := make([]row, 0, len(rs.RowSet))
	for _, vals := range rs.RowSet {
		out = append(out, row{rs: rs, vals: vals})
	}
	return out
}

func (r row) float(col string) float64 {
	i := r.rs.column(col)
	if i < 0 || i >= len(r.vals) {
		return 0
	}
	switch v := r.vals[i].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func (r row) str(col string) string {
	i := r.rs.column(col)
	if i < 0 || i >= len(r.vals) {
		return ""
	}
	switch v := r.vals[i].(type) {
	case string:
		return v
	case float64:
		// Integer ids are served as numbers; render without exponent.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
