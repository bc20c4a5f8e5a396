// Package acs fetches tract-level demographics from the Census Bureau's
// American Community Survey 5-year API.
package acs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/urbanmetrics/walkability-cli/internal/census"
)

// ACS 5-year estimate variables, in request order.
var variables = []string{
	"B01003_001E", // total_population
	"B19013_001E", // median_household_income
	"B01002_001E", // median_age
	"B02001_002E", // white_alone
	"B02001_003E", // black_alone
	"B02001_005E", // asian_alone
	"B03003_003E", // hispanic_latino
}

// Client fetches ACS demographics for every tract in a county.
type Client interface {
	FetchTracts(ctx context.Context, stateFIPS, countyFIPS string) ([]census.Row, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the API endpoint, e.g. for a different survey year.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithAPIKey sets the Census API key. Keyless requests work but are
// limited to 500 per day per IP.
func WithAPIKey(key string) Option {
	return func(c *client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an ACS client against the 2022 5-year estimates.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    "https://api.census.gov/data/2022/acs/acs5",
		httpClient: &http.Client{Timeout: time.Minute},
		limiter:    rate.NewLimiter(2, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTracts requests every variable for all tracts in the county. The API
// responds with a JSON array of arrays whose first row is the header.
func (c *client) FetchTracts(ctx context.Context, stateFIPS, countyFIPS string) ([]census.Row, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "acs: rate limit wait")
	}

	q := url.Values{}
	q.Set("get", "NAME,"+strings.Join(variables, ","))
	q.Set("for", "tract:*")
	q.Set("in", fmt.Sprintf("state:%s county:%s", stateFIPS, countyFIPS))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "acs: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "acs: fetch tracts")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("acs: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var table [][]string
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, eris.Wrap(err, "acs: decode response")
	}
	return parseTable(table)
}

// parseTable converts the header+rows table into census rows, building the
// 11-digit GEOID from the trailing state/county/tract columns.
func parseTable(table [][]string) ([]census.Row, error) {
	if len(table) < 2 {
		return nil, eris.New("acs: response has no data rows")
	}

	header := table[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, required := range append([]string{"state", "county", "tract"}, variables...) {
		if _, ok := col[required]; !ok {
			return nil, eris.Errorf("acs: response missing column %s", required)
		}
	}

	rows := make([]census.Row, 0, len(table)-1)
	for _, rec := range table[1:] {
		if len(rec) != len(header) {
			continue
		}
		geoid := rec[col["state"]] + rec[col["county"]] + rec[col["tract"]]
		rows = append(rows, census.Row{
			GEOID:          geoid,
			Population:     cellFloat(rec[col["B01003_001E"]]),
			MedianIncome:   cellFloat(rec[col["B19013_001E"]]),
			MedianAge:      cellFloat(rec[col["B01002_001E"]]),
			WhiteAlone:     cellFloat(rec[col["B02001_002E"]]),
			BlackAlone:     cellFloat(rec[col["B02001_003E"]]),
			AsianAlone:     cellFloat(rec[col["B02001_005E"]]),
			HispanicLatino: cellFloat(rec[col["B03003_003E"]]),
		})
	}
	return rows, nil
}

// cellFloat parses an API cell. Null and unparseable cells become 0, the
// same convention the CSV loader uses for missing estimates.
func cellFloat(s string) float64 {
	if s == "" || s == "null" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
