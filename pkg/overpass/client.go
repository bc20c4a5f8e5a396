// Package overpass queries the Overpass API for OpenStreetMap amenities.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// BBox is a south/west/north/east bounding box in WGS84 degrees.
type BBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

func (b BBox) String() string {
	return fmt.Sprintf("%f,%f,%f,%f", b.South, b.West, b.North, b.East)
}

// Client fetches amenities and road data from the Overpass API.
type Client interface {
	// FetchCategory fetches all amenities of one category inside the box.
	FetchCategory(ctx context.Context, cat model.Category, box BBox) ([]model.Amenity, error)

	// FetchAll fetches every category, continuing past per-category failures.
	FetchAll(ctx context.Context, box BBox) ([]model.Amenity, error)

	// FetchStreetNetwork fetches walkable highway ways and their nodes.
	FetchStreetNetwork(ctx context.Context, box BBox) ([]RoadNode, []RoadWay, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the Overpass interpreter endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit. Public Overpass
// instances throttle aggressively, so the default is conservative.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an Overpass client.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    "https://overpass-api.de/api/interpreter",
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		limiter:    rate.NewLimiter(rate.Limit(0.5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tagFilter is one OSM key=value pair an element may match.
type tagFilter struct {
	key   string
	value string
}

// categoryTags maps each amenity category to the OSM tags that define it.
var categoryTags = map[model.Category][]tagFilter{
	model.CategoryParks: {
		{"leisure", "park"}, {"leisure", "playground"},
		{"leisure", "recreation_ground"}, {"leisure", "garden"},
	},
	model.CategoryHospitals: {
		{"amenity", "hospital"}, {"amenity", "clinic"}, {"amenity", "doctors"},
	},
	model.CategoryUrgentCare: {
		{"amenity", "clinic"}, {"healthcare", "clinic"},
	},
	model.CategoryPharmacies: {
		{"amenity", "pharmacy"},
	},
	model.CategoryGrocery: {
		{"shop", "supermarket"}, {"shop", "grocery"}, {"shop", "convenience"},
	},
	model.CategorySchools: {
		{"amenity", "school"}, {"amenity", "kindergarten"},
		{"amenity", "college"}, {"amenity", "university"},
	},
	model.CategoryTransitStops: {
		{"public_transport", "stop_position"}, {"public_transport", "platform"},
		{"public_transport", "station"},
	},
	model.CategoryLibraries: {
		{"amenity", "library"},
	},
}

// BuildQuery renders the Overpass QL query for one category. Both nodes and
// ways are requested; ways come back with a computed center point.
func BuildQuery(cat model.Category, box BBox) (string, error) {
	tags, ok := categoryTags[cat]
	if !ok {
		return "", eris.Errorf("overpass: no tag mapping for category %s", cat)
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:90];(")
	for _, t := range tags {
		fmt.Fprintf(&b, `node[%q=%q](%s);`, t.key, t.value, box)
		fmt.Fprintf(&b, `way[%q=%q](%s);`, t.key, t.value, box)
	}
	b.WriteString(");out center;")
	return b.String(), nil
}

type overpassResponse struct {
	Elements []struct {
		Type   string  `json:"type"`
		ID     int64   `json:"id"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Nodes []int64           `json:"nodes"`
		Tags  map[string]string `json:"tags"`
	} `json:"elements"`
}

// execute posts one Overpass QL query and decodes the response. what names
// the request in errors.
func (c *client) execute(ctx context.Context, query, what string) (*overpassResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "overpass: rate limit wait")
	}

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "overpass: fetch %s", what)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("overpass: status %d fetching %s: %s",
			resp.StatusCode, what, strings.TrimSpace(string(body)))
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrapf(err, "overpass: decode %s response", what)
	}
	return &parsed, nil
}

func (c *client) FetchCategory(ctx context.Context, cat model.Category, box BBox) ([]model.Amenity, error) {
	query, err := BuildQuery(cat, box)
	if err != nil {
		return nil, err
	}

	parsed, err := c.execute(ctx, query, string(cat))
	if err != nil {
		return nil, err
	}

	amenities := make([]model.Amenity, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		lat, lon := el.Lat, el.Lon
		if el.Type == "way" {
			if el.Center == nil {
				continue
			}
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		if lat == 0 && lon == 0 {
			continue
		}

		name := el.Tags["name"]
		if name == "" {
			name = fmt.Sprintf("%s_%d", cat, el.ID)
		}
		amenities = append(amenities, model.Amenity{
			Name:     name,
			Category: cat,
			Lat:      lat,
			Lon:      lon,
		})
	}
	return amenities, nil
}

func (c *client) FetchAll(ctx context.Context, box BBox) ([]model.Amenity, error) {
	var all []model.Amenity
	var failed []string

	for _, cat := range model.Categories {
		amenities, err := c.FetchCategory(ctx, cat, box)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			failed = append(failed, string(cat))
			continue
		}
		all = append(all, amenities...)
	}

	if len(all) == 0 {
		sort.Strings(failed)
		return nil, eris.Errorf("overpass: all categories failed: %s", strings.Join(failed, ", "))
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return all, eris.Errorf("overpass: categories failed: %s", strings.Join(failed, ", "))
	}
	return all, nil
}
