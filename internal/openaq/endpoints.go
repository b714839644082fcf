package openaq

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// defaultLimit is the page size requested from list endpoints.
const defaultLimit = 1000

// BBox is a geographic bounding box serialized as
// "lonMin,latMin,lonMax,latMax" on the wire.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

func (b BBox) String() string {
	coords := []float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
	parts := make([]string, len(coords))
	for i, v := range coords {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// LocationFilter narrows the monitoring locations listing.
type LocationFilter struct {
	Country string
	City    string
	BBox    *BBox
}

// LatestQuery selects latest measurements. When LocationIDs is set, one
// request is issued per id against locations/{id}/latest and the result
// lists are concatenated in id order.
type LatestQuery struct {
	LocationIDs []int64
	Countries   []string
	Parameters  []string
}

// MeasurementQuery selects historical measurements.
type MeasurementQuery struct {
	LocationID int64
	Parameter  string
	DateFrom   time.Time
	DateTo     time.Time
	Limit      int
}

// Countries lists the countries known to the API.
func (c *Client) Countries(ctx context.Context) ([]Record, error) {
	env, err := c.get(ctx, "countries", url.Values{})
	if err != nil {
		return nil, err
	}
	return env.Unwrap(), nil
}

// Cities lists cities, optionally filtered to one country code.
func (c *Client) Cities(ctx context.Context, country string) ([]Record, error) {
	params := url.Values{}
	if country != "" {
		params.Set("countries", country)
	}
	env, err := c.get(ctx, "cities", params)
	if err != nil {
		return nil, err
	}
	return env.Unwrap(), nil
}

// Locations lists monitoring locations matching the filter. The page size is
// fixed at 1000.
func (c *Client) Locations(ctx context.Context, f LocationFilter) ([]Record, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(defaultLimit))
	if f.Country != "" {
		params.Set("countries", f.Country)
	}
	if f.City != "" {
		params.Set("cities", f.City)
	}
	if f.BBox != nil {
		params.Set("bbox", f.BBox.String())
	}
	env, err := c.get(ctx, "locations", params)
	if err != nil {
		return nil, err
	}
	return env.Unwrap(), nil
}

// Parameters lists the measurable parameters (pollutants).
func (c *Client) Parameters(ctx context.Context) ([]Record, error) {
	env, err := c.get(ctx, "parameters", url.Values{})
	if err != nil {
		return nil, err
	}
	return env.Unwrap(), nil
}

// LatestMeasurements returns the latest measurements for the query. With
// location ids present it fans out to locations/{id}/latest per id, passing
// the shared country/parameter filters on each call, and concatenates the
// per-id results preserving id order.
func (c *Client) LatestMeasurements(ctx context.Context, q LatestQuery) ([]Record, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(defaultLimit))
	if len(q.Countries) > 0 {
		params.Set("countries", strings.Join(q.Countries, ","))
	}
	if len(q.Parameters) > 0 {
		params.Set("parameters", strings.Join(q.Parameters, ","))
	}

	if len(q.LocationIDs) == 0 {
		env, err := c.get(ctx, "latest", params)
		if err != nil {
			return nil, err
		}
		return env.Unwrap(), nil
	}

	merged := []Record{}
	for _, id := range q.LocationIDs {
		env, err := c.get(ctx, fmt.Sprintf("locations/%d/latest", id), params)
		if err != nil {
			return nil, fmt.Errorf("latest for location %d: %w", id, err)
		}
		merged = append(merged, env.Unwrap()...)
	}
	return merged, nil
}

// Measurements returns historical measurements sorted by datetime.
func (c *Client) Measurements(ctx context.Context, q MeasurementQuery) ([]Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "datetime")
	if q.LocationID > 0 {
		params.Set("locations", strconv.FormatInt(q.LocationID, 10))
	}
	if q.Parameter != "" {
		params.Set("parameters", q.Parameter)
	}
	if !q.DateFrom.IsZero() {
		params.Set("date_from", q.DateFrom.Format(time.RFC3339))
	}
	if !q.DateTo.IsZero() {
		params.Set("date_to", q.DateTo.Format(time.RFC3339))
	}

	env, err := c.get(ctx, "measurements", params)
	if err != nil {
		return nil, err
	}
	return env.Unwrap(), nil
}

// AggregatedMeasurements returns measurements rolled up by the API for a
// single location, using the locations/{id}/measurements/{period}s endpoint.
// Period must be "hour" or "day".
func (c *Client) AggregatedMeasurements(ctx context.Context, locationID int64, parameter, period string, from, to time.Time) ([]Record, error) {
	if period != "hour" && period != "day" {
		return nil, fmt.Errorf("openaq: unsupported aggregation period %q", period)
	}

	params := url.Values{}
	if parameter != "" {
		params.Set("parameters", parameter)
	}
	if !from.IsZero() {
		params.Set("date_from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		params.Set("date_to", to.Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("locations/%d/measurements/%ss", locationID, period)
	env, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return env.Unwrap(), nil
}
