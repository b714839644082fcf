package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jmle94/openaq-dashboard/internal/common"
	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

// locationsQuery holds query parameters for the locations listing.
type locationsQuery struct {
	Country string
	City    string
	BBox    *openaq.BBox
}

func parseLocationsQuery(c *fiber.Ctx) (locationsQuery, error) {
	q := locationsQuery{
		Country: c.Query("country"),
		City:    c.Query("city"),
	}

	if raw := c.Query("bbox"); raw != "" {
		bbox, err := parseBBox(raw)
		if err != nil {
			return q, err
		}
		q.BBox = bbox
	}
	return q, nil
}

func (q locationsQuery) toFilter() openaq.LocationFilter {
	return openaq.LocationFilter{
		Country: q.Country,
		City:    q.City,
		BBox:    q.BBox,
	}
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(s string) (*openaq.BBox, error) {
	parts := common.SplitList(s)
	if len(parts) != 4 {
		return nil, errors.New("bbox must have four comma-separated values: minLon,minLat,maxLon,maxLat")
	}
	coords := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.New("bbox values must be numeric")
		}
		coords[i] = v
	}
	return &openaq.BBox{
		MinLon: coords[0],
		MinLat: coords[1],
		MaxLon: coords[2],
		MaxLat: coords[3],
	}, nil
}

// latestQuery holds filters for latest-measurement endpoints.
type latestQuery struct {
	LocationIDs []int64
	Countries   []string
	Parameters  []string
}

func parseLatestQuery(c *fiber.Ctx) (latestQuery, error) {
	var q latestQuery

	ids, err := common.ParseIntList(c.Query("locations"))
	if err != nil {
		return q, errors.New("locations must be a comma-separated list of integer ids")
	}
	q.LocationIDs = ids
	q.Countries = common.SplitList(c.Query("countries"))
	q.Parameters = common.SplitList(c.Query("parameters"))
	return q, nil
}

func (q latestQuery) toQuery() openaq.LatestQuery {
	return openaq.LatestQuery{
		LocationIDs: q.LocationIDs,
		Countries:   q.Countries,
		Parameters:  q.Parameters,
	}
}

// measurementsQuery holds query parameters for historical measurements.
type measurementsQuery struct {
	Location  int64  `validate:"omitempty,gt=0"`
	Parameter string
	From      time.Time
	To        time.Time
	Limit     int `validate:"omitempty,gte=1,lte=1000"`
}

func (m *measurementsQuery) bind(c *fiber.Ctx) error {
	if raw := c.Query("location"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errors.New("location must be an integer id")
		}
		m.Location = id
	}
	m.Parameter = c.Query("parameter")

	if raw := c.Query("from"); raw != "" {
		from, err := parseTime(raw)
		if err != nil {
			return err
		}
		m.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseTime(raw)
		if err != nil {
			return err
		}
		m.To = to
	}
	if !m.From.IsZero() && !m.To.IsZero() && m.To.Before(m.From) {
		return errors.New("to must not be before from")
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		m.Limit = limit
	}
	return nil
}

func (m measurementsQuery) toQuery() openaq.MeasurementQuery {
	return openaq.MeasurementQuery{
		LocationID: m.Location,
		Parameter:  m.Parameter,
		DateFrom:   m.From,
		DateTo:     m.To,
		Limit:      m.Limit,
	}
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
