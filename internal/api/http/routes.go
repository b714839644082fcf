package httpapi

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jmle94/openaq-dashboard/internal/airquality"
	"github.com/jmle94/openaq-dashboard/internal/dashboard"
	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *airquality.Service, sessions *dashboard.SessionRegistry) {
	v1 := app.Group("/api/v1")

	v1.Get("/countries", func(c *fiber.Ctx) error {
		recs, err := service.Countries(c.Context())
		if err != nil {
			return upstreamError(err)
		}
		lastRefreshHeader(c, service.LastRefresh())
		return c.JSON(fiber.Map{"results": recs})
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		recs, err := service.Cities(c.Context(), c.Query("country"))
		if err != nil {
			return upstreamError(err)
		}
		lastRefreshHeader(c, service.LastRefresh())
		return c.JSON(fiber.Map{"results": recs})
	})

	v1.Get("/parameters", func(c *fiber.Ctx) error {
		recs, err := service.Parameters(c.Context())
		if err != nil {
			return upstreamError(err)
		}
		lastRefreshHeader(c, service.LastRefresh())
		return c.JSON(fiber.Map{"results": recs})
	})

	v1.Get("/pollutants", func(c *fiber.Ctx) error {
		return c.JSON(airquality.Pollutants)
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		q, err := parseLocationsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		recs, err := service.Locations(c.Context(), q.toFilter())
		if err != nil {
			return upstreamError(err)
		}
		lastRefreshHeader(c, service.LastRefresh())
		return c.JSON(fiber.Map{"results": recs})
	})

	v1.Get("/latest", func(c *fiber.Ctx) error {
		q, err := parseLatestQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		recs, err := service.Latest(c.Context(), q.toQuery())
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(fiber.Map{"results": recs})
	})

	v1.Get("/measurements", func(c *fiber.Ctx) error {
		var q measurementsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		recs, err := service.Measurements(c.Context(), q.toQuery())
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(fiber.Map{"results": recs})
	})

	v1.Get("/measurements/summary", func(c *fiber.Ctx) error {
		q, err := parseLatestQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		recs, err := service.Latest(c.Context(), q.toQuery())
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(fiber.Map{"summaries": airquality.SummarizeAll(recs)})
	})

	v1.Get("/measurements/aggregated", func(c *fiber.Ctx) error {
		var q measurementsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if q.Location <= 0 || q.Parameter == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location and parameter are required")
		}
		period := c.Query("period", "hour")
		recs, err := service.Aggregated(c.Context(), q.Location, q.Parameter, period, q.From, q.To)
		if err != nil {
			if errors.Is(err, openaq.ErrRateLimited) || errors.Is(err, openaq.ErrCircuitOpen) {
				return upstreamError(err)
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"results": recs})
	})

	registerChartRoutes(v1, service)
	registerMapRoutes(v1, service)
	registerExportRoutes(v1, service)

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		refreshedAt := service.Refresh()
		if id := c.Query("session"); id != "" {
			sessions.Touch(id, refreshedAt)
		}
		return c.JSON(fiber.Map{"lastRefresh": refreshedAt})
	})

	registerSessionRoutes(v1, sessions)
}

func registerSessionRoutes(v1 fiber.Router, sessions *dashboard.SessionRegistry) {
	v1.Post("/sessions", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(sessions.Create())
	})

	v1.Get("/sessions/:id", func(c *fiber.Ctx) error {
		ctx, err := sessions.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return c.JSON(ctx)
	})

	v1.Put("/sessions/:id", func(c *fiber.Ctx) error {
		var update dashboard.Context
		if err := c.BodyParser(&update); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid session body")
		}
		if !update.DateFrom.IsZero() && !update.DateTo.IsZero() && update.DateTo.Before(update.DateFrom) {
			return fiber.NewError(fiber.StatusBadRequest, "dateTo must not be before dateFrom")
		}
		ctx, err := sessions.Update(c.Params("id"), update)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return c.JSON(ctx)
	})
}

func registerChartRoutes(v1 fiber.Router, service *airquality.Service) {
	v1.Get("/charts/timeseries", func(c *fiber.Ctx) error {
		var q measurementsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if q.Location <= 0 || q.Parameter == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location and parameter are required")
		}
		recs, err := service.Measurements(c.Context(), q.toQuery())
		if err != nil {
			return upstreamError(err)
		}
		name := c.Query("name", "Location "+strconv.FormatInt(q.Location, 10))
		return c.JSON(dashboard.BuildTimeSeries(recs, q.Parameter, name))
	})

	v1.Get("/charts/multi", func(c *fiber.Ctx) error {
		var q measurementsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if q.Location <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "location is required")
		}
		params := parametersOrDefault(c)

		data := make(map[string][]openaq.Record)
		for _, p := range params {
			mq := q.toQuery()
			mq.Parameter = p
			recs, err := service.Measurements(c.Context(), mq)
			if err != nil {
				log.Printf("httpapi: measurements for %s unavailable: %v", p, err)
				continue
			}
			if len(recs) > 0 {
				data[p] = recs
			}
		}

		name := c.Query("name", "Location "+strconv.FormatInt(q.Location, 10))
		return c.JSON(dashboard.BuildMultiPollutant(data, name))
	})

	v1.Get("/charts/compare", func(c *fiber.Ctx) error {
		ids, err := parseCompareIDs(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		parameter := c.Query("parameter")
		if parameter == "" {
			return fiber.NewError(fiber.StatusBadRequest, "parameter is required")
		}

		var q measurementsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		locationsData := make(map[string][]openaq.Record)
		for _, id := range ids {
			recs, err := service.Measurements(c.Context(), openaq.MeasurementQuery{
				LocationID: id,
				Parameter:  parameter,
				DateFrom:   q.From,
				DateTo:     q.To,
				Limit:      compareLimit,
			})
			if err != nil {
				log.Printf("httpapi: comparison data for location %d unavailable: %v", id, err)
				continue
			}
			if len(recs) > 0 {
				locationsData[strconv.FormatInt(id, 10)] = recs
			}
		}

		return c.JSON(dashboard.BuildComparison(locationsData, parameter))
	})

	v1.Get("/charts/current", func(c *fiber.Ctx) error {
		q, err := parseLatestQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		latest := service.TryLatest(c.Context(), q.toQuery())
		return c.JSON(fiber.Map{"bars": dashboard.BuildCurrentConditions(latest)})
	})

	v1.Get("/charts/aqi", func(c *fiber.Ctx) error {
		raw := c.Query("value")
		if raw == "" {
			return fiber.NewError(fiber.StatusBadRequest, "value is required")
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "value must be numeric")
		}
		parameter := c.Query("parameter", "pm25")
		return c.JSON(dashboard.BuildAQIGauge(value, parameter))
	})

	v1.Get("/overview", func(c *fiber.Ctx) error {
		lq, err := parseLocationsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		params := parametersOrDefault(c)
		overview, err := service.BuildOverview(c.Context(), lq.toFilter(), params)
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(overview)
	})
}

func registerMapRoutes(v1 fiber.Router, service *airquality.Service) {
	v1.Get("/map/markers", func(c *fiber.Ctx) error {
		lq, err := parseLocationsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		locations, err := service.Locations(c.Context(), lq.toFilter())
		if err != nil {
			return upstreamError(err)
		}

		latest := service.TryLatest(c.Context(), openaq.LatestQuery{
			LocationIDs: locationIDs(locations, markerLatestLimit),
			Parameters:  parametersOrDefault(c),
		})
		return c.JSON(dashboard.BuildMarkers(locations, latest))
	})

	v1.Get("/map/heatmap", func(c *fiber.Ctx) error {
		lq, err := parseLocationsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		parameter := c.Query("parameter", "pm25")

		locations, err := service.Locations(c.Context(), lq.toFilter())
		if err != nil {
			return upstreamError(err)
		}

		latest := service.TryLatest(c.Context(), openaq.LatestQuery{
			LocationIDs: locationIDs(locations, markerLatestLimit),
			Parameters:  []string{parameter},
		})
		return c.JSON(dashboard.BuildHeatmap(locations, latest, parameter))
	})
}

const (
	// markerLatestLimit caps the latest-measurement fan-out behind map
	// payloads; each id costs one upstream request.
	markerLatestLimit = 100

	// compareLimit matches the smaller page size the comparison view uses.
	compareLimit = 500

	maxCompareLocations = 5
)

func parseCompareIDs(c *fiber.Ctx) ([]int64, error) {
	q, err := parseLatestQuery(c)
	if err != nil {
		return nil, err
	}
	if len(q.LocationIDs) < 2 {
		return nil, errors.New("at least 2 locations are required for comparison")
	}
	if len(q.LocationIDs) > maxCompareLocations {
		return nil, errors.New("at most 5 locations can be compared")
	}
	return q.LocationIDs, nil
}

func parametersOrDefault(c *fiber.Ctx) []string {
	q, err := parseLatestQuery(c)
	if err != nil || len(q.Parameters) == 0 {
		return airquality.DefaultPollutants
	}
	return q.Parameters
}

func locationIDs(locations []openaq.Record, max int) []int64 {
	ids := make([]int64, 0, max)
	for _, loc := range locations {
		if len(ids) >= max {
			break
		}
		if id, ok := airquality.RecordID(loc, "id"); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// upstreamError maps client failures to HTTP status codes. Rate limiting and
// an open circuit are transient; anything else from upstream is a bad gateway.
func upstreamError(err error) error {
	switch {
	case errors.Is(err, openaq.ErrRateLimited):
		return fiber.NewError(fiber.StatusServiceUnavailable, "upstream rate limit exceeded; try again shortly")
	case errors.Is(err, openaq.ErrCircuitOpen):
		return fiber.NewError(fiber.StatusServiceUnavailable, "upstream temporarily unavailable")
	default:
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch data from OpenAQ")
	}
}

// lastRefreshHeader stamps responses that reflect cached data.
func lastRefreshHeader(c *fiber.Ctx, t time.Time) {
	c.Set("X-Last-Refresh", t.UTC().Format(time.RFC3339))
}
