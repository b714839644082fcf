package airquality

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jmle94/openaq-dashboard/internal/openaq"
	"github.com/jmle94/openaq-dashboard/internal/store"
)

// API is the subset of the OpenAQ client the service depends on.
type API interface {
	Countries(ctx context.Context) ([]openaq.Record, error)
	Cities(ctx context.Context, country string) ([]openaq.Record, error)
	Locations(ctx context.Context, f openaq.LocationFilter) ([]openaq.Record, error)
	Parameters(ctx context.Context) ([]openaq.Record, error)
	LatestMeasurements(ctx context.Context, q openaq.LatestQuery) ([]openaq.Record, error)
	Measurements(ctx context.Context, q openaq.MeasurementQuery) ([]openaq.Record, error)
	AggregatedMeasurements(ctx context.Context, locationID int64, parameter, period string, from, to time.Time) ([]openaq.Record, error)
}

// Service orchestrates the OpenAQ client and the query cache for the
// dashboard. Reference listings (countries, cities, locations, parameters)
// are memoized; measurement reads go straight to the API.
type Service struct {
	api   API
	cache *store.Cache

	mu          sync.Mutex
	lastRefresh time.Time
}

// NewService creates a Service over the given API client and cache.
func NewService(api API, cache *store.Cache) *Service {
	return &Service{
		api:         api,
		cache:       cache,
		lastRefresh: time.Now().UTC(),
	}
}

// cached memoizes a record-list fetch under the given key.
func (s *Service) cached(key string, fetch func() ([]openaq.Record, error)) ([]openaq.Record, error) {
	if v, ok := s.cache.Get(key); ok {
		if recs, ok := v.([]openaq.Record); ok {
			return recs, nil
		}
	}
	recs, err := fetch()
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, recs)
	return recs, nil
}

// Countries lists available countries (cached).
func (s *Service) Countries(ctx context.Context) ([]openaq.Record, error) {
	return s.cached(store.Key("countries"), func() ([]openaq.Record, error) {
		return s.api.Countries(ctx)
	})
}

// Cities lists available cities, optionally for one country (cached).
func (s *Service) Cities(ctx context.Context, country string) ([]openaq.Record, error) {
	return s.cached(store.Key("cities", "country="+country), func() ([]openaq.Record, error) {
		return s.api.Cities(ctx, country)
	})
}

// Locations lists monitoring locations matching the filter (cached).
func (s *Service) Locations(ctx context.Context, f openaq.LocationFilter) ([]openaq.Record, error) {
	args := []string{"country=" + f.Country, "city=" + f.City}
	if f.BBox != nil {
		args = append(args, "bbox="+f.BBox.String())
	}
	return s.cached(store.Key("locations", args...), func() ([]openaq.Record, error) {
		return s.api.Locations(ctx, f)
	})
}

// Parameters lists measurable parameters (cached).
func (s *Service) Parameters(ctx context.Context) ([]openaq.Record, error) {
	return s.cached(store.Key("parameters"), func() ([]openaq.Record, error) {
		return s.api.Parameters(ctx)
	})
}

// Latest returns current measurements for the query. Not cached: latest
// readings are the one thing the dashboard always wants fresh.
func (s *Service) Latest(ctx context.Context, q openaq.LatestQuery) ([]openaq.Record, error) {
	return s.api.LatestMeasurements(ctx, q)
}

// Measurements returns historical measurements for the query.
func (s *Service) Measurements(ctx context.Context, q openaq.MeasurementQuery) ([]openaq.Record, error) {
	return s.api.Measurements(ctx, q)
}

// Aggregated returns API-side rollups for one location and parameter.
func (s *Service) Aggregated(ctx context.Context, locationID int64, parameter, period string, from, to time.Time) ([]openaq.Record, error) {
	return s.api.AggregatedMeasurements(ctx, locationID, parameter, period, from, to)
}

// TryLatest is Latest degraded for aggregate dashboard views: a failed
// request logs a warning and yields an empty list, so a partially broken
// upstream still renders an (empty) dashboard instead of an error page.
func (s *Service) TryLatest(ctx context.Context, q openaq.LatestQuery) []openaq.Record {
	recs, err := s.Latest(ctx, q)
	if err != nil {
		log.Printf("airquality: latest measurements unavailable: %v", err)
		return []openaq.Record{}
	}
	return recs
}

// TryLocations is Locations with the same degradation as TryLatest.
func (s *Service) TryLocations(ctx context.Context, f openaq.LocationFilter) []openaq.Record {
	recs, err := s.Locations(ctx, f)
	if err != nil {
		log.Printf("airquality: locations unavailable: %v", err)
		return []openaq.Record{}
	}
	return recs
}

// Refresh clears the cache and stamps the refresh time. This is the manual
// invalidation trigger behind the dashboard's refresh action.
func (s *Service) Refresh() time.Time {
	s.cache.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefresh = time.Now().UTC()
	return s.lastRefresh
}

// LastRefresh reports when the cache was last invalidated.
func (s *Service) LastRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh
}

// Overview summarizes the monitoring network visible under the filter.
type Overview struct {
	TotalLocations  int       `json:"totalLocations"`
	ActiveLocations int       `json:"activeLocations"`
	Countries       int       `json:"countries"`
	Cities          int       `json:"cities"`
	LastRefresh     time.Time `json:"lastRefresh"`
}

// overviewLatestLimit caps how many locations feed the active-location
// check; the fan-out issues one request per id.
const overviewLatestLimit = 100

// BuildOverview computes network-level counts for the filtered locations.
// Latest-measurement failures degrade to zero active locations.
func (s *Service) BuildOverview(ctx context.Context, f openaq.LocationFilter, parameters []string) (Overview, error) {
	locations, err := s.Locations(ctx, f)
	if err != nil {
		return Overview{}, err
	}

	ids := make([]int64, 0, overviewLatestLimit)
	for _, loc := range locations {
		if len(ids) >= overviewLatestLimit {
			break
		}
		if id, ok := RecordID(loc, "id"); ok {
			ids = append(ids, id)
		}
	}

	latest := s.TryLatest(ctx, openaq.LatestQuery{LocationIDs: ids, Parameters: parameters})

	active := make(map[int64]struct{})
	for _, m := range latest {
		if id, ok := RecordID(m, "locationId"); ok {
			active[id] = struct{}{}
		}
	}

	countries := make(map[string]struct{})
	cities := make(map[string]struct{})
	for _, loc := range locations {
		if c, ok := RecordCountry(loc); ok && c != "" {
			countries[c] = struct{}{}
		}
		if c, ok := RecordCity(loc); ok && c != "" {
			cities[c] = struct{}{}
		}
	}

	return Overview{
		TotalLocations:  len(locations),
		ActiveLocations: len(active),
		Countries:       len(countries),
		Cities:          len(cities),
		LastRefresh:     s.LastRefresh(),
	}, nil
}
