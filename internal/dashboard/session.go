package dashboard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmle94/openaq-dashboard/internal/airquality"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("dashboard: session not found")

// Context is the view-model for one dashboard session: current filters,
// selected time range, and refresh bookkeeping. It replaces ambient
// framework session state with an explicit object passed to handlers.
type Context struct {
	ID          string    `json:"id"`
	Country     string    `json:"country,omitempty"`
	City        string    `json:"city,omitempty"`
	Pollutants  []string  `json:"pollutants"`
	DateFrom    time.Time `json:"dateFrom"`
	DateTo      time.Time `json:"dateTo"`
	LastRefresh time.Time `json:"lastRefresh"`

	updatedAt time.Time
}

// SessionRegistry owns the live dashboard sessions. Sessions untouched for
// longer than maxAge are swept on the next create.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]Context
	maxAge   time.Duration

	now func() time.Time
}

// NewSessionRegistry creates a registry expiring idle sessions after maxAge.
// maxAge <= 0 disables expiry.
func NewSessionRegistry(maxAge time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]Context),
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Create starts a session with the original dashboard defaults: the three
// headline pollutants and a last-24-hours time range.
func (r *SessionRegistry) Create() Context {
	now := r.now().UTC()
	ctx := Context{
		ID:          uuid.NewString(),
		Pollutants:  []string{"pm25", "pm10", "no2"},
		DateFrom:    now.Add(-24 * time.Hour),
		DateTo:      now,
		LastRefresh: now,
		updatedAt:   now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)
	r.sessions[ctx.ID] = ctx
	return ctx
}

// Get returns a copy of the session with the given id.
func (r *SessionRegistry) Get(id string) (Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, ok := r.sessions[id]
	if !ok {
		return Context{}, ErrSessionNotFound
	}
	if r.expired(ctx, r.now()) {
		delete(r.sessions, id)
		return Context{}, ErrSessionNotFound
	}
	return ctx, nil
}

// Update applies new filter state to an existing session. The stored id and
// creation-independent fields win over whatever the caller sent.
func (r *SessionRegistry) Update(id string, update Context) (Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[id]
	if !ok || r.expired(current, r.now()) {
		delete(r.sessions, id)
		return Context{}, ErrSessionNotFound
	}

	current.Country = update.Country
	current.City = update.City
	if len(update.Pollutants) > 0 {
		current.Pollutants = update.Pollutants
	} else {
		current.Pollutants = append([]string(nil), airquality.DefaultPollutants...)
	}
	if !update.DateFrom.IsZero() {
		current.DateFrom = update.DateFrom
	}
	if !update.DateTo.IsZero() {
		current.DateTo = update.DateTo
	}
	current.updatedAt = r.now().UTC()

	r.sessions[id] = current
	return current, nil
}

// Touch stamps a session's last-refresh time, e.g. after a cache clear.
func (r *SessionRegistry) Touch(id string, refreshedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, ok := r.sessions[id]
	if !ok {
		return
	}
	ctx.LastRefresh = refreshedAt
	ctx.updatedAt = r.now().UTC()
	r.sessions[id] = ctx
}

// Len reports the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) expired(ctx Context, now time.Time) bool {
	return r.maxAge > 0 && now.Sub(ctx.updatedAt) > r.maxAge
}

func (r *SessionRegistry) sweepLocked(now time.Time) {
	for id, ctx := range r.sessions {
		if r.expired(ctx, now) {
			delete(r.sessions, id)
		}
	}
}
