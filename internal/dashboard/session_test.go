package dashboard

import (
	"errors"
	"testing"
	"time"
)

func TestSessionCreateDefaults(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	ctx := reg.Create()

	if ctx.ID == "" {
		t.Fatal("expected a session id")
	}
	want := []string{"pm25", "pm10", "no2"}
	if len(ctx.Pollutants) != len(want) {
		t.Fatalf("expected default pollutants %v, got %v", want, ctx.Pollutants)
	}
	for i, p := range want {
		if ctx.Pollutants[i] != p {
			t.Fatalf("expected default pollutants %v, got %v", want, ctx.Pollutants)
		}
	}
	if got := ctx.DateTo.Sub(ctx.DateFrom); got != 24*time.Hour {
		t.Errorf("expected a last-24h default range, got %v", got)
	}
}

func TestSessionGetReturnsCopy(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	created := reg.Create()

	got, err := reg.Get(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got.Country = "US"

	again, err := reg.Get(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Country != "" {
		t.Error("expected stored session to be unaffected by caller mutation")
	}
}

func TestSessionGetUnknownID(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	if _, err := reg.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionUpdate(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	created := reg.Create()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)
	updated, err := reg.Update(created.ID, Context{
		Country:    "US",
		City:       "New York",
		Pollutants: []string{"o3"},
		DateFrom:   from,
		DateTo:     to,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("expected the stored id to win, got %q", updated.ID)
	}
	if updated.Country != "US" || updated.City != "New York" {
		t.Errorf("expected filters to apply, got %q/%q", updated.Country, updated.City)
	}
	if len(updated.Pollutants) != 1 || updated.Pollutants[0] != "o3" {
		t.Errorf("expected pollutant selection to apply, got %v", updated.Pollutants)
	}
	if !updated.DateFrom.Equal(from) || !updated.DateTo.Equal(to) {
		t.Errorf("expected date range to apply, got %v/%v", updated.DateFrom, updated.DateTo)
	}
}

func TestSessionUpdateEmptyPollutantsResetToDefaults(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	created := reg.Create()

	if _, err := reg.Update(created.ID, Context{Pollutants: []string{"so2"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, err := reg.Update(created.ID, Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Pollutants) != 6 {
		t.Errorf("expected the full default pollutant set, got %v", updated.Pollutants)
	}
}

func TestSessionExpiry(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return base }

	ctx := reg.Create()

	reg.now = func() time.Time { return base.Add(30 * time.Minute) }
	if _, err := reg.Get(ctx.ID); err != nil {
		t.Fatalf("expected session to be live at half max age: %v", err)
	}

	reg.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := reg.Get(ctx.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("expected expired session to be deleted, got %d live", reg.Len())
	}
}

func TestSessionTouch(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	ctx := reg.Create()

	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	reg.Touch(ctx.ID, stamp)

	got, err := reg.Get(ctx.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.LastRefresh.Equal(stamp) {
		t.Errorf("expected last refresh %v, got %v", stamp, got.LastRefresh)
	}
}

func TestSessionSweepOnCreate(t *testing.T) {
	reg := NewSessionRegistry(time.Hour)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return base }

	reg.Create()
	reg.Create()

	reg.now = func() time.Time { return base.Add(3 * time.Hour) }
	reg.Create()

	if reg.Len() != 1 {
		t.Errorf("expected only the new session to survive the sweep, got %d", reg.Len())
	}
}
