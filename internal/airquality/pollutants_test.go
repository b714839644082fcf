package airquality

import "testing"

func TestClassifyAQIBands(t *testing.T) {
	cases := []struct {
		value    float64
		category string
	}{
		{0, "Good"},
		{11.9, "Good"},
		{12.1, "Moderate"},
		{35.4, "Moderate"},
		{40, "Unhealthy for Sensitive Groups"},
		{100, "Unhealthy"},
		{200, "Very Unhealthy"},
		{500, "Hazardous"},
	}

	for _, tc := range cases {
		band, ok := ClassifyAQI(tc.value, "pm25")
		if !ok {
			t.Errorf("value %v: expected a band", tc.value)
			continue
		}
		if band.Category != tc.category {
			t.Errorf("value %v: expected %q, got %q", tc.value, tc.category, band.Category)
		}
	}
}

func TestClassifyAQIOutOfRange(t *testing.T) {
	if _, ok := ClassifyAQI(-1, "pm25"); ok {
		t.Error("negative values must not classify")
	}
	// Threshold gap between Good's ceiling and Moderate's floor.
	if _, ok := ClassifyAQI(12.05, "pm25"); ok {
		t.Error("values inside a threshold gap must not classify")
	}
}

func TestClassifyAQIFallsBackToPM25Scale(t *testing.T) {
	band, ok := ClassifyAQI(5, "o3")
	if !ok || band.Category != "Good" {
		t.Errorf("expected PM2.5 fallback banding, got %+v (%v)", band, ok)
	}
}

func TestInfoKnownAndUnknown(t *testing.T) {
	if got := Info("pm25").DisplayName; got != "PM2.5" {
		t.Errorf("unexpected display name %q", got)
	}
	unknown := Info("nh3")
	if unknown.DisplayName != "NH3" {
		t.Errorf("expected uppercased fallback, got %q", unknown.DisplayName)
	}
	if unknown.Color != defaultColor {
		t.Errorf("expected default color, got %q", unknown.Color)
	}
}
