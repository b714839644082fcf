package airquality

import (
	"testing"

	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

func TestGroupByParameter(t *testing.T) {
	records := []openaq.Record{
		{"parameter": "pm25", "value": 10.0},
		{"parameter": map[string]any{"name": "no2"}, "value": 1.0},
		{"parameter": "pm25", "value": 20.0},
		{"value": 99.0}, // no parameter: dropped
	}

	grouped := GroupByParameter(records)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
	if len(grouped["pm25"]) != 2 {
		t.Errorf("expected 2 pm25 records, got %d", len(grouped["pm25"]))
	}
	if len(grouped["no2"]) != 1 {
		t.Errorf("expected nested parameter name to group, got %d", len(grouped["no2"]))
	}
}

func TestSummarize(t *testing.T) {
	records := []openaq.Record{
		{"value": 10.0},
		{"value": 30.0},
		{"value": 20.0},
		{"note": "no value"},
	}

	s, ok := Summarize("pm25", records)
	if !ok {
		t.Fatal("expected a summary")
	}
	if s.Count != 3 {
		t.Errorf("expected count 3, got %d", s.Count)
	}
	if s.Average != 20 {
		t.Errorf("expected average 20, got %v", s.Average)
	}
	if s.Min != 10 || s.Max != 30 {
		t.Errorf("expected min 10 max 30, got %v/%v", s.Min, s.Max)
	}
	if s.Latest != 20 {
		t.Errorf("expected latest 20, got %v", s.Latest)
	}
	if s.DisplayName != "PM2.5" || s.Units != "µg/m³" {
		t.Errorf("expected pollutant metadata, got %q %q", s.DisplayName, s.Units)
	}
}

func TestSummarizeWithoutValues(t *testing.T) {
	if _, ok := Summarize("pm25", []openaq.Record{{"note": "empty"}}); ok {
		t.Fatal("expected no summary without numeric values")
	}
}

func TestSummarizeAllIsSorted(t *testing.T) {
	records := []openaq.Record{
		{"parameter": "so2", "value": 1.0},
		{"parameter": "co", "value": 2.0},
		{"parameter": "pm10", "value": 3.0},
	}

	summaries := SummarizeAll(records)
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	want := []string{"co", "pm10", "so2"}
	for i, s := range summaries {
		if s.Parameter != want[i] {
			t.Fatalf("expected order %v, got %q at %d", want, s.Parameter, i)
		}
	}
}
