package dashboard

import (
	"sort"

	"github.com/jmle94/openaq-dashboard/internal/airquality"
	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

// Chart payload builders. These prepare the data the original dashboard fed
// into its charting widgets; rendering itself is left to whatever frontend
// consumes the JSON.

// SeriesPoint is one timestamped value in a chart series.
type SeriesPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// TimeSeries is a renderable series for one pollutant at one location.
type TimeSeries struct {
	Parameter   string        `json:"parameter"`
	DisplayName string        `json:"displayName"`
	Units       string        `json:"units"`
	Color       string        `json:"color"`
	Location    string        `json:"location"`
	Points      []SeriesPoint `json:"points"`
}

// BuildTimeSeries converts measurement records into a chart series.
// Records without a timestamp or numeric value are skipped; upstream order
// (sorted by datetime) is preserved.
func BuildTimeSeries(records []openaq.Record, parameter, locationName string) TimeSeries {
	info := airquality.Info(parameter)
	series := TimeSeries{
		Parameter:   parameter,
		DisplayName: info.DisplayName,
		Units:       info.Units,
		Color:       info.Color,
		Location:    locationName,
		Points:      []SeriesPoint{},
	}

	for _, r := range records {
		ts, tsOK := airquality.RecordDatetime(r)
		v, vOK := airquality.RecordFloat(r, "value")
		if !tsOK || !vOK {
			continue
		}
		series.Points = append(series.Points, SeriesPoint{Time: ts, Value: v})
	}
	return series
}

// MultiPollutant bundles one series per pollutant for a single location,
// ordered by parameter code.
type MultiPollutant struct {
	Location string       `json:"location"`
	Series   []TimeSeries `json:"series"`
}

// BuildMultiPollutant builds a stacked multi-pollutant payload from
// per-parameter measurement sets.
func BuildMultiPollutant(data map[string][]openaq.Record, locationName string) MultiPollutant {
	params := make([]string, 0, len(data))
	for p := range data {
		params = append(params, p)
	}
	sort.Strings(params)

	out := MultiPollutant{Location: locationName, Series: []TimeSeries{}}
	for _, p := range params {
		if len(data[p]) == 0 {
			continue
		}
		out.Series = append(out.Series, BuildTimeSeries(data[p], p, locationName))
	}
	return out
}

// Comparison holds the same pollutant across several locations.
type Comparison struct {
	Parameter   string       `json:"parameter"`
	DisplayName string       `json:"displayName"`
	Units       string       `json:"units"`
	Series      []TimeSeries `json:"series"`
}

// BuildComparison builds a cross-location comparison for one parameter.
// locationsData maps location labels to their measurement records; series
// are ordered by label.
func BuildComparison(locationsData map[string][]openaq.Record, parameter string) Comparison {
	info := airquality.Info(parameter)

	labels := make([]string, 0, len(locationsData))
	for l := range locationsData {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	cmp := Comparison{
		Parameter:   parameter,
		DisplayName: info.DisplayName,
		Units:       info.Units,
		Series:      []TimeSeries{},
	}
	for _, label := range labels {
		if len(locationsData[label]) == 0 {
			continue
		}
		cmp.Series = append(cmp.Series, BuildTimeSeries(locationsData[label], parameter, label))
	}
	return cmp
}

// ConditionBar is one bar of the current-conditions overview chart.
type ConditionBar struct {
	Parameter   string  `json:"parameter"`
	DisplayName string  `json:"displayName"`
	Units       string  `json:"units"`
	Color       string  `json:"color"`
	Average     float64 `json:"average"`
	Count       int     `json:"count"`
}

// BuildCurrentConditions averages latest measurements per pollutant into
// bar-chart data, ordered by parameter code.
func BuildCurrentConditions(latest []openaq.Record) []ConditionBar {
	summaries := airquality.SummarizeAll(latest)

	bars := make([]ConditionBar, 0, len(summaries))
	for _, s := range summaries {
		info := airquality.Info(s.Parameter)
		bars = append(bars, ConditionBar{
			Parameter:   s.Parameter,
			DisplayName: s.DisplayName,
			Units:       s.Units,
			Color:       info.Color,
			Average:     s.Average,
			Count:       s.Count,
		})
	}
	return bars
}

// GaugeStep is one colored range on the AQI gauge axis.
type GaugeStep struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
}

// AQIGauge is the payload behind the AQI gauge widget.
type AQIGauge struct {
	Parameter      string      `json:"parameter"`
	DisplayName    string      `json:"displayName"`
	Value          float64     `json:"value"`
	Category       string      `json:"category"`
	Color          string      `json:"color"`
	DeltaReference float64     `json:"deltaReference"`
	AxisMax        float64     `json:"axisMax"`
	Threshold      float64     `json:"threshold"`
	Steps          []GaugeStep `json:"steps"`
}

// Gauge display constants for the PM2.5 reference scale: the delta baseline
// is the Moderate ceiling, the red threshold marks Unhealthy's ceiling.
const (
	gaugeDeltaReference = 35.4
	gaugeAxisMax        = 300
	gaugeThreshold      = 150.4
)

var gaugeSteps = []GaugeStep{
	{From: 0, To: 12, Color: "#E8F5E8"},
	{From: 12, To: 35.4, Color: "#FFFACD"},
	{From: 35.4, To: 55.4, Color: "#FFE4B5"},
	{From: 55.4, To: 150.4, Color: "#FFB6C1"},
	{From: 150.4, To: 250.4, Color: "#DDA0DD"},
	{From: 250.4, To: 300, Color: "#F0E68C"},
}

// BuildAQIGauge classifies a concentration and assembles the gauge payload.
// Values outside every band fall back to the Good tier, matching the
// original widget.
func BuildAQIGauge(value float64, parameter string) AQIGauge {
	band, ok := airquality.ClassifyAQI(value, parameter)
	if !ok {
		band, _ = airquality.ClassifyAQI(0, parameter)
	}

	info := airquality.Info(parameter)
	return AQIGauge{
		Parameter:      parameter,
		DisplayName:    info.DisplayName,
		Value:          value,
		Category:       band.Category,
		Color:          band.Color,
		DeltaReference: gaugeDeltaReference,
		AxisMax:        gaugeAxisMax,
		Threshold:      gaugeThreshold,
		Steps:          gaugeSteps,
	}
}
