package airquality

import (
	"sort"

	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

// Summary holds descriptive statistics for one pollutant's measurements.
type Summary struct {
	Parameter   string  `json:"parameter"`
	DisplayName string  `json:"displayName"`
	Units       string  `json:"units"`
	Count       int     `json:"count"`
	Average     float64 `json:"average"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Latest      float64 `json:"latest"`
}

// GroupByParameter indexes measurement records by their parameter code.
// Records without a recognizable parameter are dropped.
func GroupByParameter(records []openaq.Record) map[string][]openaq.Record {
	grouped := make(map[string][]openaq.Record)
	for _, r := range records {
		param, ok := RecordParameter(r)
		if !ok {
			continue
		}
		grouped[param] = append(grouped[param], r)
	}
	return grouped
}

// Summarize computes statistics over the numeric values of the given
// records. The second return is false when no record carries a usable value.
func Summarize(parameter string, records []openaq.Record) (Summary, bool) {
	var values []float64
	for _, r := range records {
		if v, ok := RecordFloat(r, "value"); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Summary{}, false
	}

	sum := values[0]
	min := values[0]
	max := values[0]
	for _, v := range values[1:] {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	info := Info(parameter)
	return Summary{
		Parameter:   parameter,
		DisplayName: info.DisplayName,
		Units:       info.Units,
		Count:       len(values),
		Average:     sum / float64(len(values)),
		Min:         min,
		Max:         max,
		Latest:      values[len(values)-1],
	}, true
}

// SummarizeAll produces a summary per parameter present in the records,
// sorted by parameter code for stable output.
func SummarizeAll(records []openaq.Record) []Summary {
	grouped := GroupByParameter(records)

	params := make([]string, 0, len(grouped))
	for p := range grouped {
		params = append(params, p)
	}
	sort.Strings(params)

	summaries := make([]Summary, 0, len(params))
	for _, p := range params {
		if s, ok := Summarize(p, grouped[p]); ok {
			summaries = append(summaries, s)
		}
	}
	return summaries
}
