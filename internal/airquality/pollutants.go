package airquality

import (
	"math"
	"strings"
)

// PollutantInfo describes a monitored pollutant.
type PollutantInfo struct {
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Units       string `json:"units"`
	Color       string `json:"color"`
}

// DefaultPollutants are the parameters tracked when a session makes no
// explicit selection.
var DefaultPollutants = []string{"pm25", "pm10", "no2", "o3", "co", "so2"}

// Pollutants maps OpenAQ parameter codes to display metadata.
var Pollutants = map[string]PollutantInfo{
	"pm25": {
		DisplayName: "PM2.5",
		Description: "Fine particulate matter (≤ 2.5 micrometers)",
		Units:       "µg/m³",
		Color:       "#FF6B6B",
	},
	"pm10": {
		DisplayName: "PM10",
		Description: "Inhalable particulate matter (≤ 10 micrometers)",
		Units:       "µg/m³",
		Color:       "#4ECDC4",
	},
	"no2": {
		DisplayName: "NO₂",
		Description: "Nitrogen dioxide",
		Units:       "ppm",
		Color:       "#45B7D1",
	},
	"o3": {
		DisplayName: "O₃",
		Description: "Ground-level ozone",
		Units:       "ppm",
		Color:       "#96CEB4",
	},
	"co": {
		DisplayName: "CO",
		Description: "Carbon monoxide",
		Units:       "ppm",
		Color:       "#FFEAA7",
	},
	"so2": {
		DisplayName: "SO₂",
		Description: "Sulfur dioxide",
		Units:       "ppm",
		Color:       "#DDA0DD",
	},
	"bc": {
		DisplayName: "BC",
		Description: "Black Carbon",
		Units:       "µg/m³",
		Color:       "#2C3E50",
	},
}

const defaultColor = "#1f77b4"

// Info returns metadata for a parameter, falling back to an uppercased code
// for pollutants not in the table.
func Info(parameter string) PollutantInfo {
	if info, ok := Pollutants[parameter]; ok {
		return info
	}
	return PollutantInfo{
		DisplayName: strings.ToUpper(parameter),
		Units:       "",
		Color:       defaultColor,
	}
}

// AQIBand is one health-risk tier of the Air Quality Index. Thresholds are
// external, fixed data consumed as-is.
type AQIBand struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Category    string  `json:"category"`
	Color       string  `json:"color"`
	MarkerColor string  `json:"markerColor"`
}

// aqiThresholds holds banding per parameter; PM2.5 is the reference scale
// and the fallback for parameters without their own bands.
var aqiThresholds = map[string][]AQIBand{
	"pm25": {
		{Min: 0, Max: 12, Category: "Good", Color: "#00E400", MarkerColor: "green"},
		{Min: 12.1, Max: 35.4, Category: "Moderate", Color: "#FFFF00", MarkerColor: "yellow"},
		{Min: 35.5, Max: 55.4, Category: "Unhealthy for Sensitive Groups", Color: "#FF7E00", MarkerColor: "orange"},
		{Min: 55.5, Max: 150.4, Category: "Unhealthy", Color: "#FF0000", MarkerColor: "red"},
		{Min: 150.5, Max: 250.4, Category: "Very Unhealthy", Color: "#8F3F97", MarkerColor: "purple"},
		{Min: 250.5, Max: math.Inf(1), Category: "Hazardous", Color: "#7E0023", MarkerColor: "darkred"},
	},
}

// ClassifyAQI maps a concentration to its AQI band for the parameter.
// The second return is false when the value falls outside every band
// (negative readings or threshold gaps).
func ClassifyAQI(value float64, parameter string) (AQIBand, bool) {
	bands, ok := aqiThresholds[parameter]
	if !ok {
		bands = aqiThresholds["pm25"]
	}
	for _, b := range bands {
		if value >= b.Min && value <= b.Max {
			return b, true
		}
	}
	return AQIBand{}, false
}
