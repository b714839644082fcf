package dashboard

import (
	"sort"

	"github.com/jmle94/openaq-dashboard/internal/airquality"
	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

// Default map viewport (New York City at world zoom).
const (
	DefaultCenterLat = 40.7128
	DefaultCenterLon = -74.0060
	DefaultZoom      = 2
)

// MarkerMeasurement is one latest reading shown in a marker popup.
type MarkerMeasurement struct {
	Parameter   string  `json:"parameter"`
	DisplayName string  `json:"displayName"`
	Units       string  `json:"units"`
	Value       float64 `json:"value"`
}

// Marker is one monitoring location on the map. Color encodes the PM2.5 AQI
// band when available: green with data but no PM2.5, gray without recent data.
type Marker struct {
	LocationID   int64               `json:"locationId"`
	Name         string              `json:"name"`
	City         string              `json:"city"`
	Country      string              `json:"country"`
	Lat          float64             `json:"lat"`
	Lon          float64             `json:"lon"`
	Color        string              `json:"color"`
	Measurements []MarkerMeasurement `json:"measurements,omitempty"`
}

// MarkerMap is the payload behind the monitoring-locations map.
type MarkerMap struct {
	CenterLat float64  `json:"centerLat"`
	CenterLon float64  `json:"centerLon"`
	Zoom      int      `json:"zoom"`
	Markers   []Marker `json:"markers"`
}

// latestByLocation indexes latest measurements by location id and parameter.
func latestByLocation(latest []openaq.Record) map[int64]map[string]float64 {
	lookup := make(map[int64]map[string]float64)
	for _, m := range latest {
		id, idOK := airquality.RecordID(m, "locationId")
		param, paramOK := airquality.RecordParameter(m)
		value, valueOK := airquality.RecordFloat(m, "value")
		if !idOK || !paramOK || !valueOK {
			continue
		}
		if lookup[id] == nil {
			lookup[id] = make(map[string]float64)
		}
		lookup[id][param] = value
	}
	return lookup
}

func markerColor(readings map[string]float64) string {
	if readings == nil {
		return "gray"
	}
	pm25, ok := readings["pm25"]
	if !ok {
		return "green"
	}
	band, ok := airquality.ClassifyAQI(pm25, "pm25")
	if !ok {
		return "blue"
	}
	return band.MarkerColor
}

// BuildMarkers assembles map markers from locations and their latest
// measurements. Locations without coordinates are skipped.
func BuildMarkers(locations, latest []openaq.Record) MarkerMap {
	lookup := latestByLocation(latest)

	out := MarkerMap{
		CenterLat: DefaultCenterLat,
		CenterLon: DefaultCenterLon,
		Zoom:      DefaultZoom,
		Markers:   []Marker{},
	}

	for _, loc := range locations {
		lat, lon, ok := airquality.RecordCoordinates(loc)
		if !ok {
			continue
		}
		id, _ := airquality.RecordID(loc, "id")

		m := Marker{
			LocationID: id,
			Lat:        lat,
			Lon:        lon,
			Color:      markerColor(lookup[id]),
		}
		if name, ok := airquality.RecordString(loc, "name"); ok {
			m.Name = name
		}
		if city, ok := airquality.RecordCity(loc); ok {
			m.City = city
		}
		if country, ok := airquality.RecordCountry(loc); ok {
			m.Country = country
		}

		if readings := lookup[id]; readings != nil {
			params := make([]string, 0, len(readings))
			for p := range readings {
				params = append(params, p)
			}
			sort.Strings(params)
			for _, p := range params {
				info := airquality.Info(p)
				m.Measurements = append(m.Measurements, MarkerMeasurement{
					Parameter:   p,
					DisplayName: info.DisplayName,
					Units:       info.Units,
					Value:       readings[p],
				})
			}
		}

		out.Markers = append(out.Markers, m)
	}
	return out
}

// HeatPoint is a [lat, lon, weight] triple for a heat layer.
type HeatPoint [3]float64

// Heatmap is the payload behind the pollutant concentration heat layer.
type Heatmap struct {
	Parameter   string            `json:"parameter"`
	DisplayName string            `json:"displayName"`
	CenterLat   float64           `json:"centerLat"`
	CenterLon   float64           `json:"centerLon"`
	Zoom        int               `json:"zoom"`
	Points      []HeatPoint       `json:"points"`
	Gradient    map[string]string `json:"gradient"`
}

// heatGradient matches the original layer's color stops.
var heatGradient = map[string]string{
	"0.0": "blue",
	"0.3": "green",
	"0.5": "yellow",
	"0.7": "orange",
	"1.0": "red",
}

// BuildHeatmap collects positive latest readings of one parameter at
// located stations into heat-layer points.
func BuildHeatmap(locations, latest []openaq.Record, parameter string) Heatmap {
	values := make(map[int64]float64)
	for _, m := range latest {
		id, idOK := airquality.RecordID(m, "locationId")
		param, paramOK := airquality.RecordParameter(m)
		if !idOK || !paramOK || param != parameter {
			continue
		}
		if v, ok := airquality.RecordFloat(m, "value"); ok {
			values[id] = v
		}
	}

	info := airquality.Info(parameter)
	hm := Heatmap{
		Parameter:   parameter,
		DisplayName: info.DisplayName,
		CenterLat:   DefaultCenterLat,
		CenterLon:   DefaultCenterLon,
		Zoom:        DefaultZoom,
		Points:      []HeatPoint{},
		Gradient:    heatGradient,
	}

	for _, loc := range locations {
		id, idOK := airquality.RecordID(loc, "id")
		lat, lon, coordsOK := airquality.RecordCoordinates(loc)
		if !idOK || !coordsOK {
			continue
		}
		v, ok := values[id]
		if !ok || v <= 0 {
			continue
		}
		hm.Points = append(hm.Points, HeatPoint{lat, lon, v})
	}
	return hm
}
