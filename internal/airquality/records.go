package airquality

import (
	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

// Helpers for reading loosely-typed upstream records. The OpenAQ record
// shape is not validated locally, so every accessor reports presence
// explicitly instead of panicking on missing or oddly-typed fields.

// RecordFloat reads a numeric field from a record.
func RecordFloat(r openaq.Record, key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// RecordString reads a string field from a record.
func RecordString(r openaq.Record, key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// RecordID reads an integer identifier field from a record. JSON numbers
// decode as float64, so ids arrive that way.
func RecordID(r openaq.Record, key string) (int64, bool) {
	f, ok := RecordFloat(r, key)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// RecordParameter reads the parameter code of a measurement. Depending on
// the endpoint it is either a flat string or a nested object with a name.
func RecordParameter(r openaq.Record) (string, bool) {
	if s, ok := RecordString(r, "parameter"); ok {
		return s, true
	}
	if nested, ok := r["parameter"].(map[string]any); ok {
		if name, ok := nested["name"].(string); ok {
			return name, true
		}
	}
	return "", false
}

// RecordCoordinates reads the latitude/longitude pair of a location record.
func RecordCoordinates(r openaq.Record) (lat, lon float64, ok bool) {
	coords, found := r["coordinates"].(map[string]any)
	if !found {
		return 0, 0, false
	}
	latV, latOK := coords["latitude"].(float64)
	lonV, lonOK := coords["longitude"].(float64)
	if !latOK || !lonOK {
		return 0, 0, false
	}
	return latV, lonV, true
}

// RecordCountry reads the country of a location record, which is either a
// flat code string or a nested object.
func RecordCountry(r openaq.Record) (string, bool) {
	if s, ok := RecordString(r, "country"); ok {
		return s, true
	}
	if nested, ok := r["country"].(map[string]any); ok {
		if code, ok := nested["code"].(string); ok {
			return code, true
		}
	}
	return "", false
}

// RecordCity reads the city of a location record. Some API versions call
// the field locality.
func RecordCity(r openaq.Record) (string, bool) {
	if s, ok := RecordString(r, "city"); ok {
		return s, true
	}
	return RecordString(r, "locality")
}

// RecordDatetime reads the measurement timestamp as its wire string.
// Some endpoints nest it as {"utc": ..., "local": ...}.
func RecordDatetime(r openaq.Record) (string, bool) {
	if s, ok := RecordString(r, "datetime"); ok {
		return s, true
	}
	if nested, ok := r["datetime"].(map[string]any); ok {
		if utc, ok := nested["utc"].(string); ok {
			return utc, true
		}
	}
	return "", false
}
