package common

import (
	"strconv"
	"strings"
)

// SplitList splits a comma-separated list, trimming whitespace around each
// element and dropping empty entries.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseIntList parses a comma-separated list of integer ids.
func ParseIntList(s string) ([]int64, error) {
	var ids []int64
	for _, p := range SplitList(s) {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
