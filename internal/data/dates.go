package data

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate tries layouts in order. An empty cell is the zero time.
func ParseDate(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q matches none of %v", s, layouts)
}
