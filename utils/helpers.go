package utils

import (
	"fmt"
	"strings"

	"funnelboard/api/models"
)

// ParseBucket accepts a time bucket name in any case, e.g. "Week" or "week".
func ParseBucket(interval string) (models.Bucket, bool) {
	b := models.Bucket(strings.ToLower(strings.TrimSpace(interval)))
	if _, ok := b.Dimension(); !ok {
		return "", false
	}
	return b, true
}

// SplitList splits a comma separated query value, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseDimensions parses a comma separated dimension list such as "region,platform".
func ParseDimensions(raw string) ([]models.Dimension, error) {
	parts := SplitList(raw)
	dims := make([]models.Dimension, 0, len(parts))
	for _, p := range parts {
		d := models.Dimension(strings.ToLower(p))
		if !d.Valid() {
			return nil, fmt.Errorf("unknown dimension %q", p)
		}
		dims = append(dims, d)
	}
	return dims, nil
}
