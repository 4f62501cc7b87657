// Package filesize converts between human-entered size strings and byte
// counts for resource metadata.
package filesize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(KB|MB|GB)?$`)

var unitBytes = map[string]float64{
	"KB": 1024,
	"MB": 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
}

// Parse converts strings like "2.5 MB" into a byte count. A missing unit
// means KB. It returns false for empty or malformed input.
func Parse(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	match := sizePattern.FindStringSubmatch(strings.ToUpper(raw))
	if match == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	unit := match[2]
	if unit == "" {
		unit = "KB"
	}

	return int64(math.Round(value * unitBytes[unit])), true
}

// Format renders a byte count back into a short human string.
func Format(bytes int64) string {
	switch {
	case bytes >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
