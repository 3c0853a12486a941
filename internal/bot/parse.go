package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSearchArgs extracts a keyword and an optional trailing recency window
// in days from /search arguments. A trailing number is taken as the window;
// everything else is the keyword.
func ParseSearchArgs(args string) (string, int, error) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		return "", 0, fmt.Errorf("keyword is required")
	}

	days := defaultSearchDays
	if len(parts) > 1 {
		if d, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if d < 1 {
				return "", 0, fmt.Errorf("days must be positive")
			}
			days = d
			parts = parts[:len(parts)-1]
		}
	}

	return strings.Join(parts, " "), days, nil
}

// ParseIDArg extracts a numeric draft ID from a command argument string.
func ParseIDArg(args string) (int64, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("draft ID is required")
	}
	id, err := strconv.ParseInt(strings.Fields(s)[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid draft ID %q", s)
	}
	return id, nil
}
