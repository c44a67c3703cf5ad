package youtube

import (
	"regexp"
	"strconv"
)

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDurationSeconds converts an ISO 8601 duration such as "PT1M30S" into
// seconds. Malformed input, including anything not starting with "PT", is 0.
func ParseDurationSeconds(duration string) int {
	matches := durationPattern.FindStringSubmatch(duration)
	if matches == nil {
		return 0
	}

	var total int
	for i, unit := range []int{3600, 60, 1} {
		if matches[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(matches[i+1])
		if err != nil || n < 0 {
			return 0
		}
		total += n * unit
	}
	if total < 0 {
		return 0
	}
	return total
}
