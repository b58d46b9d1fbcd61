package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClockLabel parses a rendered duration label like "4:13" or
// "1:02:45" into whole seconds.
func ParseClockLabel(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("timeutil.ParseClockLabel: expected mm:ss or h:mm:ss; got %q", s)
	}

	total := 0

	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("timeutil.ParseClockLabel: could not parse segment %q: %w", part, err)
		}
		if v < 0 {
			return 0, fmt.Errorf("timeutil.ParseClockLabel: negative segment in %q", s)
		}

		total = total*60 + v
	}

	return total, nil
}
