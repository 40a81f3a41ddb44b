package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var countPattern = regexp.MustCompile(`([0-9](?:[0-9,.]| [0-9])*)\s?([KM]\b)?`)

// ParseInteractionCount converts display counts such as "2.2K", "13M" or
// "15,443 Views" into integers. One decimal digit is honoured for K and M
// suffixes: "2.2K" is 2200.
func ParseInteractionCount(text string) (int, error) {
	m := countPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("no count in %q", text)
	}
	number := strings.NewReplacer(",", "", " ", "").Replace(m[1])
	number = strings.TrimRight(number, ".")
	suffix := m[2]

	whole, fraction, hasFraction := strings.Cut(number, ".")
	n, err := strconv.Atoi(whole)
	if err != nil {
		return 0, fmt.Errorf("failed to parse count %q: %w", text, err)
	}

	var unit, tenth int
	switch suffix {
	case "K":
		unit, tenth = 1000, 100
	case "M":
		unit, tenth = 1_000_000, 100_000
	default:
		// "15.443" style thousands separators
		if hasFraction && len(fraction) == 3 && !strings.Contains(fraction, ".") {
			if f, err := strconv.Atoi(fraction); err == nil {
				return n*1000 + f, nil
			}
		}
		return n, nil
	}

	total := n * unit
	if hasFraction && fraction != "" {
		total += int(fraction[0]-'0') * tenth
	}
	return total, nil
}
