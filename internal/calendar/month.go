package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tartampluch/go-reminder/internal/config"
)

// ErrUnknownMonth is returned when a month name cannot be resolved.
var ErrUnknownMonth = errors.New(config.ErrUnknownMonth)

// monthAliases maps folded spellings to months. Canonical names of both
// languages are added in init.
var monthAliases = map[string]time.Month{
	"ian": time.January, "jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"iun": time.June, "jun": time.June,
	"iul": time.July, "jul": time.July,
	"aug": time.August,
	"sep": time.September, "sept": time.September,
	"oct": time.October,
	"noi": time.November, "nov": time.November,
	"dec": time.December,
}

func init() {
	for i := range monthsRO {
		monthAliases[fold(monthsRO[i])] = time.Month(i + 1)
		monthAliases[fold(monthsEN[i])] = time.Month(i + 1)
	}
}

// fold lowercases s and strips diacritics ("Mărțișor" -> "martisor").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// ParseMonth normalizes a Romanian or English month name, a number from 1 to 12,
// or a near-miss spelling to a month. Case and diacritics are ignored. A typo is
// accepted when a single month lies within config.MaxMonthDistance edits.
func ParseMonth(text string) (time.Month, error) {
	key := fold(text)
	if key == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, text)
	}

	if n, err := strconv.Atoi(key); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, text)
	}

	if m, ok := monthAliases[key]; ok {
		return m, nil
	}

	if len([]rune(key)) < config.MinFuzzyMonthLen {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, text)
	}

	best, bestDist, ambiguous := time.Month(0), config.MaxMonthDistance+1, false
	for alias, m := range monthAliases {
		if len(alias) < 4 {
			continue
		}
		d := levenshtein.ComputeDistance(key, alias)
		switch {
		case d < bestDist:
			best, bestDist, ambiguous = m, d, false
		case d == bestDist && m != best:
			ambiguous = true
		}
	}

	if best == 0 || ambiguous {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, text)
	}
	return best, nil
}
