package ledger

import (
	"strings"
	"time"
)

// SavedLayout is the canonical on-disk timestamp format.
const SavedLayout = "2006-01-02 15:04:05"

// prettyLayout is how timestamps are shown in the recent-transactions list.
const prettyLayout = "Jan 02, 2006 15:04"

// Record is one expense row. Date holds the raw string as loaded; it is only
// normalized to SavedLayout when the table is written back.
type Record struct {
	Date     string
	Amount   float64
	Note     string
	Merchant string
	Category string
}

// parseLayouts is the fixed date policy: one ordered list, tried once per
// value. Slash dates are always day-first.
var parseLayouts = []string{
	SavedLayout,
	"2006-01-02",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
}

// ParseDate parses a stored timestamp against the fixed layout list.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PrettyDate renders a stored timestamp for display. Unparseable values pass
// through unchanged.
func PrettyDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(prettyLayout)
}
