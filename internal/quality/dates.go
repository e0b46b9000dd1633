package quality

import (
	"strings"
	"time"
)

// ISODate is the canonical date format all date fields are normalized to.
const ISODate = "2006-01-02"

// dateLayouts are the accepted input formats, tried in order. The source
// extracts mix ISO dates, US slash dates, and spelled-out months.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"20060102",
}

// ParseAnyDate parses v against the accepted layouts. The zero time and false
// mean unparseable.
func ParseAnyDate(v string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseBound parses an ISO bound from a contract; contracts are static so a
// malformed bound is a programming error and yields the zero time.
func parseBound(v string) time.Time {
	t, _ := time.Parse(ISODate, v)
	return t
}

// timeNow is swapped out in tests that pin "today".
var timeNow = time.Now
