package timestamp

import (
	"regexp"
	"time"
)

var digitRunPattern = regexp.MustCompile(`[0-9]+`)

// sheetLayouts are explicit date formats seen in exported study sheets,
// tried before any digit-run heuristics.
var sheetLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"2006/1/2",
	"2-Jan-2006",
	"2/1/2006",
}

// FromFragments extracts an acquisition time from the supplied text
// fragments. Priority order, first hit wins across all fragments:
//
//  1. a 14-digit run parsed as yyyyMMddHHmmss
//  2. an 8-digit run parsed as yyyyMMdd (midnight)
//  3. a bare 4-digit year (January 1st, midnight)
//
// A run only counts when it is a maximal digit sequence: digits embedded in
// longer numbers (vendor image IDs, checksums) never match. Returns false
// when no fragment yields a timestamp.
func FromFragments(fragments ...string) (time.Time, bool) {
	for _, fragment := range fragments {
		if ts, ok := parseRun(fragment, 14, "20060102150405"); ok {
			return ts, true
		}
	}
	for _, fragment := range fragments {
		if ts, ok := parseRun(fragment, 8, "20060102"); ok {
			return ts, true
		}
	}
	for _, fragment := range fragments {
		if ts, ok := parseRun(fragment, 4, "2006"); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseDateValue parses an explicit sheet date cell. Known spreadsheet
// layouts are tried first, then the digit-run heuristics of FromFragments.
// Returns false for unparseable values; callers treat that as unknown.
func ParseDateValue(values ...string) (time.Time, bool) {
	for _, value := range values {
		if value == "" {
			continue
		}
		for _, layout := range sheetLayouts {
			if ts, err := time.Parse(layout, value); err == nil {
				return ts, true
			}
		}
		if ts, ok := FromFragments(value); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseRun finds the first maximal digit run of exactly length in fragment
// and parses it with layout. Year runs outside 1000-2999 are rejected so
// numeric identifiers embedded in paths never parse as dates.
func parseRun(fragment string, length int, layout string) (time.Time, bool) {
	if fragment == "" {
		return time.Time{}, false
	}
	for _, run := range digitRunPattern.FindAllString(fragment, -1) {
		if len(run) != length {
			continue
		}
		if run[0] != '1' && run[0] != '2' {
			continue
		}
		ts, err := time.Parse(layout, run)
		if err != nil {
			continue
		}
		return ts, true
	}
	return time.Time{}, false
}
