package tabular

import (
	"regexp"
	"strings"
)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]`)

// Row is one sheet record keyed by original header name. Values are
// whitespace-trimmed.
type Row map[string]string

// Get returns the trimmed value for the given original header, or "".
func (r Row) Get(header string) string {
	if header == "" {
		return ""
	}
	return strings.TrimSpace(r[header])
}

type columnEntry struct {
	canonical string
	original  string
}

// Columns resolves canonical header names back to their original spelling.
// Canonicalization lowercases and strips non-alphanumerics; when two headers
// collapse to the same canonical name the first seen wins.
type Columns struct {
	entries []columnEntry
}

// NewColumns canonicalizes the supplied header row.
func NewColumns(headers []string) *Columns {
	seen := make(map[string]struct{}, len(headers))
	entries := make([]columnEntry, 0, len(headers))
	for _, header := range headers {
		canonical := nonAlnumPattern.ReplaceAllString(strings.ToLower(header), "")
		if canonical == "" {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		entries = append(entries, columnEntry{canonical: canonical, original: header})
	}
	return &Columns{entries: entries}
}

// Find returns the original header matched by the first pattern that hits.
// Within a pattern a full canonical-name match is preferred over a substring
// match; candidates are scanned in first-seen header order. Returns "" when
// nothing matches.
func (c *Columns) Find(patterns ...string) string {
	if c == nil {
		return ""
	}
	for _, pattern := range patterns {
		rx, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		full, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			continue
		}
		partial := ""
		for _, entry := range c.entries {
			if full.MatchString(entry.canonical) {
				return entry.original
			}
			if partial == "" && rx.MatchString(entry.canonical) {
				partial = entry.original
			}
		}
		if partial != "" {
			return partial
		}
	}
	return ""
}
