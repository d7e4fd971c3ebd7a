package pairing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"neuroprep/internal/manifest"
	"neuroprep/internal/timestamp"
)

// Grouping modes for the subject key.
const (
	GroupExact      = "exact"
	GroupFirstToken = "first_token"
	GroupRegex      = "regex"
)

// Pairing modes.
const (
	ModeEdge = "edge"
	ModeAll  = "all"
)

const daysPerYear = 365.2425

// Options control one pairing run.
type Options struct {
	// Mode selects ModeEdge (first and last scan per group) or ModeAll
	// (every ordered pair meeting the constraints).
	Mode string

	// MinDays and MinYears add up to the minimum gap between the two
	// scans of a pair.
	MinDays  int
	MinYears float64

	// SameSplit drops pairs whose rows carry different split values.
	SameSplit bool

	// MaxPairsPerSubject caps emitted pairs per group in ModeAll. The cap
	// counts the group's pairs in total, not pairs per anchor scan; once it
	// is reached the rest of the group is skipped. Zero means unlimited.
	MaxPairsPerSubject int

	// SubjectGroup selects the grouping key derivation; SubjectRegex is
	// consulted only for GroupRegex and must contain one capture group.
	SubjectGroup string
	SubjectRegex string
}

func (o Options) minGap() time.Duration {
	days := float64(o.MinDays) + o.MinYears*daysPerYear
	return time.Duration(days * 24 * float64(time.Hour))
}

// FilterSplits keeps rows whose split value is in allow. An empty allow
// list keeps everything.
func FilterSplits(rows []manifest.Row, allow []string) []manifest.Row {
	keep := make(map[string]struct{})
	for _, s := range allow {
		s = strings.TrimSpace(s)
		if s != "" {
			keep[s] = struct{}{}
		}
	}
	if len(keep) == 0 {
		return rows
	}
	filtered := make([]manifest.Row, 0, len(rows))
	for _, row := range rows {
		if _, ok := keep[row.Split]; ok {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

type datedRow struct {
	row manifest.Row
	at  time.Time
}

// Pairs emits two consecutive rows per selected pair, earlier scan first.
// Rows without a recoverable timestamp are silently skipped.
func Pairs(rows []manifest.Row, opts Options) ([]manifest.Row, error) {
	var groupRegex *regexp.Regexp
	if opts.SubjectGroup == GroupRegex && opts.SubjectRegex != "" {
		compiled, err := regexp.Compile(opts.SubjectRegex)
		if err != nil {
			return nil, fmt.Errorf("compile subject regex: %w", err)
		}
		groupRegex = compiled
	}
	switch opts.Mode {
	case ModeEdge, ModeAll:
	default:
		return nil, fmt.Errorf("unknown pairing mode %q", opts.Mode)
	}

	// Group by subject key, preserving first-seen group order so output
	// is stable across runs.
	groups := make(map[string][]datedRow)
	var order []string
	for _, row := range rows {
		at, ok := timestamp.FromFragments(row.ImagePath, row.ImageUID)
		if !ok {
			continue
		}
		key := groupKey(row.SubjectID, opts.SubjectGroup, groupRegex)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], datedRow{row: row, at: at})
	}

	minGap := opts.minGap()
	var out []manifest.Row
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].at.Before(group[j].at)
		})

		if opts.Mode == ModeEdge {
			first, last := group[0], group[len(group)-1]
			if opts.SameSplit && first.row.Split != last.row.Split {
				continue
			}
			if last.at.Sub(first.at) < minGap {
				continue
			}
			out = append(out, first.row, last.row)
			continue
		}

		count := 0
	scan:
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				earlier, later := group[i], group[j]
				if opts.SameSplit && earlier.row.Split != later.row.Split {
					continue
				}
				if later.at.Sub(earlier.at) < minGap {
					continue
				}
				out = append(out, earlier.row, later.row)
				count++
				if opts.MaxPairsPerSubject > 0 && count >= opts.MaxPairsPerSubject {
					break scan
				}
			}
		}
	}
	return out, nil
}

func groupKey(subjectID, mode string, groupRegex *regexp.Regexp) string {
	s := strings.TrimSpace(subjectID)
	if s == "" {
		return ""
	}
	switch mode {
	case GroupFirstToken:
		token, _, _ := strings.Cut(s, "_")
		return token
	case GroupRegex:
		if groupRegex != nil {
			if m := groupRegex.FindStringSubmatch(s); len(m) > 1 {
				return m[1]
			}
		}
	}
	return s
}
