package match

import (
	"os"
	"path/filepath"
	"strings"

	"neuroprep/internal/imageindex"
)

// Keys are the row identifiers a candidate path is scored against. Empty
// fields simply contribute nothing.
type Keys struct {
	SubjectID string
	ImageID   string
	SeriesID  string
	Visit     string
}

func (k Keys) normalized() Keys {
	return Keys{
		SubjectID: strings.TrimSpace(k.SubjectID),
		ImageID:   strings.TrimSpace(k.ImageID),
		SeriesID:  strings.TrimSpace(k.SeriesID),
		Visit:     strings.TrimSpace(k.Visit),
	}
}

// Score is the two-part ranking tuple: Primary orders candidates, PrefixLen
// breaks ties between equally scored image-id prefix matches.
type Score struct {
	Primary   int
	PrefixLen int
}

func (s Score) less(other Score) bool {
	if s.Primary != other.Primary {
		return s.Primary < other.Primary
	}
	return s.PrefixLen < other.PrefixLen
}

// Candidates assembles the pool for the given keys, in order: artifacts of
// the directory named exactly like the subject id, artifacts of every
// directory whose name starts with or contains the image id, and finally —
// only when both came up empty — the full indexed pool. Duplicates are kept;
// the pool is a union, not a set.
func Candidates(idx *imageindex.Index, keys Keys) []string {
	keys = keys.normalized()
	var pool []string
	if keys.SubjectID != "" {
		pool = append(pool, idx.Artifacts(keys.SubjectID)...)
	}
	if keys.ImageID != "" {
		for _, dir := range idx.DirNames() {
			if strings.HasPrefix(dir, keys.ImageID) || strings.Contains(dir, keys.ImageID) {
				pool = append(pool, idx.Artifacts(dir)...)
			}
		}
	}
	if len(pool) == 0 {
		pool = idx.All()
	}
	return pool
}

// ScoreCandidate scores one path against the keys.
func ScoreCandidate(path string, keys Keys) Score {
	keys = keys.normalized()
	segments := strings.Split(filepath.ToSlash(path), "/")

	var score Score
	if keys.SubjectID != "" {
		for _, segment := range segments {
			if segment == keys.SubjectID {
				score.Primary += 100
				break
			}
		}
	}
	if keys.ImageID != "" {
		for _, segment := range segments {
			if segment == keys.ImageID {
				score.Primary += 80
				break
			}
		}
		for _, segment := range segments {
			if strings.HasPrefix(segment, keys.ImageID) {
				score.Primary += 60
				if len(keys.ImageID) > score.PrefixLen {
					score.PrefixLen = len(keys.ImageID)
				}
				break
			}
		}
		if strings.Contains(path, keys.ImageID) {
			score.Primary += 40
		}
	}
	if keys.SeriesID != "" && strings.Contains(path, keys.SeriesID) {
		score.Primary += 10
	}
	if keys.Visit != "" && strings.Contains(path, keys.Visit) {
		score.Primary += 10
	}
	return score
}

// ChooseBest returns the best-scoring candidate. Ties keep the first
// encountered candidate. When the pool held two or more candidates and the
// winner scored zero on every criterion, the match is rejected as too
// ambiguous; a single unscored candidate is accepted as-is.
func ChooseBest(candidates []string, keys Keys) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	best := ""
	bestScore := Score{Primary: -1, PrefixLen: -1}
	for _, candidate := range candidates {
		sc := ScoreCandidate(candidate, keys)
		if bestScore.less(sc) {
			bestScore = sc
			best = candidate
		}
	}
	if len(candidates) > 1 && bestScore.Primary <= 0 {
		return "", false
	}
	return best, true
}

// FindSegm looks for a companion segmentation artifact in the same
// directory as the chosen image. Absence is not an error; the empty string
// means none.
func FindSegm(imagePath string) string {
	dir := filepath.Dir(imagePath)
	for _, name := range imageindex.SegmNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
