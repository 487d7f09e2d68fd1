package tasks

import (
	"regexp"
	"strings"

	"github.com/desertthunder/ytradio/internal/models"
)

// skipKeywords reject a candidate when any appears in its title, case-insensitively.
var skipKeywords = []string{
	"latest", "cover", "remix", "extended", "version", "karaoke",
	"lyrical", "instrumental", "audio", "official music video",
}

var skipPrefixes = []string{"lyrical:", "audio:", "official music video:"}

var featuredPattern = regexp.MustCompile(`(?i)\((feat\.|ft\.|featuring)\s*([^)]+)\)`)

// Accept reports whether candidate should be enriched and emitted for a seed with ID seedID.
//
// Candidates missing an ID, title or artists are rejected, as is the seed itself.
func Accept(candidate models.Candidate, seedID string) bool {
	if !candidate.Valid() {
		return false
	}
	if candidate.VideoID == seedID {
		return false
	}
	return !IsUnwantedTitle(candidate.Title)
}

// IsUnwantedTitle reports whether title looks like a cover, remix, lyric video or other alternate cut.
func IsUnwantedTitle(title string) bool {
	lower := strings.ToLower(title)

	for _, keyword := range skipKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	if strings.Contains(lower, "|") {
		for segment := range strings.SplitSeq(lower, "|") {
			segment = strings.TrimSpace(segment)
			for _, keyword := range skipKeywords {
				if segment == keyword {
					return true
				}
			}
		}
	}

	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ExtractFeatured returns the artists credited as "(feat. X)", "(ft. X)" or "(featuring X)" in title.
//
// Every match yields one entry, so an empty credit such as "(feat. )" yields "". Never returns nil.
func ExtractFeatured(title string) []string {
	matches := featuredPattern.FindAllStringSubmatch(title, -1)
	featured := make([]string, 0, len(matches))
	for _, m := range matches {
		featured = append(featured, strings.TrimSpace(m[2]))
	}
	return featured
}
