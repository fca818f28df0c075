package application

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"mic-recorder/internal/domain"
)

const (
	excellentRatio = 0.85
	almostRatio    = 0.6
)

// Similarity returns the matching-character ratio of a and b in [0, 1],
// ignoring case.
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(splitRunes(strings.ToLower(a)), splitRunes(strings.ToLower(b)))
	return m.Ratio()
}

func Evaluate(transcript, expected string) domain.Assessment {
	ratio := Similarity(transcript, expected)

	verdict := domain.VerdictRetry
	switch {
	case ratio > excellentRatio:
		verdict = domain.VerdictExcellent
	case ratio > almostRatio:
		verdict = domain.VerdictAlmost
	}

	return domain.Assessment{
		Expected:   expected,
		Transcript: transcript,
		Score:      math.Round(ratio*10000) / 100,
		Verdict:    verdict,
	}
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
