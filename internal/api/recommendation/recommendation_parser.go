package recommendation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// trailingComma matches a separator directly before a closing brace or
// bracket. Some models always emit one; strict JSON never allows it.
var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// rawScoreEntry tolerates the id key variants the judge has been seen to use
// and keeps score optional so a half-emitted object still parses.
type rawScoreEntry struct {
	EventID string   `json:"event_id"`
	ID      string   `json:"id"`
	Score   *float64 `json:"score"`
	Reason  string   `json:"reason"`
}

// SanitizeScoreReply recovers the score array from the judge's raw reply.
// The reply is untrusted text: it may be wrapped in code fences, surrounded
// by prose, cut off mid-array by the token limit, or carry trailing commas.
// Repairs are applied in a fixed order; if the result still does not parse,
// the reply is declared unrecoverable and a ScoringError is returned. The
// repaired return reports whether any structural repair beyond trimming was
// needed.
func SanitizeScoreReply(raw string) (entries []types.ScoreEntry, repaired bool, err error) {
	cleaned := stripCodeFences(strings.TrimSpace(raw))

	open := strings.Index(cleaned, "[")
	closeIdx := strings.LastIndex(cleaned, "]")
	switch {
	case open >= 0 && closeIdx > open:
		// Slice to the array span, discarding surrounding prose.
		if open > 0 || closeIdx < len(cleaned)-1 {
			repaired = true
		}
		cleaned = cleaned[open : closeIdx+1]
	case open >= 0:
		// Reply was cut off mid-array: drop the dangling incomplete object
		// and close the array synthetically.
		repaired = true
		cleaned = closeTruncatedArray(cleaned[open:])
	default:
		return nil, repaired, &types.ScoringError{
			Err: fmt.Errorf("%w: no JSON array found in reply", types.ErrParse),
		}
	}

	rawEntries, jsonErr := parseEntries(cleaned)
	if jsonErr != nil && trailingComma.MatchString(cleaned) {
		// Separator repair only runs after a strict parse failed: the regex
		// cannot tell a separator from the same characters inside a string
		// value, so rewriting a reply that already parses would corrupt
		// rationale text.
		repaired = true
		rawEntries, jsonErr = parseEntries(trailingComma.ReplaceAllString(cleaned, "$1"))
	}
	if jsonErr != nil {
		return nil, repaired, &types.ScoringError{
			Err: fmt.Errorf("%w: %v", types.ErrParse, jsonErr),
		}
	}

	entries = make([]types.ScoreEntry, 0, len(rawEntries))
	for _, r := range rawEntries {
		id := r.EventID
		if id == "" {
			id = r.ID
		}
		var score float64
		if r.Score != nil {
			score = *r.Score
		}
		entries = append(entries, types.ScoreEntry{EventID: id, Score: score, Reason: r.Reason})
	}
	return entries, repaired, nil
}

func parseEntries(s string) ([]rawScoreEntry, error) {
	var rawEntries []rawScoreEntry
	err := json.Unmarshal([]byte(s), &rawEntries)
	return rawEntries, err
}

// stripCodeFences removes a leading ``` or ```json marker and a trailing
// ``` marker when present. Anything else is left alone.
func stripCodeFences(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// closeTruncatedArray takes text that starts with '[' but never closes it,
// cuts everything after the last complete object, strips dangling
// separators, and appends the missing ']'.
func closeTruncatedArray(s string) string {
	lastComplete := strings.LastIndex(s, "}")
	if lastComplete < 0 {
		// Not even one complete object survived.
		return "[]"
	}
	s = s[:lastComplete+1]
	s = strings.TrimRight(s, " \t\r\n,")
	return s + "]"
}
