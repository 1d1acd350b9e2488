package recommendation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

func TestSanitizeScoreReplyCleanArray(t *testing.T) {
	entries, repaired, err := SanitizeScoreReply(`[{"event_id":"a","score":88,"reason":"strong match"}]`)

	require.NoError(t, err)
	assert.False(t, repaired)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].EventID)
	assert.Equal(t, 88.0, entries[0].Score)
	assert.Equal(t, "strong match", entries[0].Reason)
}

func TestSanitizeScoreReplyFencedWithTrailingComma(t *testing.T) {
	raw := "```json\n" + `[{"event_id":"a","score":10,"reason":"x"},{"event_id":"b","score":5,"reason":"y"},]` + "\n```"

	entries, repaired, err := SanitizeScoreReply(raw)

	require.NoError(t, err)
	assert.True(t, repaired)
	require.Len(t, entries, 2)
	assert.Equal(t, types.ScoreEntry{EventID: "a", Score: 10, Reason: "x"}, entries[0])
	assert.Equal(t, types.ScoreEntry{EventID: "b", Score: 5, Reason: "y"}, entries[1])
}

func TestSanitizeScoreReplySurroundingProse(t *testing.T) {
	raw := `Sure! Here are the scores you asked for:
[{"event_id":"a","score":70,"reason":"fits"}]
Let me know if you need anything else.`

	entries, repaired, err := SanitizeScoreReply(raw)

	require.NoError(t, err)
	assert.True(t, repaired)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].EventID)
}

func TestSanitizeScoreReplyTruncatedMidObject(t *testing.T) {
	raw := `[{"id":"a","score":10,"reason":"x"},{"id":"b","score":5,"rea`

	entries, repaired, err := SanitizeScoreReply(raw)

	require.NoError(t, err, "truncation must be recovered, never raised")
	assert.True(t, repaired)
	require.Len(t, entries, 1, "the complete first object survives")
	assert.Equal(t, "a", entries[0].EventID, "the id key variant is accepted")
	assert.Equal(t, 10.0, entries[0].Score)
}

func TestSanitizeScoreReplyTruncatedBeforeAnyObject(t *testing.T) {
	entries, repaired, err := SanitizeScoreReply(`[{"event_id":"a","sco`)

	require.NoError(t, err)
	assert.True(t, repaired)
	assert.Empty(t, entries)
}

func TestSanitizeScoreReplySeparatorsInsideStringsSurvive(t *testing.T) {
	// A valid reply whose reason text happens to contain ",\s*]" and ",\s*}"
	// sequences; the separator repair must not touch it.
	raw := `[{"event_id":"a","score":50,"reason":"title ends with [live, ] and {open, }"}]`

	entries, repaired, err := SanitizeScoreReply(raw)

	require.NoError(t, err)
	assert.False(t, repaired)
	require.Len(t, entries, 1)
	assert.Equal(t, "title ends with [live, ] and {open, }", entries[0].Reason)
}

func TestSanitizeScoreReplyMissingFields(t *testing.T) {
	entries, _, err := SanitizeScoreReply(`[{"event_id":"a"},{"score":12}]`)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Zero(t, entries[0].Score, "a missing score defaults to 0, not an error")
	assert.Empty(t, entries[1].EventID)
}

func TestSanitizeScoreReplyUnrecoverable(t *testing.T) {
	for _, raw := range []string{
		"the judge refuses to answer",
		"",
		`["not", "objects", 12]`,
	} {
		_, _, err := SanitizeScoreReply(raw)
		require.Error(t, err, "raw=%q", raw)

		var scoringErr *types.ScoringError
		require.ErrorAs(t, err, &scoringErr)
		assert.True(t, errors.Is(err, types.ErrParse), "parse failures are a sub-case of ScoringError")
	}
}
