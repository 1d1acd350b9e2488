package types

// ScoreEntry is one element of the judge's structured reply after
// sanitization. Any field may have been absent in the raw text; the ranker
// fills the defaults.
type ScoreEntry struct {
	EventID string  `json:"event_id"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// ScoredEvent pairs a candidate with its forecast (nil when no forecast
// exists for the event's date) and the judge's verdict.
type ScoredEvent struct {
	Event          EventRecord     `json:"event"`
	Weather        *ForecastRecord `json:"weather,omitempty"`
	RelevanceScore float64         `json:"relevance_score"` // always within [0,100]
	ScoreReason    string          `json:"score_reason"`
}

// RecommendationSet is the ranked result of one search: recommendations are
// sorted descending by score, ties keep collection order, and the slice is
// truncated to the requested top-N.
type RecommendationSet struct {
	Request         UserRequest   `json:"request"`
	Recommendations []ScoredEvent `json:"recommendations"`
	TotalFound      int           `json:"total_found"`
	// Error is set only on a fatal catalog failure; the set is then empty.
	Error string `json:"error,omitempty"`
	// ForecastError records an absorbed forecast failure: weather fields are
	// absent but the set is still valid.
	ForecastError string `json:"forecast_error,omitempty"`
}
