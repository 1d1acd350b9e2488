package types

import (
	"errors"
	"fmt"
)

// ErrParse marks a judge reply that stayed unparseable after every repair
// step. It is always wrapped in a ScoringError so callers can treat both the
// transport and the parse failure with the same fallback.
var ErrParse = errors.New("judge reply unparseable after sanitization")

// CollectionError reports a collaborator failure during the fan-out stage.
// Source is "catalog" or "forecast"; only a catalog failure is fatal to the
// pipeline.
type CollectionError struct {
	Source string
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("%s collection failed: %v", e.Source, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// ScoringError reports that the judge was unreachable or its reply could not
// be recovered. It is absorbed by the ranker via fallback scores and never
// propagated to the consumer-facing surface.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed: %v", e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// ValidationError rejects a malformed UserRequest before any collaborator is
// called.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}
