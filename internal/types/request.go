package types

import (
	"fmt"
	"time"
)

// UserRequest describes a single event search. It is built once per search
// and never mutated afterwards.
type UserRequest struct {
	City             string   `json:"city" validate:"required"`
	StateCode        string   `json:"state_code,omitempty" validate:"omitempty,len=2"`
	CountryCode      string   `json:"country_code" validate:"omitempty,len=2"`
	StartDate        string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	EventDescription string   `json:"event_description" validate:"required"`
	VenuePreference  string   `json:"venue_preference,omitempty"`
	BudgetMax        *float64 `json:"budget_max,omitempty" validate:"omitempty,gt=0"`
}

// CheckDates enforces the ordering rule the struct tags cannot express:
// the start of the window must not be after its end.
func (r UserRequest) CheckDates() error {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return &ValidationError{Field: "start_date", Reason: fmt.Sprintf("invalid date %q", r.StartDate)}
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return &ValidationError{Field: "end_date", Reason: fmt.Sprintf("invalid date %q", r.EndDate)}
	}
	if start.After(end) {
		return &ValidationError{Field: "start_date", Reason: "start date is after end date"}
	}
	return nil
}
