package recommendation

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// scoringSystemInstructions tells the judge how to weigh candidates and to
// reply with nothing but a JSON array. The sanitizer treats the output format
// as an aspiration, not a guarantee.
const scoringSystemInstructions = `You are an expert event recommendation engine. ` +
	`Your primary job is to semantically match what the user is looking for against each event's name and description. ` +
	`Score each event 0-100 using this priority order:
1. SEMANTIC MATCH (most important): Does the event name/description align with what the user asked for? ` +
	`Read the description carefully — an event called 'Jazz Night' with a description about a rock band should score low for a jazz request.
2. PRACTICAL FIT: Does the price fit the budget? Is the venue type (indoor/outdoor) appropriate given the weather?
3. TIMING: Weekend events score slightly higher for leisure requests.
Give a 'reason' that explains specifically how the event description matches or mismatches the user's request. ` +
	`Respond with ONLY a valid JSON array. No prose, no markdown, no code fences.`

// buildScoringPrompt renders the user message for the scoring call: intent,
// constraints, then one block per candidate. Candidates must already be
// capped by the caller.
func buildScoringPrompt(request types.UserRequest, candidates []types.EventRecord, forecasts map[string]types.ForecastRecord) string {
	blocks := make([]string, 0, len(candidates))
	for _, event := range candidates {
		var forecast *types.ForecastRecord
		if w, ok := forecasts[event.Date]; ok {
			forecast = &w
		}
		blocks = append(blocks, buildEventSummary(event, forecast))
	}

	budget := "No limit"
	if request.BudgetMax != nil {
		budget = fmt.Sprintf("$%.0f", *request.BudgetMax)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User is looking for: %q\n", request.EventDescription)
	if request.VenuePreference != "" {
		fmt.Fprintf(&sb, "Venue preference: %s\n", request.VenuePreference)
	}
	fmt.Fprintf(&sb, "Budget max: %s\n", budget)
	fmt.Fprintf(&sb, "Date range: %s to %s\n\n", request.StartDate, request.EndDate)
	fmt.Fprintf(&sb, "Score each of the following %d events based on how well they match what the user described. ", len(candidates))
	sb.WriteString("Pay close attention to the Description field of each event.\n\n")
	sb.WriteString(strings.Join(blocks, "\n\n---\n\n"))
	sb.WriteString("\n\nRespond with ONLY this JSON array:\n")
	sb.WriteString(`[{"event_id": "...", "score": <0-100>, "reason": "one sentence explaining the semantic match"}, ...]`)
	return sb.String()
}

func buildEventSummary(event types.EventRecord, forecast *types.ForecastRecord) string {
	description := strings.TrimSpace(event.Description)
	if description == "" {
		description = "No description available"
	}
	return fmt.Sprintf(
		"ID: %s\nName: %s\nDescription: %s\nDate: %s (%s) @ %s\nVenue: %s (%s)\nCategory: %s / %s\nPrice: %s\nWeather: %s",
		event.ID,
		event.Name,
		description,
		event.Date, dayType(event), event.Time,
		event.VenueName, venueType(event),
		event.Category, event.Genre,
		formatPrice(event),
		formatWeather(forecast),
	)
}

func dayType(event types.EventRecord) string {
	if event.IsWeekend {
		return "Weekend"
	}
	return "Weekday"
}

func venueType(event types.EventRecord) string {
	if event.IsOutdoor {
		return "Outdoor"
	}
	return "Indoor"
}

func formatPrice(event types.EventRecord) string {
	if event.PriceMin == 0 && event.PriceMax == 0 {
		return "Free/Unknown"
	}
	return fmt.Sprintf("$%.0f-$%.0f", event.PriceMin, event.PriceMax)
}

func formatWeather(forecast *types.ForecastRecord) string {
	if forecast == nil {
		return "No forecast"
	}
	return fmt.Sprintf("%s, %.0f-%.0fF, rain %.0f%%, outdoor_ok=%t",
		forecast.Description, forecast.TempMinF, forecast.TempMaxF,
		forecast.PrecipChance, forecast.IsSuitableOutdoor)
}
