package events

import (
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// Venue-name keywords that mark an event as outdoor. Matching is a
// case-insensitive substring check.
var outdoorKeywords = []string{"stadium", "park", "amphitheater", "field", "grounds", "pavilion"}

// IsWeekend reports whether a YYYY-MM-DD date falls on Friday, Saturday or
// Sunday. Unparseable dates are never weekends.
func IsWeekend(date string) bool {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	switch t.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}

// IsOutdoor reports whether the venue name contains one of the outdoor
// keywords.
func IsOutdoor(venueName string) bool {
	lower := strings.ToLower(venueName)
	for _, kw := range outdoorKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// rawPage mirrors one page of the catalog's events listing.
type rawPage struct {
	Embedded *struct {
		Events []rawEvent `json:"events"`
	} `json:"_embedded"`
	Page struct {
		TotalPages int `json:"totalPages"`
	} `json:"page"`
	Fault *struct {
		FaultString string `json:"faultstring"`
	} `json:"fault"`
}

type rawEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Info        string `json:"info"`
	PleaseNote  string `json:"pleaseNote"`
	Images      []struct {
		URL string `json:"url"`
	} `json:"images"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	PriceRanges []struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"priceRanges"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
	Embedded *struct {
		Venues []rawVenue `json:"venues"`
	} `json:"_embedded"`
}

type rawVenue struct {
	Name    string `json:"name"`
	Address struct {
		Line1 string `json:"line1"`
	} `json:"address"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		StateCode string `json:"stateCode"`
	} `json:"state"`
	Location struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location"`
}

// normalizeEvent flattens one raw catalog item into an EventRecord. Price
// fields default to 0 rather than staying unset, the first venue, price
// range, classification and image win, and the description falls back
// through the catalog's secondary text fields.
func normalizeEvent(raw rawEvent) types.EventRecord {
	rec := types.EventRecord{
		ID:   raw.ID,
		Name: raw.Name,
		URL:  raw.URL,
		Date: raw.Dates.Start.LocalDate,
		Time: raw.Dates.Start.LocalTime,
	}
	if rec.Time == "" {
		rec.Time = types.TimeTBD
	}

	if raw.Embedded != nil && len(raw.Embedded.Venues) > 0 {
		v := raw.Embedded.Venues[0]
		rec.VenueName = v.Name
		rec.VenueAddress = v.Address.Line1
		rec.VenueCity = v.City.Name
		rec.VenueState = v.State.StateCode
		rec.VenueLatitude = parseCoord(v.Location.Latitude)
		rec.VenueLongitude = parseCoord(v.Location.Longitude)
	}

	if len(raw.PriceRanges) > 0 {
		rec.PriceMin = raw.PriceRanges[0].Min
		rec.PriceMax = raw.PriceRanges[0].Max
	}

	if len(raw.Classifications) > 0 {
		rec.Category = raw.Classifications[0].Segment.Name
		rec.Genre = raw.Classifications[0].Genre.Name
	}

	if len(raw.Images) > 0 {
		rec.ImageURL = raw.Images[0].URL
	}

	rec.Description = raw.Description
	if rec.Description == "" {
		rec.Description = raw.Info
	}
	if rec.Description == "" {
		rec.Description = raw.PleaseNote
	}

	rec.IsWeekend = IsWeekend(rec.Date)
	rec.IsOutdoor = IsOutdoor(rec.VenueName)
	return rec
}

func parseCoord(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
