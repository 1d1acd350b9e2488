package types

// TimeTBD is the sentinel used when the catalog does not publish a start time.
const TimeTBD = "TBD"

// EventRecord is the normalized form of a single catalog item. Records are
// created once at collection time and never mutated.
type EventRecord struct {
	ID             string  `json:"event_id"`
	Name           string  `json:"event_name"`
	Description    string  `json:"description"`
	Date           string  `json:"date"` // YYYY-MM-DD
	Time           string  `json:"time"` // HH:MM or TimeTBD
	VenueName      string  `json:"venue_name"`
	VenueAddress   string  `json:"venue_address"`
	VenueCity      string  `json:"venue_city"`
	VenueState     string  `json:"venue_state"`
	VenueLatitude  float64 `json:"venue_latitude"`
	VenueLongitude float64 `json:"venue_longitude"`
	PriceMin       float64 `json:"price_min"`
	PriceMax       float64 `json:"price_max"`
	Category       string  `json:"category"`
	Genre          string  `json:"genre"`
	URL            string  `json:"url"`
	ImageURL       string  `json:"image_url"`
	IsWeekend      bool    `json:"is_weekend"`
	IsOutdoor      bool    `json:"is_outdoor"`
}

// EventCollection is the joined output of the catalog side of the fan-out.
type EventCollection struct {
	Request    UserRequest   `json:"request"`
	Events     []EventRecord `json:"events"`
	TotalFound int           `json:"total_found"`
	Error      string        `json:"error,omitempty"`
}
