package types

// ForecastRecord is one calendar day of normalized weather data, keyed by
// the same YYYY-MM-DD string the catalog uses for event dates.
type ForecastRecord struct {
	Date              string  `json:"date"`
	TempMinF          float64 `json:"temp_min_f"`
	TempMaxF          float64 `json:"temp_max_f"`
	Description       string  `json:"description"`
	PrecipChance      float64 `json:"precipitation_chance"` // 0-100
	WindSpeedMPH      float64 `json:"wind_speed_mph"`
	IsSuitableOutdoor bool    `json:"is_suitable_outdoor"`
}

// ForecastCollection is the joined output of the weather side of the fan-out.
// Forecasts is keyed by date string; a missing day simply has no entry.
type ForecastCollection struct {
	City      string                    `json:"city"`
	Forecasts map[string]ForecastRecord `json:"forecasts"`
	Error     string                    `json:"error,omitempty"`
}
