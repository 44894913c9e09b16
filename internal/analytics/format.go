package analytics

// NoDataMessage is the user-facing reply when a user has no
// transactions to analyze.
const NoDataMessage = "Ingen data"

// ForecastResponse is the wire shape of a forecast result. Field names
// are part of the public contract and must not change.
type ForecastResponse struct {
	DaysLeft    int         `json:"days_left"`
	Simulations int         `json:"simulations"`
	Percentiles Percentiles `json:"percentiles"`
}

// Percentiles carries the three spend estimates keyed by ordinal name.
type Percentiles struct {
	P5  float64 `json:"5th"`
	P50 float64 `json:"50th"`
	P95 float64 `json:"95th"`
}

// WeeklyPatternResponse is the wire shape of a weekly pattern result.
type WeeklyPatternResponse struct {
	WeeklyTotals []float64 `json:"weekly_totals"`
	WeekdayMeans []float64 `json:"weekday_means"`
	WeekdayStds  []float64 `json:"weekday_stds"`
	TopWeekIndex int       `json:"top_week_index"`
}

// NoDataResponse replaces either analytics payload when the user has no
// transaction history.
type NoDataResponse struct {
	Message string `json:"message"`
}

// FormatForecast maps a Forecast onto its wire shape. Pure structural
// mapping; rounding already happened in the forecaster.
func FormatForecast(f Forecast) ForecastResponse {
	return ForecastResponse{
		DaysLeft:    f.DaysLeft,
		Simulations: f.Simulations,
		Percentiles: Percentiles{P5: f.P5, P50: f.P50, P95: f.P95},
	}
}

// FormatWeeklyPattern maps a WeeklyPattern onto its wire shape.
func FormatWeeklyPattern(p WeeklyPattern) WeeklyPatternResponse {
	return WeeklyPatternResponse{
		WeeklyTotals: p.WeeklyTotals,
		WeekdayMeans: p.WeekdayMeans,
		WeekdayStds:  p.WeekdayStds,
		TopWeekIndex: p.TopWeekIndex,
	}
}

// NoData returns the shared "no history" payload.
func NoData() NoDataResponse {
	return NoDataResponse{Message: NoDataMessage}
}
