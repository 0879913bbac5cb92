package domain

import "time"

const (
	DefaultCurrency = "USD"

	FareTextError       = "Error"
	FareTextUnavailable = "Not available"
)

// FareEstimate is a price estimate normalized from a provider payload.
// A nil Amount means the provider had no estimate for the trip.
type FareEstimate struct {
	Provider string
	Amount   *float64
	Currency string
}

// FareResult is the outcome of one provider's lookup.
type FareResult struct {
	Provider string
	Estimate FareEstimate
	Err      error
}

// Display returns the text shown in the provider's fare field.
func (r FareResult) Display() string {
	if r.Err != nil {
		return FareTextError
	}
	if r.Estimate.Amount == nil {
		return FareTextUnavailable
	}

	currency := r.Estimate.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return formatNumber(*r.Estimate.Amount) + " " + currency
}

// Quote records one completed fare comparison.
type Quote struct {
	SessionID       string
	Origin          Coordinate
	Dropoff         Coordinate
	DistanceMeters  float64
	DurationSeconds float64
	Fares           []FareResult
	QuotedAt        time.Time
}
