package service

import (
	"math"
	"time"

	"farebroker/internal/domain"
)

// TrafficCondition adjusts the assumed average speed used to derive trip
// duration from distance.
type TrafficCondition string

const (
	TrafficLight    TrafficCondition = "LIGHT"
	TrafficModerate TrafficCondition = "MODERATE"
	TrafficHeavy    TrafficCondition = "HEAVY"
)

// assumed average speed in km/h per traffic condition
var trafficSpeeds = map[TrafficCondition]float64{
	TrafficLight:    40,
	TrafficModerate: 30,
	TrafficHeavy:    18,
}

// DemandContext is the external demand signal for a pickup area.
type DemandContext struct {
	AvailableDrivers int
	PendingRequests  int
}

// PricingContext carries the demand/time inputs for a fare estimate.
type PricingContext struct {
	RequestedAt time.Time
	Traffic     TrafficCondition // defaults to moderate
	Demand      *DemandContext   // nil means no signal, surge 1.0
}

// VehicleRates is the rate card for one vehicle class.
type VehicleRates struct {
	BaseFare      float64
	PerKmRate     float64
	PerMinuteRate float64
	MinimumFare   float64
}

// DefaultRates returns the built-in rate card.
func DefaultRates() map[domain.VehicleClass]VehicleRates {
	return map[domain.VehicleClass]VehicleRates{
		domain.VehicleClassStandard: {BaseFare: 20, PerKmRate: 10, PerMinuteRate: 1.7, MinimumFare: 35},
		domain.VehicleClassPremium:  {BaseFare: 35, PerKmRate: 15, PerMinuteRate: 2.5, MinimumFare: 60},
		domain.VehicleClassLuxury:   {BaseFare: 50, PerKmRate: 22, PerMinuteRate: 3.5, MinimumFare: 90},
	}
}

// MaxSurgeMultiplier bounds demand-based fare scaling to protect riders from
// unbounded spikes.
const MaxSurgeMultiplier = 3.0

// Time multiplier values. Short trips are exempt so a two-block ride never
// carries a schedule premium.
const (
	shortTripKm       = 2.0
	peakMultiplier    = 1.25
	nightMultiplier   = 1.3
	offPeakMultiplier = 1.0
)

// PricingEngine computes fare breakdowns. It is pure: all inputs arrive as
// arguments and no I/O happens here.
type PricingEngine struct {
	rates    map[domain.VehicleClass]VehicleRates
	currency string
}

// NewPricingEngine creates a PricingEngine. A nil rates map selects the
// built-in rate card.
func NewPricingEngine(rates map[domain.VehicleClass]VehicleRates, currency string) *PricingEngine {
	if rates == nil {
		rates = DefaultRates()
	}
	if currency == "" {
		currency = "USD"
	}
	return &PricingEngine{rates: rates, currency: currency}
}

// Estimate produces the fare breakdown for a prospective ride.
func (e *PricingEngine) Estimate(pickup, destination domain.Location, class domain.VehicleClass, pctx PricingContext) (domain.FareBreakdown, error) {
	distanceKm := round2(HaversineKm(pickup.Lat, pickup.Lng, destination.Lat, destination.Lng))

	speed, ok := trafficSpeeds[pctx.Traffic]
	if !ok {
		speed = trafficSpeeds[TrafficModerate]
	}
	durationMin := round2(distanceKm / speed * 60)

	surge := SurgeFromDemand(pctx.Demand)
	timeMult := TimeMultiplier(pctx.RequestedAt, distanceKm)

	return e.quote(class, distanceKm, durationMin, surge, timeMult)
}

// RecomputeActual re-applies the fare formula with measured distance and
// duration. The surge and time multipliers captured at request time are reused
// deliberately: the fare must not spike because the trip ran long through no
// fault of the pricing context.
func (e *PricingEngine) RecomputeActual(estimate domain.FareBreakdown, actualKm, actualMin float64) (domain.FareBreakdown, error) {
	return e.quote(estimate.VehicleClass, round2(actualKm), round2(actualMin), estimate.SurgeMultiplier, estimate.TimeMultiplier)
}

func (e *PricingEngine) quote(class domain.VehicleClass, distanceKm, durationMin, surge, timeMult float64) (domain.FareBreakdown, error) {
	rates, ok := e.rates[class]
	if !ok {
		return domain.FareBreakdown{}, ErrInvalidVehicleClass
	}

	distanceFare := round2(distanceKm * rates.PerKmRate)
	timeFare := round2(durationMin * rates.PerMinuteRate)

	total := round2((rates.BaseFare + distanceFare + timeFare) * surge * timeMult)
	if total < rates.MinimumFare {
		total = rates.MinimumFare
	}

	return domain.FareBreakdown{
		VehicleClass:    class,
		DistanceKm:      distanceKm,
		DurationMin:     durationMin,
		BaseFare:        rates.BaseFare,
		DistanceFare:    distanceFare,
		TimeFare:        timeFare,
		SurgeMultiplier: surge,
		TimeMultiplier:  timeMult,
		TotalFare:       total,
		Currency:        e.currency,
	}, nil
}

// SurgeFromDemand derives the surge multiplier from the available-drivers vs
// pending-requests signal. No signal means no surge.
func SurgeFromDemand(d *DemandContext) float64 {
	if d == nil {
		return 1.0
	}

	if d.AvailableDrivers <= 0 {
		if d.PendingRequests > 0 {
			return MaxSurgeMultiplier
		}
		return 1.0
	}

	ratio := float64(d.PendingRequests) / float64(d.AvailableDrivers)
	switch {
	case ratio >= 3.0:
		return MaxSurgeMultiplier
	case ratio >= 2.0:
		return 2.0
	case ratio >= 1.5:
		return 1.5
	case ratio >= 1.2:
		return 1.25
	default:
		return 1.0
	}
}

// TimeMultiplier returns the schedule-based fare scaling factor. Trips under
// 2 km are always 1.0. Night windows take precedence over weekday peaks.
func TimeMultiplier(at time.Time, distanceKm float64) float64 {
	if distanceKm < shortTripKm || at.IsZero() {
		return offPeakMultiplier
	}

	hour := at.Hour()
	day := at.Weekday()

	// Late night (22:00-05:00 any day) and weekend nights.
	night := hour >= 22 || hour < 5
	weekendNight := (day == time.Friday || day == time.Saturday) && hour >= 22
	if night || weekendNight {
		return nightMultiplier
	}

	weekday := day >= time.Monday && day <= time.Friday
	morningPeak := hour >= 7 && hour < 9
	eveningPeak := hour >= 16 && hour < 19
	if weekday && (morningPeak || eveningPeak) {
		return peakMultiplier
	}

	return offPeakMultiplier
}

// HaversineKm is the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// round2 rounds to the currency's minor-unit granularity.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
