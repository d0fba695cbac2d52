package pricing

import (
	"fmt"
	"math"

	"github.com/gringo-delivery/backend/internal/apperrors"
)

const earthRadiusKm = 6371.0

// Config holds the pricing knobs applied to every preview
type Config struct {
	BaseCost             float64 // covers the first IncludedKm of the outbound route
	IncludedKm           float64
	CostPerExtraKm       float64
	CostPerExtraStop     float64 // surcharge per customer beyond the first
	RainMultiplier       float64
	HighDemandMultiplier float64
}

// DefaultConfig returns the pricing table used when no overrides are set
func DefaultConfig() Config {
	return Config{
		BaseCost:             8.0,
		IncludedKm:           3.0,
		CostPerExtraKm:       1.5,
		CostPerExtraStop:     3.0,
		RainMultiplier:       1.2,
		HighDemandMultiplier: 1.3,
	}
}

// Conditions are the ambient flags that scale the total cost
type Conditions struct {
	IsRain       bool `json:"isRain"`
	IsHighDemand bool `json:"isHighDemand"`
}

// Breakdown itemizes the preview cost
type Breakdown struct {
	BaseCost              float64 `json:"baseCost"`
	ExtraDistanceCost     float64 `json:"extraDistanceCost"`
	MultipleCustomersCost float64 `json:"multipleCustomersCost"`
	DriveBackCost         float64 `json:"driveBackCost"`
}

// Preview is the route/cost estimate for one prospective order
type Preview struct {
	TotalCost         float64    `json:"totalCost"`
	TotalDistance     float64    `json:"totalDistance"`
	NumberOfCustomers int        `json:"numberOfCustomers"`
	Breakdown         Breakdown  `json:"breakdown"`
	PriceList         Conditions `json:"priceList"`
	LegDistances      []float64  `json:"legDistances"`
}

// Engine computes route/cost previews. It is a pure function of its inputs
// and the pricing config: no side effects, safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine over the given pricing config
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Preview estimates distance and cost for the route
// store -> customers[0] -> ... -> customers[n-1] (-> store when driveBack).
// Coordinates are [longitude, latitude] pairs.
func (e *Engine) Preview(store []float64, customers [][]float64, driveBack bool, cond Conditions) (*Preview, error) {
	if err := validateCoordinate(store); err != nil {
		return nil, fmt.Errorf("store coordinate: %w", err)
	}
	if len(customers) == 0 {
		return nil, fmt.Errorf("%w: at least one customer coordinate is required", apperrors.ErrValidation)
	}
	for i, c := range customers {
		if err := validateCoordinate(c); err != nil {
			return nil, fmt.Errorf("customer coordinate %d: %w", i, err)
		}
	}

	legs := make([]float64, 0, len(customers)+1)
	prev := store
	outbound := 0.0
	for _, c := range customers {
		leg := haversineKm(prev, c)
		legs = append(legs, leg)
		outbound += leg
		prev = c
	}

	returnLeg := 0.0
	if driveBack {
		returnLeg = haversineKm(prev, store)
		legs = append(legs, returnLeg)
	}
	totalDistance := outbound + returnLeg

	breakdown := Breakdown{
		BaseCost:              e.cfg.BaseCost,
		ExtraDistanceCost:     math.Max(0, outbound-e.cfg.IncludedKm) * e.cfg.CostPerExtraKm,
		MultipleCustomersCost: float64(len(customers)-1) * e.cfg.CostPerExtraStop,
		DriveBackCost:         returnLeg * e.cfg.CostPerExtraKm,
	}

	multiplier := 1.0
	if cond.IsRain {
		multiplier *= e.cfg.RainMultiplier
	}
	if cond.IsHighDemand {
		multiplier *= e.cfg.HighDemandMultiplier
	}

	total := (breakdown.BaseCost + breakdown.ExtraDistanceCost +
		breakdown.MultipleCustomersCost + breakdown.DriveBackCost) * multiplier

	return &Preview{
		TotalCost:         round2(total),
		TotalDistance:     round2(totalDistance),
		NumberOfCustomers: len(customers),
		Breakdown: Breakdown{
			BaseCost:              round2(breakdown.BaseCost),
			ExtraDistanceCost:     round2(breakdown.ExtraDistanceCost),
			MultipleCustomersCost: round2(breakdown.MultipleCustomersCost),
			DriveBackCost:         round2(breakdown.DriveBackCost),
		},
		PriceList:    cond,
		LegDistances: legs,
	}, nil
}

func validateCoordinate(coord []float64) error {
	if len(coord) != 2 {
		return fmt.Errorf("%w: coordinate must be a [longitude, latitude] pair", apperrors.ErrValidation)
	}
	lng, lat := coord[0], coord[1]
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", apperrors.ErrValidation, lng)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", apperrors.ErrValidation, lat)
	}
	return nil
}

// haversineKm returns the great-circle distance between two
// [longitude, latitude] pairs in kilometers.
func haversineKm(a, b []float64) float64 {
	lng1, lat1 := a[0]*math.Pi/180, a[1]*math.Pi/180
	lng2, lat2 := b[0]*math.Pi/180, b[1]*math.Pi/180

	dLat := lat2 - lat1
	dLng := lng2 - lng1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
