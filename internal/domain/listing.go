package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RentalListing is the single source of truth for one asset's rental
// lifecycle. Exactly one listing exists per asset identifier; the asset ID
// is the listing's key. All amounts are in the smallest currency unit.
type RentalListing struct {
	AssetID         string    `json:"asset_id"`
	Owner           uuid.UUID `json:"owner"`
	DailyRent       uint64    `json:"daily_rent"`
	Collateral      uint64    `json:"collateral"`
	MinDurationDays uint32    `json:"min_duration_days"`
	MaxDurationDays uint32    `json:"max_duration_days"`
	IsActive        bool      `json:"is_active"`
	Occupancy       Occupancy `json:"occupancy"`
	CreatedAt       time.Time `json:"created_at"`
}

// Available reports whether the listing can accept a new rental.
func (l *RentalListing) Available() bool {
	return l.IsActive && !l.Occupancy.Rented()
}

// Status returns the listing's lifecycle state for API consumers.
func (l *RentalListing) Status() string {
	switch {
	case !l.IsActive:
		return "closed"
	case l.Occupancy.Rented():
		return "rented"
	default:
		return "available"
	}
}

// Occupancy is a listing's rental occupancy: vacant, or occupied by one
// renter until an absolute end time. Renter and end time live in one value
// so they are set together or cleared together; the pairing cannot drift.
type Occupancy struct {
	renter uuid.UUID
	end    time.Time
	rented bool
}

// Vacant returns the unoccupied state.
func Vacant() Occupancy {
	return Occupancy{}
}

// OccupiedBy returns the state of a rental held by renter until end.
func OccupiedBy(renter uuid.UUID, end time.Time) Occupancy {
	return Occupancy{renter: renter, end: end, rented: true}
}

// Rented reports whether the asset is out with a renter.
func (o Occupancy) Rented() bool {
	return o.rented
}

// Renter returns the current renter, if any.
func (o Occupancy) Renter() (uuid.UUID, bool) {
	return o.renter, o.rented
}

// EndTime returns the absolute expiry instant, if rented.
func (o Occupancy) EndTime() (time.Time, bool) {
	return o.end, o.rented
}

type occupancyJSON struct {
	CurrentRenter *uuid.UUID `json:"current_renter"`
	RentalEndTime *time.Time `json:"rental_end_time"`
}

func (o Occupancy) MarshalJSON() ([]byte, error) {
	var v occupancyJSON
	if o.rented {
		r, e := o.renter, o.end
		v.CurrentRenter = &r
		v.RentalEndTime = &e
	}
	return json.Marshal(v)
}

func (o *Occupancy) UnmarshalJSON(data []byte) error {
	var v occupancyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.CurrentRenter != nil && v.RentalEndTime != nil {
		*o = OccupiedBy(*v.CurrentRenter, *v.RentalEndTime)
	} else {
		*o = Vacant()
	}
	return nil
}
