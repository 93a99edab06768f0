// Package subsidy defines the prioritized subsidy rule set and the registered
// zones its geographic restrictions refer to.
package subsidy

import (
	"time"

	"github.com/google/uuid"
)

// RewardKind selects how a rule computes its payout.
type RewardKind string

const (
	RewardPercentage RewardKind = "percentage"
	RewardFlat       RewardKind = "flat"
)

// Rule is one prioritized subsidy rule. A nil restriction matches anything.
type Rule struct {
	ID                uuid.UUID  `json:"id"`
	Priority          int        `json:"priority"`
	Active            bool       `json:"active"`
	Kind              RewardKind `json:"kind"`
	Rate              float64    `json:"rate"`        // percentage kind: multiplier on payment
	FlatAmount        int64      `json:"flat_amount"` // flat kind: minor units
	Cargo             *string    `json:"cargo,omitempty"`
	SourceZoneID      *uuid.UUID `json:"source_zone_id,omitempty"`
	DestinationZoneID *uuid.UUID `json:"destination_zone_id,omitempty"`
	RequiresOnTime    bool       `json:"requires_on_time"`
	ScalesWithDamage  bool       `json:"scales_with_damage"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ZoneKind separates polygonal areas from single registered points.
type ZoneKind string

const (
	ZoneArea  ZoneKind = "area"
	ZonePoint ZoneKind = "point"
)

// Coordinate is a world-space position.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zone is a registered map area or point that rules and jobs restrict on.
// Area zones carry a polygon; point zones carry a single coordinate matched
// within the configured tolerance radius.
type Zone struct {
	ID      uuid.UUID    `json:"id"`
	Name    string       `json:"name"`
	Kind    ZoneKind     `json:"kind"`
	Polygon []Coordinate `json:"polygon,omitempty"`
	Point   *Coordinate  `json:"point,omitempty"`
}
