// Package resolver matches delivery attributes against the prioritized
// subsidy rule set. Resolution is pure: the resolver is built from a snapshot
// of rules and zones and touches no storage.
package resolver

import (
	"math"

	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/domain/subsidy"
)

// Delivery carries the attributes of one settled delivery that rules
// restrict on. Nil coordinates mean the position could not be resolved; such
// deliveries only match rules without the corresponding zone restriction.
type Delivery struct {
	Cargo          string
	Source         *subsidy.Coordinate
	Destination    *subsidy.Coordinate
	OnTime         bool
	DamageFraction float64
	Payment        int64
}

// Resolution is the outcome of rule matching. A nil Rule means no rule
// matched and Amount is zero.
type Resolution struct {
	Amount int64
	Rate   float64
	Rule   *subsidy.Rule
}

// Resolver matches deliveries against a rule and zone snapshot.
type Resolver struct {
	rules             []subsidy.Rule
	zones             map[uuid.UUID]*subsidy.Zone
	referenceTreasury int64
	pointTolerance    float64
}

// New builds a resolver over a snapshot of active rules and zones. The rules
// slice must already be ordered by priority descending, id ascending; the
// first surviving rule after filtering wins, which makes equal-priority
// resolution deterministic.
func New(rules []subsidy.Rule, zones []subsidy.Zone, referenceTreasury int64, pointTolerance float64) *Resolver {
	zoneIndex := make(map[uuid.UUID]*subsidy.Zone, len(zones))
	for i := range zones {
		zoneIndex[zones[i].ID] = &zones[i]
	}
	return &Resolver{
		rules:             rules,
		zones:             zoneIndex,
		referenceTreasury: referenceTreasury,
		pointTolerance:    pointTolerance,
	}
}

// Resolve picks the best-matching rule for the delivery and computes the
// subsidy amount under the current treasury balance. No match yields a zero
// resolution with a nil rule.
func (r *Resolver) Resolve(d Delivery, treasuryBalance int64) Resolution {
	rule := r.match(d)
	if rule == nil {
		return Resolution{}
	}

	if rule.Kind == subsidy.RewardFlat {
		amount := rule.FlatAmount
		if amount > treasuryBalance {
			amount = treasuryBalance
		}
		if amount < 0 {
			amount = 0
		}
		return Resolution{Amount: amount, Rule: rule}
	}

	rate := rule.Rate
	if rule.ScalesWithDamage {
		rate *= 1 - d.DamageFraction
	}
	rate = r.throttle(rate, treasuryBalance)

	amount := int64(math.Floor(float64(d.Payment) * rate))
	if amount > treasuryBalance {
		amount = treasuryBalance
	}
	if amount < 0 {
		amount = 0
	}
	return Resolution{Amount: amount, Rate: rate, Rule: rule}
}

// ZonesContaining returns the ids of every registered zone containing the
// position. Used to match deliveries against zone-restricted jobs. A nil
// position matches no zone.
func (r *Resolver) ZonesContaining(pos *subsidy.Coordinate) []uuid.UUID {
	if pos == nil {
		return nil
	}
	var ids []uuid.UUID
	for id, zone := range r.zones {
		if zoneContains(zone, *pos, r.pointTolerance) {
			ids = append(ids, id)
		}
	}
	return ids
}

// match walks the pre-sorted rule set and returns the first rule surviving
// every restriction filter.
func (r *Resolver) match(d Delivery) *subsidy.Rule {
	for i := range r.rules {
		rule := &r.rules[i]
		if !rule.Active {
			continue
		}
		if rule.Cargo != nil && *rule.Cargo != d.Cargo {
			continue
		}
		if !r.zoneMatches(rule.SourceZoneID, d.Source) {
			continue
		}
		if !r.zoneMatches(rule.DestinationZoneID, d.Destination) {
			continue
		}
		if rule.RequiresOnTime && !d.OnTime {
			continue
		}
		return rule
	}
	return nil
}

// zoneMatches applies one geographic restriction. An unrestricted rule
// matches any position; a restricted rule needs a resolved position inside
// the registered zone.
func (r *Resolver) zoneMatches(zoneID *uuid.UUID, pos *subsidy.Coordinate) bool {
	if zoneID == nil {
		return true
	}
	if pos == nil {
		return false
	}
	zone, ok := r.zones[*zoneID]
	if !ok {
		return false
	}
	return zoneContains(zone, *pos, r.pointTolerance)
}

// throttle scales the rate down when the treasury sits below its reference
// level, reaching zero at an empty treasury.
func (r *Resolver) throttle(rate float64, treasuryBalance int64) float64 {
	if r.referenceTreasury <= 0 {
		return rate
	}
	if treasuryBalance < 0 {
		treasuryBalance = 0
	}
	health := float64(treasuryBalance) / float64(r.referenceTreasury)
	if health < 1 {
		return rate * health
	}
	return rate
}
