// Package job defines standing delivery-job demand and the immutable delivery
// history contributed against it.
package job

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryJob is a standing demand for N cargo units. QuantityFulfilled is
// monotonic and never exceeds QuantityRequested; CompletedAt is the completion
// marker guaranteeing that completion side effects fire exactly once.
type DeliveryJob struct {
	ID                uuid.UUID  `json:"id"`
	Cargo             *string    `json:"cargo,omitempty"`            // nil = any cargo
	SourceZoneID      *uuid.UUID `json:"source_zone_id,omitempty"`   // nil = any source
	DestinationZoneID *uuid.UUID `json:"destination_zone_id,omitempty"` // nil = any destination
	QuantityRequested int64      `json:"quantity_requested"`
	QuantityFulfilled int64      `json:"quantity_fulfilled"`
	CompletionBonus   int64      `json:"completion_bonus"`
	BonusMultiplier   float64    `json:"bonus_multiplier"`
	RoleplayOnly      bool       `json:"roleplay_only"`
	ExpiresAt         time.Time  `json:"expires_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Remaining returns the quantity still wanted by the job.
func (j *DeliveryJob) Remaining() int64 {
	return j.QuantityRequested - j.QuantityFulfilled
}

// Open reports whether the job still accepts deliveries at time now.
func (j *DeliveryJob) Open(now time.Time) bool {
	return j.CompletedAt == nil && j.Remaining() > 0 && now.Before(j.ExpiresAt)
}

// Delivery is the immutable record of one actor's accepted contribution to a
// job. It exists for audit and completion-reward computation only.
type Delivery struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	ActorID     uuid.UUID `json:"actor_id"`
	Quantity    int64     `json:"quantity"`
	DeliveredAt time.Time `json:"delivered_at"`
}
