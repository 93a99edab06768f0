// Package contract defines haul contracts settled idempotently through a
// running completion counter.
package contract

import (
	"time"

	"github.com/google/uuid"
)

// HaulContract tracks a signed haul contract. ContractKey is the external
// idempotency identifier; Delivered flips false→true exactly once, on the
// update where FinishedAmount first reaches Amount, and payment is credited
// only on that transition.
type HaulContract struct {
	ID             uuid.UUID `json:"id"`
	ContractKey    string    `json:"contract_key"`
	ActorID        uuid.UUID `json:"actor_id"`
	Amount         int64     `json:"amount"` // units contracted
	FinishedAmount int64     `json:"finished_amount"`
	Payment        int64     `json:"payment"` // minor units, paid on completion
	Delivered      bool      `json:"delivered"`
	SignedAt       time.Time `json:"signed_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
