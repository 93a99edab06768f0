// Package event models the inbound webhook event stream as a tagged union
// keyed by hook name, with one variant per event kind. The aggregator handles
// the union with an exhaustive type switch.
package event

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrUnknownHook    = errors.New("unknown event hook")
	ErrMalformedEvent = errors.New("malformed event payload")
)

// Hook names as delivered by the game server feed.
const (
	HookCargoArrived    = "cargo.arrived"
	HookCargoDumped     = "cargo.dumped"
	HookContractSigned  = "contract.signed"
	HookContractCargo   = "contract.cargo_delivered"
	HookPassengerArrived = "passenger.arrived"
	HookTowRequest      = "tow.request_arrived"
	HookVehicleReset    = "vehicle.reset"
)

// ActorKey carries the raw identifiers an event names its actor by.
// Resolution prefers the in-game character id and falls back to the numeric
// player id.
type ActorKey struct {
	CharacterID string `json:"character_id,omitempty"`
	PlayerID    int64  `json:"player_id,omitempty"`
}

// Empty reports whether the event carries no usable actor identifier.
func (k ActorKey) Empty() bool {
	return k.CharacterID == "" && k.PlayerID == 0
}

// Event is one decoded webhook event.
type Event interface {
	Hook() string
	Actor() ActorKey
	OccurredAt() time.Time
}

// Coordinate is a raw world-space position from the feed.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CargoItem is one cargo unit inside a cargo-arrived event. A single physical
// drop-off may carry several items, delivered as one batch.
type CargoItem struct {
	Cargo       string      `json:"cargo"`
	Source      *Coordinate `json:"source,omitempty"`
	Destination *Coordinate `json:"destination,omitempty"`
	Payment     int64       `json:"payment"`
	Weight      float64     `json:"weight"`
	Damage      float64     `json:"damage"` // 0..1 fraction
	Late        bool        `json:"late"`
}

// CargoArrived is a batch of cargo items delivered in one physical action.
type CargoArrived struct {
	Key       ActorKey    `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Items     []CargoItem `json:"items"`
}

func (e *CargoArrived) Hook() string          { return HookCargoArrived }
func (e *CargoArrived) Actor() ActorKey       { return e.Key }
func (e *CargoArrived) OccurredAt() time.Time { return e.Timestamp }

// CargoDumped reports cargo discarded instead of delivered.
type CargoDumped struct {
	Key       ActorKey  `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Cargo     string    `json:"cargo"`
	Weight    float64   `json:"weight"`
}

func (e *CargoDumped) Hook() string          { return HookCargoDumped }
func (e *CargoDumped) Actor() ActorKey       { return e.Key }
func (e *CargoDumped) OccurredAt() time.Time { return e.Timestamp }

// ContractSigned announces a newly signed haul contract.
type ContractSigned struct {
	Key         ActorKey  `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	ContractKey string    `json:"contract_key"`
	Amount      int64     `json:"amount"`
	Payment     int64     `json:"payment"`
}

func (e *ContractSigned) Hook() string          { return HookContractSigned }
func (e *ContractSigned) Actor() ActorKey       { return e.Key }
func (e *ContractSigned) OccurredAt() time.Time { return e.Timestamp }

// ContractCargoDelivered reports contract progress via a running completion
// counter. The event is idempotent: replays carry the same counter value.
type ContractCargoDelivered struct {
	Key            ActorKey  `json:"actor"`
	Timestamp      time.Time `json:"timestamp"`
	ContractKey    string    `json:"contract_key"`
	FinishedAmount int64     `json:"finished_amount"`
}

func (e *ContractCargoDelivered) Hook() string          { return HookContractCargo }
func (e *ContractCargoDelivered) Actor() ActorKey       { return e.Key }
func (e *ContractCargoDelivered) OccurredAt() time.Time { return e.Timestamp }

// PassengerArrived reports a completed passenger transport.
type PassengerArrived struct {
	Key           ActorKey  `json:"actor"`
	Timestamp     time.Time `json:"timestamp"`
	PassengerType string    `json:"passenger_type"`
	Distance      float64   `json:"distance"`
	Payment       int64     `json:"payment"`
	Comfort       bool      `json:"comfort"`
	Urgent        bool      `json:"urgent"`
}

func (e *PassengerArrived) Hook() string          { return HookPassengerArrived }
func (e *PassengerArrived) Actor() ActorKey       { return e.Key }
func (e *PassengerArrived) OccurredAt() time.Time { return e.Timestamp }

// TowRequestArrived reports a completed vehicle tow.
type TowRequestArrived struct {
	Key       ActorKey  `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Heavy     bool      `json:"heavy"`
	Offroad   bool      `json:"offroad"`
	Payment   int64     `json:"payment"`
}

func (e *TowRequestArrived) Hook() string          { return HookTowRequest }
func (e *TowRequestArrived) Actor() ActorKey       { return e.Key }
func (e *TowRequestArrived) OccurredAt() time.Time { return e.Timestamp }

// VehicleReset is a penalty trigger fired when a player resets their vehicle.
type VehicleReset struct {
	Key       ActorKey  `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *VehicleReset) Hook() string          { return HookVehicleReset }
func (e *VehicleReset) Actor() ActorKey       { return e.Key }
func (e *VehicleReset) OccurredAt() time.Time { return e.Timestamp }
