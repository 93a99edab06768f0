package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the raw feed framing: one webhook event before decoding.
type Envelope struct {
	Hook      string          `json:"hook"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Batch is the raw feed message: a heterogeneous batch of envelopes.
type Batch struct {
	Events []Envelope `json:"events"`
}

type actorFields struct {
	CharacterID string `json:"character_id"`
	PlayerID    int64  `json:"player_id"`
}

func (f actorFields) key() ActorKey {
	return ActorKey{CharacterID: f.CharacterID, PlayerID: f.PlayerID}
}

// Decode turns one envelope into its typed event. Unknown hooks return
// ErrUnknownHook; payloads that do not unmarshal return ErrMalformedEvent
// wrapped with detail. Field-level validation is deferred to settlement so a
// bad event aborts only its own actor, with the actor key preserved for the
// failure notification.
func Decode(env Envelope) (Event, error) {
	switch env.Hook {
	case HookCargoArrived:
		var payload struct {
			actorFields
			Items []CargoItem `json:"items"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Hook, err)
		}
		return &CargoArrived{Key: payload.key(), Timestamp: env.Timestamp, Items: payload.Items}, nil

	case HookCargoDumped:
		var payload struct {
			actorFields
			Cargo  string  `json:"cargo"`
			Weight float64 `json:"weight"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Hook, err)
		}
		return &CargoDumped{Key: payload.key(), Timestamp: env.Timestamp, Cargo: payload.Cargo, Weight: payload.Weight}, nil

	case HookContractSigned:
		var payload struct {
			actorFields
			ContractKey string `json:"contract_key"`
			Amount      int64  `json:"amount"`
			Payment     int64  `json:"payment"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Hook, err)
		}
		return &ContractSigned{Key: payload.key(), Timestamp: env.Timestamp, ContractKey: payload.ContractKey, Amount: payload.Amount, Payment: payload.Payment}, nil

	case HookContractCargo:
		var payload struct {
			actorFields
			ContractKey    string `json:"contract_key"`
			FinishedAmount int64  `json:"finished_amount"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Hook, err)
		}
		return &ContractCargoDelivered{Key: payload.key(), Timestamp: env.Timestamp, ContractKey: payload.ContractKey, FinishedAmount: payload.FinishedAmount}, nil

	case HookPassengerArrived:
		var payload struct {
			actorFields
			PassengerType string  `json:"passenger_type"`
			Distance      float64 `json:"distance"`
			Payment       int64   `json:"payment"`
			Comfort       bool    `json:"comfort"`
			Urgent        bool    `json:"urgent"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Hook, err)
		}
		return &PassengerArrived{Key: payload.key(), Timestamp: env.Timestamp, PassengerType: payload.PassengerType, Distance: payload.Distance, Payment: payload.Payment, Comfort: payload.Comfort, Urgent: payload.Urgent}, nil

	case HookTowRequest:
		var payload struct {
			actorFields
			Heavy   bool  `json:"heavy"`
			Offroad bool  `json:"offroad"`
			Payment int64 `json:"payment"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Hook, err)
		}
		return &TowRequestArrived{Key: payload.key(), Timestamp: env.Timestamp, Heavy: payload.Heavy, Offroad: payload.Offroad, Payment: payload.Payment}, nil

	case HookVehicleReset:
		var payload actorFields
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Hook, err)
		}
		return &VehicleReset{Key: payload.key(), Timestamp: env.Timestamp}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHook, env.Hook)
	}
}

// Rejected is an envelope the decoder could not turn into a typed event,
// paired with the reason.
type Rejected struct {
	Envelope Envelope
	Err      error
}

// DecodeBatch decodes a raw feed message. Envelopes with unknown hooks or
// payloads that do not unmarshal are returned separately so the caller can
// log and skip them without losing the rest of the batch; only a message that
// does not parse as a batch at all fails the decode.
func DecodeBatch(raw []byte) ([]Event, []Rejected, error) {
	var batch Batch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal event batch: %w", err)
	}

	events := make([]Event, 0, len(batch.Events))
	var rejected []Rejected
	for _, env := range batch.Events {
		ev, err := Decode(env)
		if err != nil {
			rejected = append(rejected, Rejected{Envelope: env, Err: err})
			continue
		}
		events = append(events, ev)
	}
	return events, rejected, nil
}
