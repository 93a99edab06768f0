package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(hook string, data string) Envelope {
	return Envelope{
		Hook:      hook,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Data:      json.RawMessage(data),
	}
}

func TestDecode_CargoArrived(t *testing.T) {
	ev, err := Decode(envelope(HookCargoArrived, `{
		"character_id": "steam:1100001",
		"player_id": 42,
		"items": [
			{"cargo":"Coal","payment":5000,"damage":0.1,"late":true,"source":{"x":10,"y":20}},
			{"cargo":"Coal","payment":3000}
		]
	}`))
	require.NoError(t, err)

	arrived, ok := ev.(*CargoArrived)
	require.True(t, ok)
	assert.Equal(t, ActorKey{CharacterID: "steam:1100001", PlayerID: 42}, arrived.Actor())
	require.Len(t, arrived.Items, 2)
	assert.Equal(t, int64(5000), arrived.Items[0].Payment)
	assert.True(t, arrived.Items[0].Late)
	require.NotNil(t, arrived.Items[0].Source)
	assert.Equal(t, 10.0, arrived.Items[0].Source.X)
	assert.Nil(t, arrived.Items[1].Source)
}

func TestDecode_KeepsFieldLevelProblemsForSettlement(t *testing.T) {
	// Missing items or contract keys are settlement's problem; decoding them
	// anyway preserves the actor key, so the failure aborts only that actor.
	ev, err := Decode(envelope(HookCargoArrived, `{"character_id":"steam:1"}`))
	require.NoError(t, err)
	arrived := ev.(*CargoArrived)
	assert.Empty(t, arrived.Items)
	assert.Equal(t, "steam:1", arrived.Actor().CharacterID)

	ev, err = Decode(envelope(HookContractSigned, `{"character_id":"steam:1","amount":100}`))
	require.NoError(t, err)
	assert.Empty(t, ev.(*ContractSigned).ContractKey)
	assert.Equal(t, "steam:1", ev.Actor().CharacterID)
}

func TestDecode_ContractSigned(t *testing.T) {
	ev, err := Decode(envelope(HookContractSigned, `{"character_id":"steam:1","contract_key":"C-1","amount":100,"payment":40000}`))
	require.NoError(t, err)
	signed := ev.(*ContractSigned)
	assert.Equal(t, "C-1", signed.ContractKey)
	assert.Equal(t, int64(40000), signed.Payment)
}

func TestDecode_UnparseablePayloadIsMalformed(t *testing.T) {
	_, err := Decode(envelope(HookContractSigned, `{"amount":"not a number"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecode_UnknownHook(t *testing.T) {
	_, err := Decode(envelope("weather.changed", `{}`))
	assert.ErrorIs(t, err, ErrUnknownHook)
}

func TestDecode_EveryKnownHook(t *testing.T) {
	tests := []struct {
		hook string
		data string
	}{
		{HookCargoArrived, `{"items":[{"cargo":"Coal","payment":1}]}`},
		{HookCargoDumped, `{"cargo":"Coal","weight":2.5}`},
		{HookContractSigned, `{"contract_key":"C-1","amount":10}`},
		{HookContractCargo, `{"contract_key":"C-1","finished_amount":5}`},
		{HookPassengerArrived, `{"passenger_type":"tourist","distance":12.5,"payment":800}`},
		{HookTowRequest, `{"heavy":true,"payment":600}`},
		{HookVehicleReset, `{"player_id":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.hook, func(t *testing.T) {
			ev, err := Decode(envelope(tt.hook, tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.hook, ev.Hook())
			assert.False(t, ev.OccurredAt().IsZero())
		})
	}
}

func TestDecodeBatch_RejectsOnlyUndecodableEnvelopes(t *testing.T) {
	raw := []byte(`{"events":[
		{"hook":"vehicle.reset","timestamp":"2026-08-01T12:00:00Z","data":{"player_id":7}},
		{"hook":"weather.changed","timestamp":"2026-08-01T12:00:00Z","data":{}},
		{"hook":"contract.signed","timestamp":"2026-08-01T12:00:00Z","data":{"amount":"not a number"}}
	]}`)

	events, rejected, err := DecodeBatch(raw)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	require.Len(t, rejected, 2)
	assert.Equal(t, "weather.changed", rejected[0].Envelope.Hook)
	assert.ErrorIs(t, rejected[0].Err, ErrUnknownHook)
	assert.ErrorIs(t, rejected[1].Err, ErrMalformedEvent)
}

func TestDecodeBatch_BadEventKeepsOtherActorsEvents(t *testing.T) {
	// A key-less contract signing decodes with its actor key intact; its
	// rejection happens during that actor's settlement, and the other actor's
	// cargo event stays in the batch.
	raw := []byte(`{"events":[
		{"hook":"contract.signed","timestamp":"2026-08-01T12:00:00Z","data":{"character_id":"steam:1","amount":100}},
		{"hook":"cargo.arrived","timestamp":"2026-08-01T12:00:00Z","data":{"character_id":"steam:2","items":[{"cargo":"Coal","payment":500}]}}
	]}`)

	events, rejected, err := DecodeBatch(raw)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, events, 2)
	assert.Equal(t, "steam:1", events[0].Actor().CharacterID)
	assert.Equal(t, "steam:2", events[1].Actor().CharacterID)
}

func TestDecodeBatch_UnparseableMessageFails(t *testing.T) {
	_, _, err := DecodeBatch([]byte("{not json"))
	assert.Error(t, err)
}

func TestActorKey_Empty(t *testing.T) {
	assert.True(t, ActorKey{}.Empty())
	assert.False(t, ActorKey{CharacterID: "steam:1"}.Empty())
	assert.False(t, ActorKey{PlayerID: 7}.Empty())
}
