// Package aggregator folds a heterogeneous batch of game events into
// per-actor profit settlements. It is the only component that decides how to
// react to failures: unresolvable actors are skipped, a failing event aborts
// that actor's remaining events, and other actors' settled work always
// stands.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/config"
	"github.com/convoy-settlement-engine/internal/domain/actor"
	"github.com/convoy-settlement-engine/internal/domain/contract"
	"github.com/convoy-settlement-engine/internal/domain/event"
	"github.com/convoy-settlement-engine/internal/domain/job"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/domain/subsidy"
	"github.com/convoy-settlement-engine/internal/settlement/coordinator"
	"github.com/convoy-settlement-engine/internal/settlement/notify"
	"github.com/convoy-settlement-engine/internal/settlement/pipeline"
	"github.com/convoy-settlement-engine/internal/settlement/resolver"
)

// JobApplier applies one delivery against the job system.
type JobApplier interface {
	ApplyDelivery(ctx context.Context, req coordinator.Request) (*coordinator.Application, error)
}

// Settler posts one actor's profit summary to the ledger.
type Settler interface {
	Settle(ctx context.Context, s pipeline.Summary) (*pipeline.Result, error)
}

// Pool fans actor groups out to workers. Satisfied by *ants.Pool.
type Pool interface {
	Submit(task func()) error
}

// ActorOutcome is the result of settling one actor's slice of a batch.
type ActorOutcome struct {
	ActorID uuid.UUID
	Summary pipeline.Summary
	Result  *pipeline.Result
	Err     error
}

// Aggregator groups, folds and settles event batches.
type Aggregator struct {
	actors      actor.Repository
	routes      actor.RouteMonitor
	subsidies   subsidy.Repository
	ledger      ledger.Repository
	contracts   contract.Repository
	coordinator JobApplier
	pipeline    Settler
	notifier    notify.Notifier
	pool        Pool
	economy     *config.EconomyConfig
	logger      *slog.Logger
}

// NewAggregator wires the settlement components behind the batch entry point.
func NewAggregator(
	logger *slog.Logger,
	actors actor.Repository,
	routes actor.RouteMonitor,
	subsidies subsidy.Repository,
	ledgerRepo ledger.Repository,
	contracts contract.Repository,
	jobCoordinator JobApplier,
	settler Settler,
	notifier notify.Notifier,
	pool Pool,
	economy *config.EconomyConfig,
) *Aggregator {
	return &Aggregator{
		actors:      actors,
		routes:      routes,
		subsidies:   subsidies,
		ledger:      ledgerRepo,
		contracts:   contracts,
		coordinator: jobCoordinator,
		pipeline:    settler,
		notifier:    notifier,
		pool:        pool,
		economy:     economy,
		logger:      logger,
	}
}

// actorGroup is one actor's slice of a batch, in arrival order.
type actorGroup struct {
	actor  *actor.Actor
	events []event.Event
}

// ProcessBatch settles a decoded event batch. Events of one actor fold
// strictly sequentially; different actors run concurrently on the worker
// pool. The returned outcomes carry per-actor results and failures; the
// error return is reserved for batch-level problems.
func (a *Aggregator) ProcessBatch(ctx context.Context, events []event.Event) ([]ActorOutcome, error) {
	if len(events) == 0 {
		return nil, nil
	}

	res, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	groups := a.groupByActor(ctx, events)
	if len(groups) == 0 {
		return nil, nil
	}

	outcomes := make([]ActorOutcome, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		i, g := i, g
		task := func() {
			defer wg.Done()
			outcomes[i] = a.settleActor(ctx, g, res)
		}
		if err := a.pool.Submit(task); err != nil {
			// Pool rejected the task (released or overloaded); fold inline.
			task()
		}
	}
	wg.Wait()

	return outcomes, nil
}

// snapshot loads the rule set and zone registry the whole batch resolves
// against.
func (a *Aggregator) snapshot(ctx context.Context) (*resolver.Resolver, error) {
	rules, err := a.subsidies.ActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load subsidy rules: %w", err)
	}
	zones, err := a.subsidies.Zones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}
	return resolver.New(rules, zones, a.economy.ReferenceTreasury, a.economy.PointToleranceRadius), nil
}

// groupByActor resolves each event's actor identifiers and buckets events per
// actor, preserving arrival order within each bucket. Events naming no
// resolvable actor are dropped with a log line.
func (a *Aggregator) groupByActor(ctx context.Context, events []event.Event) []actorGroup {
	index := make(map[uuid.UUID]int)
	var groups []actorGroup

	for _, ev := range events {
		resolved, err := a.resolveActor(ctx, ev.Actor())
		if err != nil {
			a.logger.Warn("Dropping event for unresolvable actor",
				"hook", ev.Hook(),
				"character_id", ev.Actor().CharacterID,
				"player_id", ev.Actor().PlayerID)
			continue
		}

		if i, ok := index[resolved.ID]; ok {
			groups[i].events = append(groups[i].events, ev)
		} else {
			index[resolved.ID] = len(groups)
			groups = append(groups, actorGroup{actor: resolved, events: []event.Event{ev}})
		}
	}
	return groups
}

// resolveActor prefers the in-game character id and falls back to the numeric
// player id.
func (a *Aggregator) resolveActor(ctx context.Context, key event.ActorKey) (*actor.Actor, error) {
	if key.CharacterID != "" {
		if resolved, err := a.actors.GetByCharacterID(ctx, key.CharacterID); err == nil {
			return resolved, nil
		}
	}
	if key.PlayerID != 0 {
		return a.actors.GetByPlayerID(ctx, key.PlayerID)
	}
	return nil, actor.ErrActorNotFound
}

// settleActor folds one actor's events in order and settles the accumulated
// summary through the pipeline. The first failing event notifies the actor
// and aborts their remaining events; already-posted side effects stand.
func (a *Aggregator) settleActor(ctx context.Context, g actorGroup, res *resolver.Resolver) ActorOutcome {
	outcome := ActorOutcome{ActorID: g.actor.ID}

	summary := pipeline.Summary{
		ActorID:         g.actor.ID,
		SavingsFraction: g.actor.SavingsFraction,
		At:              g.events[0].OccurredAt(),
	}

	for _, ev := range g.events {
		if err := a.applyEvent(ctx, g.actor, ev, res, &summary); err != nil {
			a.notifier.Notify(g.actor.ID, fmt.Sprintf("Settlement failed while processing a %s event; your remaining events in this batch were skipped.", ev.Hook()))
			a.logger.Error("Event settlement failed, aborting actor's remaining events",
				"actor_id", g.actor.ID.String(),
				"hook", ev.Hook(),
				"error", err)
			outcome.Err = err
			outcome.Summary = summary
			return outcome
		}
	}

	a.applyShortcutPenalty(ctx, g.actor, &summary)
	outcome.Summary = summary

	if summary.Subsidy == 0 && summary.FreightPayment == 0 && summary.TransportPayment == 0 {
		return outcome
	}

	result, err := a.pipeline.Settle(ctx, summary)
	outcome.Result = result
	outcome.Err = err
	return outcome
}

// applyShortcutPenalty zeroes the subsidy component when the actor recently
// used a restricted shortcut zone. Base payment is untouched.
func (a *Aggregator) applyShortcutPenalty(ctx context.Context, act *actor.Actor, summary *pipeline.Summary) {
	if summary.Subsidy == 0 {
		return
	}
	used, err := a.routes.UsedRestrictedShortcut(ctx, act.ID)
	if err != nil {
		a.logger.Warn("Shortcut check failed, leaving subsidy in place",
			"actor_id", act.ID.String(),
			"error", err)
		return
	}
	if used {
		a.logger.Info("Zeroing subsidy for restricted shortcut use",
			"actor_id", act.ID.String(),
			"forfeited", summary.Subsidy)
		a.notifier.Notify(act.ID, "Your subsidy was withheld: restricted shortcut use detected on a recent route.")
		summary.Subsidy = 0
	}
}

// applyEvent dispatches one event through the tagged-union switch.
func (a *Aggregator) applyEvent(ctx context.Context, act *actor.Actor, ev event.Event, res *resolver.Resolver, summary *pipeline.Summary) error {
	switch e := ev.(type) {
	case *event.CargoArrived:
		return a.applyCargoArrived(ctx, act, e, res, summary)
	case *event.CargoDumped:
		return a.postPenalty(ctx, act.ID, e.Timestamp, a.economy.CargoDumpPenalty, fmt.Sprintf("penalty: dumped %s", e.Cargo))
	case *event.ContractSigned:
		return a.applyContractSigned(ctx, act, e)
	case *event.ContractCargoDelivered:
		return a.applyContractProgress(ctx, act, e, summary)
	case *event.PassengerArrived:
		summary.TransportPayment += adjust(e.Payment, rateIf(e.Comfort, a.economy.ComfortBonusRate)+rateIf(e.Urgent, a.economy.UrgencyBonusRate))
		return nil
	case *event.TowRequestArrived:
		summary.TransportPayment += adjust(e.Payment, rateIf(e.Heavy, a.economy.TowHeavyRate)+rateIf(e.Offroad, a.economy.TowOffroadRate))
		return nil
	case *event.VehicleReset:
		return a.postPenalty(ctx, act.ID, e.Timestamp, a.economy.VehicleResetPenalty, "penalty: vehicle reset")
	default:
		return fmt.Errorf("%w: %s", event.ErrUnknownHook, ev.Hook())
	}
}

// applyCargoArrived settles one physical drop-off: items are merged per cargo
// kind, each merged group gets a subsidy resolution and a job application,
// and the base payments accumulate on the summary.
func (a *Aggregator) applyCargoArrived(ctx context.Context, act *actor.Actor, e *event.CargoArrived, res *resolver.Resolver, summary *pipeline.Summary) error {
	if len(e.Items) == 0 {
		return fmt.Errorf("%w: cargo-arrived event with no items", event.ErrMalformedEvent)
	}

	treasury, err := a.ledger.TreasuryBalance(ctx)
	if err != nil {
		return fmt.Errorf("failed to read treasury balance: %w", err)
	}

	for _, group := range mergeItems(e.Items) {
		source := toSubsidyCoord(group.Source)
		destination := toSubsidyCoord(group.Destination)

		resolution := res.Resolve(resolver.Delivery{
			Cargo:          group.Cargo,
			Source:         source,
			Destination:    destination,
			OnTime:         !group.Late,
			DamageFraction: group.Damage,
			Payment:        group.Payment,
		}, treasury)

		unitPayment := group.Payment
		if group.Quantity > 0 {
			unitPayment = group.Payment / group.Quantity
		}

		app, err := a.coordinator.ApplyDelivery(ctx, coordinator.Request{
			ActorID:      act.ID,
			RoleplayMode: act.RoleplayMode,
			Match:        coordinatorMatch(group.Cargo, res, source, destination, act.RoleplayMode, e.Timestamp),
			Quantity:     group.Quantity,
			UnitPayment:  unitPayment,
			Subsidy:      resolution.Amount,
			At:           e.Timestamp,
		})
		if err != nil {
			return fmt.Errorf("job application failed: %w", err)
		}

		summary.Subsidy += app.Reward
		summary.FreightPayment += group.Payment
		treasury -= app.Reward
		if treasury < 0 {
			treasury = 0
		}
	}
	return nil
}

func (a *Aggregator) applyContractSigned(ctx context.Context, act *actor.Actor, e *event.ContractSigned) error {
	if e.ContractKey == "" || e.Amount <= 0 {
		return fmt.Errorf("%w: contract-signed event missing key or amount", event.ErrMalformedEvent)
	}
	return a.contracts.Upsert(ctx, &contract.HaulContract{
		ID:          uuid.New(),
		ContractKey: e.ContractKey,
		ActorID:     act.ID,
		Amount:      e.Amount,
		Payment:     e.Payment,
		SignedAt:    e.Timestamp,
	})
}

// applyContractProgress records the running completion counter. The payment
// credits exactly once, on the call that flips the delivered flag.
func (a *Aggregator) applyContractProgress(ctx context.Context, act *actor.Actor, e *event.ContractCargoDelivered, summary *pipeline.Summary) error {
	if e.ContractKey == "" {
		return fmt.Errorf("%w: contract progress event missing key", event.ErrMalformedEvent)
	}

	completed, c, err := a.contracts.RecordProgress(ctx, e.ContractKey, e.FinishedAmount)
	if err != nil {
		return fmt.Errorf("failed to record contract progress: %w", err)
	}
	if completed {
		summary.FreightPayment += c.Payment
		a.notifier.Notify(act.ID, fmt.Sprintf("Haul contract %s fulfilled! %d credited with this settlement.", c.ContractKey, c.Payment))
	}
	return nil
}

func (a *Aggregator) postPenalty(ctx context.Context, actorID uuid.UUID, at time.Time, amount int64, description string) error {
	if amount <= 0 {
		return nil
	}
	if _, err := a.ledger.Post(ctx, ledger.Penalty(at, description, actorID, amount)); err != nil {
		return fmt.Errorf("failed to post penalty: %w", err)
	}
	a.notifier.Notify(actorID, fmt.Sprintf("A %d penalty was charged: %s.", amount, description))
	return nil
}

// mergedItem is one cargo kind's share of a physical drop-off.
type mergedItem struct {
	Cargo       string
	Source      *event.Coordinate
	Destination *event.Coordinate
	Payment     int64
	Quantity    int64
	Damage      float64
	Late        bool
}

// mergeItems folds a multi-item drop-off into one entry per cargo kind:
// payments sum, damage averages, a single late item marks the group late.
func mergeItems(items []event.CargoItem) []mergedItem {
	index := make(map[string]int)
	var merged []mergedItem

	for _, item := range items {
		i, ok := index[item.Cargo]
		if !ok {
			i = len(merged)
			index[item.Cargo] = i
			merged = append(merged, mergedItem{
				Cargo:       item.Cargo,
				Source:      item.Source,
				Destination: item.Destination,
			})
		}
		merged[i].Payment += item.Payment
		merged[i].Damage += item.Damage
		merged[i].Quantity++
		merged[i].Late = merged[i].Late || item.Late
		if merged[i].Source == nil {
			merged[i].Source = item.Source
		}
		if merged[i].Destination == nil {
			merged[i].Destination = item.Destination
		}
	}

	for i := range merged {
		merged[i].Damage /= float64(merged[i].Quantity)
	}
	return merged
}

func coordinatorMatch(cargo string, res *resolver.Resolver, source, destination *subsidy.Coordinate, roleplay bool, at time.Time) job.Match {
	return job.Match{
		Cargo:              cargo,
		SourceZoneIDs:      res.ZonesContaining(source),
		DestinationZoneIDs: res.ZonesContaining(destination),
		RoleplayMode:       roleplay,
		At:                 at,
	}
}

func toSubsidyCoord(c *event.Coordinate) *subsidy.Coordinate {
	if c == nil {
		return nil
	}
	return &subsidy.Coordinate{X: c.X, Y: c.Y}
}

func adjust(payment int64, rate float64) int64 {
	return int64(math.Floor(float64(payment) * (1 + rate)))
}

func rateIf(flag bool, rate float64) float64 {
	if flag {
		return rate
	}
	return 0
}
