package ai

import (
	"math/rand"

	"github.com/achgulp/axon-bbs-sub000/pkg/game"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
)

// Agent plays one seat. It only decides; the caller posts the payloads it
// returns under whatever identity owns the seat.
type Agent struct {
	tuning  *tuning.Tuning
	actions *game.Actions
	rng     *rand.Rand
	ownerID int
	logger  *log.Logger
}

type NewAgentOptions struct {
	Tuning *tuning.Tuning
	// Actions defaults to game actions sharing Rand
	Actions *game.Actions
	// Rand drives the build choice, defaults to a time-seeded source
	Rand    *rand.Rand
	OwnerID int
}

func NewAgent(opts NewAgentOptions) *Agent {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	actions := opts.Actions
	if actions == nil {
		actions = game.NewActions(game.NewActionsOptions{Tuning: opts.Tuning, Rand: rng})
	}
	return &Agent{
		tuning:  opts.Tuning,
		actions: actions,
		rng:     rng,
		ownerID: opts.OwnerID,
		logger:  log.With("ai"),
	}
}

func (a *Agent) OwnerID() int {
	return a.ownerID
}

// Tick sends every idle unit at the enemy fortress and builds at most one
// unit. Build cost is taken from w.
func (a *Agent) Tick(w *types.WorldState) []messages.Payload {
	var payloads []messages.Payload

	enemyFortress := game.FortressID(types.OpponentID(a.ownerID))
	for _, u := range w.UnitsOwnedBy(a.ownerID) {
		if u.HasTarget() {
			continue
		}
		move, err := a.actions.MoveUnit(w, a.ownerID, u.ID, enemyFortress, nil)
		if err != nil {
			a.logger.Debug("Failed to advance unit %s: %v", u.ID, err)
			continue
		}
		payloads = append(payloads, move)
	}

	unitType, ok := a.ChooseUnitType(w.Resources[a.ownerID])
	if !ok {
		return payloads
	}
	build, err := a.actions.BuildUnit(w, a.ownerID, unitType)
	if err != nil {
		a.logger.Warn("Failed to build %s: %v", unitType, err)
		return payloads
	}
	a.logger.Debug("Player %d building %s", a.ownerID, unitType)
	return append(payloads, build)
}

// ChooseUnitType walks the affordable unit types from most to least
// expensive, taking each with its AI weight. The cheapest affordable type is
// taken when every other roll fails.
func (a *Agent) ChooseUnitType(resources int) (types.UnitType, bool) {
	var affordable []types.UnitType
	for _, unitType := range a.tuning.UnitTypes() {
		stats, _ := a.tuning.Stats(unitType)
		if stats.Cost <= resources {
			affordable = append(affordable, unitType)
		}
	}
	if len(affordable) == 0 {
		return "", false
	}

	for _, unitType := range affordable[:len(affordable)-1] {
		stats, _ := a.tuning.Stats(unitType)
		if a.rng.Float64() < stats.AIWeight {
			return unitType, true
		}
	}
	return affordable[len(affordable)-1], true
}
