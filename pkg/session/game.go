package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/ai"
	"github.com/achgulp/axon-bbs-sub000/pkg/collisions"
	"github.com/achgulp/axon-bbs-sub000/pkg/game"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
	"github.com/achgulp/axon-bbs-sub000/pkg/matchmaker"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
	"github.com/achgulp/axon-bbs-sub000/pkg/queue"
	"github.com/achgulp/axon-bbs-sub000/pkg/state"
	"github.com/achgulp/axon-bbs-sub000/pkg/workers"
)

// eventQueueSize bounds the events polled between two frames.
const eventQueueSize = 4096

// maxFrameDelta caps the time a single frame may simulate.
const maxFrameDelta = time.Second

// round is the state of one match. Only the game loop goroutine touches it.
type round struct {
	s         *Session
	match     matchmaker.Match
	synthetic bool
	world     *types.WorldState
	reducer   *game.Reducer
	simulator *game.Simulator
	actions   *game.Actions
	// opponentAI plays the opponent seat against the synthetic opponent
	opponentAI *ai.Agent
	// autopilot plays the local seat
	autopilot *ai.Agent
	events    *queue.InMemoryQueue[messages.Event]
	posts     chan workers.PostEventRequest
	// declared is set once this client has authored a GameOver
	declared bool
}

func (s *Session) newRound(match matchmaker.Match) *round {
	r := &round{
		s:         s,
		match:     match,
		synthetic: match.Opponent.IsSynthetic,
		world:     game.NewWorldState(s.tuning),
		reducer:   game.NewReducer(s.tuning),
		simulator: game.NewSimulator(s.tuning),
		actions:   game.NewActions(game.NewActionsOptions{Tuning: s.tuning, Rand: rand.New(rand.NewSource(s.rng.Int63()))}),
		events:    queue.NewInMemoryQueue[messages.Event](eventQueueSize),
		posts:     make(chan workers.PostEventRequest, workers.DefaultPostBufferSize),
	}
	if r.synthetic {
		r.opponentAI = ai.NewAgent(ai.NewAgentOptions{
			Tuning:  s.tuning,
			Rand:    rand.New(rand.NewSource(s.rng.Int63())),
			OwnerID: r.opponentID(),
		})
	}
	if s.autopilot {
		r.autopilot = ai.NewAgent(ai.NewAgentOptions{
			Tuning:  s.tuning,
			Rand:    rand.New(rand.NewSource(s.rng.Int63())),
			OwnerID: r.selfID(),
		})
	}
	return r
}

func (r *round) selfID() int {
	return r.match.Self.ID
}

func (r *round) opponentID() int {
	return types.OpponentID(r.match.Self.ID)
}

// controls reports whether this client authors events for a seat.
func (r *round) controls(ownerID int) bool {
	return ownerID == r.selfID() || (r.synthetic && ownerID == r.opponentID())
}

// controlsSender reports whether an event from sender was authored by this client.
func (r *round) controlsSender(sender types.Identity) bool {
	return sender.Is(r.match.Self.Identity) || (r.synthetic && sender.Is(types.SyntheticOpponent))
}

func (r *round) identityFor(ownerID int) types.Identity {
	if ownerID == r.selfID() {
		return r.match.Self.Identity
	}
	return types.SyntheticOpponent
}

// post hands an event to the post worker, stamped with the current time.
func (r *round) post(payload messages.Payload, sender types.Identity) {
	r.postAt(payload, sender, r.s.now().UnixMilli())
}

// postAt stamps the event when it is authored, not when the worker sends it,
// so a slow transport cannot squeeze two paced attacks into one cooldown.
func (r *round) postAt(payload messages.Payload, sender types.Identity, timestampMs int64) {
	event := messages.NewEvent(payload)
	event.TimestampMs = timestampMs
	workers.TryPost(r.posts, workers.PostEventRequest{
		Event:  event,
		Sender: sender,
	})
}

// Play runs the game loop for a match until a GameOver event is applied or
// ctx is done. pending events are applied before anything polled later.
// Play returns the events polled after the GameOver, which belong to
// whatever the players do next.
func (s *Session) Play(ctx context.Context, match matchmaker.Match, pending []messages.Event) (Outcome, []messages.Event, error) {
	r := s.newRound(match)
	for _, e := range pending {
		if err := r.events.Enqueue(e); err != nil {
			s.logger.Error("Failed to enqueue pending %s event: %v", e.Type, err)
		}
	}

	worker := workers.NewPostEventWorker(workers.NewPostEventWorkerOptions{
		EventBus:     s.bus,
		PostRequests: r.posts,
	})
	go worker.Start(ctx)

	poll := s.bus.StartPolling(ctx, func(e messages.Event) {
		if err := r.events.Enqueue(e); err != nil {
			s.logger.Error("Failed to enqueue %s event: %v", e.Type, err)
		}
	}, s.gamePollInterval)

	s.logger.Info("Playing as player %d against %s", match.Self.ID, match.Opponent.DisplayName)
	r.publish(ctx, state.PhasePlaying, 0)

	outcome, leftover, err := r.loop(ctx)

	// polling and posting stop before the next match starts
	s.bus.StopPolling(poll)
	<-poll.Done()
	close(r.posts)
	<-worker.Done()
	if err != nil {
		return Outcome{}, nil, err
	}

	rest, err := r.events.ReadAllMessages()
	if err != nil {
		s.logger.Error("Failed to read events after game over: %v", err)
	}
	return outcome, append(leftover, rest...), nil
}

func (r *round) loop(ctx context.Context) (Outcome, []messages.Event, error) {
	frames := time.NewTicker(r.s.frameInterval)
	defer frames.Stop()
	resources := time.NewTicker(r.s.resourceTickInterval)
	defer resources.Stop()
	aiTicks := time.NewTicker(r.s.aiTickInterval)
	defer aiTicks.Stop()

	var lastFrame time.Time
	for {
		select {
		case <-ctx.Done():
			return Outcome{}, nil, ctx.Err()
		case now := <-frames.C:
			dt := frameDelta(lastFrame, now, r.s.frameInterval)
			lastFrame = now
			if outcome, leftover, over := r.gameTick(ctx, dt); over {
				return outcome, leftover, nil
			}
		case <-resources.C:
			game.GenerateResources(r.world, r.s.tuning.ResourceGenerationRate)
		case <-aiTicks.C:
			r.aiTick()
		case cmd := <-r.s.commands:
			cmd.reply(r.handleCommand(cmd))
		}
	}
}

// frameDelta returns the seconds elapsed between two frames. The first frame
// simulates one nominal interval.
func frameDelta(last, now time.Time, nominal time.Duration) float64 {
	if last.IsZero() || !now.After(last) {
		return nominal.Seconds()
	}
	elapsed := now.Sub(last)
	if elapsed > maxFrameDelta {
		elapsed = maxFrameDelta
	}
	return elapsed.Seconds()
}

// gameTick runs one iteration of the game loop, simulating dt seconds.
func (r *round) gameTick(ctx context.Context, dt float64) (Outcome, []messages.Event, bool) {
	if outcome, leftover, over := r.processEvents(); over {
		r.publish(ctx, state.PhaseGameOver, outcome.WinnerID)
		return outcome, leftover, true
	}

	nowMs := r.s.now().UnixMilli()
	attacks := r.simulator.Step(r.world, dt, nowMs, r.controls)
	for _, attack := range attacks {
		attacker := r.world.FindUnit(attack.AttackerID)
		if attacker == nil {
			continue
		}
		r.postAt(attack, r.identityFor(attacker.OwnerID), nowMs)
	}

	r.publish(ctx, state.PhasePlaying, 0)
	return Outcome{}, nil, false
}

// processEvents applies every polled event in log order. Once a GameOver is
// applied the rest of the batch is returned unapplied.
func (r *round) processEvents() (Outcome, []messages.Event, bool) {
	pending, err := r.events.ReadAllMessages()
	if err != nil {
		r.s.logger.Error("Failed to read events: %v", err)
		return Outcome{}, nil, false
	}
	for i, e := range pending {
		next, effects := r.reducer.Reduce(r.world, e)
		r.world = next
		for _, effect := range effects {
			switch effect := effect.(type) {
			case game.UnitDestroyed:
				r.s.logger.Debug("Unit %s destroyed by %s", effect.UnitID, effect.AttackerID)
			case game.FortressDestroyed:
				r.declareWinner(effect)
			case game.GameEnded:
				return r.outcome(effect.WinnerID), pending[i+1:], true
			}
		}
	}
	return Outcome{}, nil, false
}

// declareWinner posts GameOver when the destroying attack came from this
// client. The other client waits for it, so exactly one GameOver is authored.
func (r *round) declareWinner(effect game.FortressDestroyed) {
	if r.declared || !r.controlsSender(effect.Sender) {
		return
	}
	r.declared = true
	r.s.logger.Info("Fortress %s destroyed, player %d wins", effect.FortressID, effect.WinnerID)
	r.post(messages.GameOver{WinnerID: effect.WinnerID}, effect.Sender)
}

func (r *round) outcome(winnerID int) Outcome {
	return Outcome{
		WinnerID: winnerID,
		Won:      winnerID == r.selfID(),
		Self:     r.match.Self,
		Opponent: r.match.Opponent,
	}
}

func (r *round) aiTick() {
	if r.opponentAI != nil {
		for _, payload := range r.opponentAI.Tick(r.world) {
			r.post(payload, types.SyntheticOpponent)
		}
	}
	if r.autopilot != nil {
		for _, payload := range r.autopilot.Tick(r.world) {
			r.post(payload, r.match.Self.Identity)
		}
	}
}

func (r *round) handleCommand(cmd Command) error {
	switch cmd := cmd.(type) {
	case BuildCommand:
		build, err := r.actions.BuildUnit(r.world, r.selfID(), cmd.UnitType)
		if err != nil {
			return err
		}
		r.post(build, r.match.Self.Identity)
		return nil
	case MoveCommand:
		targetID := cmd.TargetID
		if targetID == "" && cmd.Point != nil {
			targetID = r.pickEnemy(*cmd.Point)
		}
		move, err := r.actions.MoveUnit(r.world, r.selfID(), cmd.UnitID, targetID, cmd.Point)
		if err != nil {
			return err
		}
		r.post(move, r.match.Self.Identity)
		return nil
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

// pickEnemy returns the enemy entity standing at point, if any.
func (r *round) pickEnemy(point kinematic.Vector) string {
	picker := collisions.NewPicker(r.world)
	id, ok := picker.Pick(point, func(id string) bool {
		owner, ok := r.world.EntityOwner(id)
		return ok && owner != r.selfID()
	})
	if !ok {
		return ""
	}
	return id
}

func (r *round) publish(ctx context.Context, phase state.Phase, winnerID int) {
	r.s.publish(ctx, &state.Snapshot{
		Phase:    phase,
		Self:     r.match.Self,
		Opponent: r.match.Opponent,
		World:    r.world,
		WinnerID: winnerID,
	})
}
