package matchmaker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventbus"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/constants"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
)

type State int

const (
	StateIdle State = iota
	StateWaiting
	StateStarted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateStarted:
		return "started"
	default:
		return "unknown"
	}
}

// Match is the outcome of matchmaking.
type Match struct {
	Self     types.Player
	Opponent types.Identity
}

// Matchmaker pairs the local identity with a peer on the shared topic, or
// with the synthetic opponent when no peer answers in time.
type Matchmaker struct {
	bus          *eventbus.EventBus
	self         types.Identity
	timeout      time.Duration
	countdown    time.Duration
	pollInterval time.Duration
	now          func() time.Time
	onStart      func(Match)
	onCountdown  func(remaining time.Duration)
	onForward    func(messages.Event)
	logger       *log.Logger

	// started is the one-shot guard checked before every transition
	started atomic.Bool

	mu           sync.Mutex
	state        State
	waitingSince time.Time
	sawOwnJoin   bool
	timer        *time.Timer
	ctx          context.Context
	cancel       context.CancelFunc
	pollHandle   *eventbus.PollHandle
}

type NewMatchmakerOptions struct {
	EventBus *eventbus.EventBus
	Self     types.Identity
	// Timeout defaults to constants.MatchmakingTimeout
	Timeout time.Duration
	// CountdownInterval defaults to constants.CountdownInterval
	CountdownInterval time.Duration
	// PollInterval defaults to constants.LobbyPollInterval
	PollInterval time.Duration
	// Clock defaults to time.Now
	Clock func() time.Time
	// OnStart is called exactly once when a match is made
	OnStart func(Match)
	// OnCountdown reports the time left before the synthetic opponent is used
	OnCountdown func(remaining time.Duration)
	// OnForward receives events polled after the match was made, so the
	// game can replay entries that arrived in the same batch as StartGame
	OnForward func(messages.Event)
}

func New(opts NewMatchmakerOptions) *Matchmaker {
	m := &Matchmaker{
		bus:          opts.EventBus,
		self:         opts.Self,
		timeout:      opts.Timeout,
		countdown:    opts.CountdownInterval,
		pollInterval: opts.PollInterval,
		now:          opts.Clock,
		onStart:      opts.OnStart,
		onCountdown:  opts.OnCountdown,
		onForward:    opts.OnForward,
		logger:       log.With("matchmaker"),
	}
	if m.timeout <= 0 {
		m.timeout = constants.MatchmakingTimeout
	}
	if m.countdown <= 0 {
		m.countdown = constants.CountdownInterval
	}
	if m.pollInterval <= 0 {
		m.pollInterval = constants.LobbyPollInterval
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (m *Matchmaker) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FindGame announces the local identity and waits for a peer.
// pending holds events already polled before the lobby started, such as a
// peer's rematch JoinGame read by the previous game; they are handled before
// polling starts.
func (m *Matchmaker) FindGame(ctx context.Context, pending ...messages.Event) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return fmt.Errorf("cannot find game in state %s", m.state)
	}
	m.state = StateWaiting
	m.waitingSince = m.now()
	ctx, cancel := context.WithCancel(ctx)
	m.ctx = ctx
	m.cancel = cancel
	m.mu.Unlock()

	m.logger.Info("Looking for an opponent as %s", m.self.DisplayName)
	m.bus.PostEvent(ctx, messages.NewEvent(messages.JoinGame{}), m.self)
	for _, e := range pending {
		m.HandleEvent(e)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started.Load() {
		return nil
	}
	m.timer = time.AfterFunc(m.timeout, m.Timeout)
	go m.runCountdown(ctx, m.waitingSince.Add(m.timeout))
	m.pollHandle = m.bus.StartPolling(ctx, m.HandleEvent, m.pollInterval)
	return nil
}

func (m *Matchmaker) runCountdown(ctx context.Context, deadline time.Time) {
	if m.onCountdown == nil {
		return
	}
	ticker := time.NewTicker(m.countdown)
	defer ticker.Stop()

	m.onCountdown(deadline.Sub(m.now()).Round(time.Second))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := deadline.Sub(m.now()).Round(time.Second)
			if remaining < 0 {
				remaining = 0
			}
			m.onCountdown(remaining)
		}
	}
}

// HandleEvent advances the state machine on a polled event.
func (m *Matchmaker) HandleEvent(event messages.Event) {
	if m.started.Load() {
		if m.onForward != nil {
			m.onForward(event)
		}
		return
	}

	m.mu.Lock()
	if m.state != StateWaiting {
		m.mu.Unlock()
		return
	}
	windowStart := m.waitingSince.Add(-m.timeout).UnixMilli()
	if event.TimestampMs < windowStart {
		m.mu.Unlock()
		m.logger.Trace("Ignoring stale %s from %s", event.Type, event.Sender.DisplayName)
		return
	}
	if event.Sender.Is(m.self) {
		if event.Type == messages.EventTypeJoinGame && event.TimestampMs >= m.waitingSince.UnixMilli() {
			m.sawOwnJoin = true
		}
		m.mu.Unlock()
		return
	}
	sawOwnJoin := m.sawOwnJoin
	m.mu.Unlock()

	switch p := event.Payload.(type) {
	case messages.JoinGame:
		// the earlier joiner waits for the later one to answer
		if sawOwnJoin {
			m.logger.Debug("Waiting for %s to answer our join", event.Sender.DisplayName)
			return
		}
		m.answerJoin(event.Sender)
	case messages.StartGame:
		if !addressedTo(p, m.self) {
			return
		}
		opponent := event.Sender
		if p.Opponent != nil {
			opponent = p.Opponent.Identity
		}
		m.transition(Match{
			Self:     newPlayer(m.self, 0),
			Opponent: opponent,
		})
	default:
		m.logger.Trace("Ignoring %s while waiting", event.Type)
	}
}

func (m *Matchmaker) answerJoin(joiner types.Identity) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	self := newPlayer(m.self, 1)
	m.mu.Lock()
	ctx := m.ctx
	m.mu.Unlock()

	target := joiner
	// posted before finish cancels the lobby context
	m.bus.PostEvent(ctx, messages.NewEvent(messages.StartGame{
		Opponent: &self,
		Target:   &target,
	}), m.self)
	m.finish(Match{Self: self, Opponent: joiner})
}

// Timeout falls back to the synthetic opponent.
func (m *Matchmaker) Timeout() {
	m.logger.Info("No opponent found, starting against %s", types.SyntheticOpponent.DisplayName)
	m.transition(Match{
		Self:     newPlayer(m.self, 0),
		Opponent: types.SyntheticOpponent,
	})
}

func (m *Matchmaker) transition(match Match) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	m.finish(match)
}

// finish must only be called by the goroutine that won the guard.
func (m *Matchmaker) finish(match Match) {
	m.mu.Lock()
	m.state = StateStarted
	m.stopLocked()
	m.mu.Unlock()

	m.logger.Info("Match started as player %d against %s", match.Self.ID, match.Opponent.DisplayName)
	if m.onStart != nil {
		m.onStart(match)
	}
}

// Stop abandons matchmaking without starting a match.
func (m *Matchmaker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started.Store(true)
	if m.state == StateWaiting {
		m.state = StateIdle
	}
	m.stopLocked()
}

func (m *Matchmaker) stopLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.bus.StopPolling(m.pollHandle)
}

// Done is closed once lobby polling has exited. No event is forwarded after it.
func (m *Matchmaker) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollHandle == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return m.pollHandle.Done()
}

func addressedTo(p messages.StartGame, self types.Identity) bool {
	if p.Target != nil {
		return p.Target.Is(self)
	}
	return p.Opponent != nil && p.Opponent.Identity.Is(self)
}

func newPlayer(identity types.Identity, id int) types.Player {
	return types.Player{
		Identity: identity,
		ID:       id,
		Color:    constants.PlayerColors[id],
	}
}
