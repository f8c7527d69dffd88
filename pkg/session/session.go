package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventbus"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/constants"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/matchmaker"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
	"github.com/achgulp/axon-bbs-sub000/pkg/state"
)

// Outcome is how a match ended for the local player.
type Outcome struct {
	WinnerID int
	Won      bool
	Self     types.Player
	Opponent types.Identity
}

// Session runs matches for one local identity on one topic: matchmaking
// first, then the game loop until a GameOver event is applied.
type Session struct {
	bus          *eventbus.EventBus
	self         types.Identity
	tuning       *tuning.Tuning
	stateManager state.StateManager
	commands     <-chan Command
	autopilot    bool
	rng          *rand.Rand
	now          func() time.Time
	onCountdown  func(remaining time.Duration)
	logger       *log.Logger
	// carried holds events the last game polled after its GameOver
	carried []messages.Event

	matchmakingTimeout   time.Duration
	countdownInterval    time.Duration
	lobbyPollInterval    time.Duration
	gamePollInterval     time.Duration
	frameInterval        time.Duration
	aiTickInterval       time.Duration
	resourceTickInterval time.Duration
}

// NewSessionOptions contains options for creating a new Session.
// Zero intervals use the defaults from the constants package.
type NewSessionOptions struct {
	EventBus *eventbus.EventBus
	Self     types.Identity
	// Tuning defaults to tuning.Default()
	Tuning *tuning.Tuning
	// StateManager receives a snapshot after every change, defaults to an in-memory manager
	StateManager state.StateManager
	// Commands carries the local player's actions into the game loop
	Commands <-chan Command
	// Autopilot lets the AI policy play the local seat
	Autopilot bool
	// Rand defaults to a time-seeded source
	Rand *rand.Rand
	// Clock defaults to time.Now
	Clock       func() time.Time
	OnCountdown func(remaining time.Duration)

	MatchmakingTimeout   time.Duration
	CountdownInterval    time.Duration
	LobbyPollInterval    time.Duration
	GamePollInterval     time.Duration
	FrameInterval        time.Duration
	AITickInterval       time.Duration
	ResourceTickInterval time.Duration
}

func New(opts NewSessionOptions) *Session {
	s := &Session{
		bus:                  opts.EventBus,
		self:                 opts.Self,
		tuning:               opts.Tuning,
		stateManager:         opts.StateManager,
		commands:             opts.Commands,
		autopilot:            opts.Autopilot,
		rng:                  opts.Rand,
		now:                  opts.Clock,
		onCountdown:          opts.OnCountdown,
		logger:               log.With("session"),
		matchmakingTimeout:   withDefault(opts.MatchmakingTimeout, constants.MatchmakingTimeout),
		countdownInterval:    withDefault(opts.CountdownInterval, constants.CountdownInterval),
		lobbyPollInterval:    withDefault(opts.LobbyPollInterval, constants.LobbyPollInterval),
		gamePollInterval:     withDefault(opts.GamePollInterval, constants.GamePollInterval),
		frameInterval:        withDefault(opts.FrameInterval, constants.FrameInterval),
		aiTickInterval:       withDefault(opts.AITickInterval, constants.AITickInterval),
		resourceTickInterval: withDefault(opts.ResourceTickInterval, constants.ResourceTickInterval),
	}
	if s.tuning == nil {
		s.tuning = tuning.Default()
	}
	if s.stateManager == nil {
		s.stateManager = state.NewInMemoryStateManager()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func withDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func (s *Session) StateManager() state.StateManager {
	return s.stateManager
}

// Run plays a single match: lobby, then game. Events the game polled after
// its GameOver are handed to the lobby of the next Run.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	carried := s.carried
	s.carried = nil
	match, pending, err := s.Lobby(ctx, carried...)
	if err != nil {
		return Outcome{}, err
	}
	outcome, leftover, err := s.Play(ctx, match, pending)
	if err != nil {
		return Outcome{}, err
	}
	s.carried = leftover
	return outcome, nil
}

// Lobby blocks until a match is made. carried events were polled before the
// lobby started and are handled first. Lobby also returns the events polled
// in the same batches as the match start, which the game must still apply.
func (s *Session) Lobby(ctx context.Context, carried ...messages.Event) (matchmaker.Match, []messages.Event, error) {
	started := make(chan matchmaker.Match, 1)
	var (
		pendingMu sync.Mutex
		pending   []messages.Event
	)

	s.publish(ctx, &state.Snapshot{Phase: state.PhaseLobby, Countdown: s.matchmakingTimeout})
	mm := matchmaker.New(matchmaker.NewMatchmakerOptions{
		EventBus:          s.bus,
		Self:              s.self,
		Timeout:           s.matchmakingTimeout,
		CountdownInterval: s.countdownInterval,
		PollInterval:      s.lobbyPollInterval,
		Clock:             s.now,
		OnStart: func(m matchmaker.Match) {
			started <- m
		},
		OnCountdown: func(remaining time.Duration) {
			s.publish(ctx, &state.Snapshot{Phase: state.PhaseLobby, Countdown: remaining})
			if s.onCountdown != nil {
				s.onCountdown(remaining)
			}
		},
		OnForward: func(e messages.Event) {
			pendingMu.Lock()
			defer pendingMu.Unlock()
			pending = append(pending, e)
		},
	})
	if err := mm.FindGame(ctx, carried...); err != nil {
		return matchmaker.Match{}, nil, fmt.Errorf("failed to find game: %v", err)
	}

	select {
	case <-ctx.Done():
		mm.Stop()
		<-mm.Done()
		return matchmaker.Match{}, nil, ctx.Err()
	case match := <-started:
		<-mm.Done()
		pendingMu.Lock()
		defer pendingMu.Unlock()
		return match, pending, nil
	}
}

func (s *Session) publish(ctx context.Context, snapshot *state.Snapshot) {
	if err := s.stateManager.Set(ctx, snapshot); err != nil {
		s.logger.Error("Failed to publish snapshot: %v", err)
	}
}
