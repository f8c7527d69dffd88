package matchmaker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventbus"
	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/constants"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
	"github.com/achgulp/axon-bbs-sub000/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = types.Identity{DisplayName: "Alice", PublicKeyID: "pk-alice"}
	bob   = types.Identity{DisplayName: "Bob", PublicKeyID: "pk-bob"}
)

type client struct {
	bus     *eventbus.EventBus
	mm      *Matchmaker
	matches chan Match
}

func newClient(l eventlog.Log, self types.Identity, timeout time.Duration) *client {
	bus := eventbus.New(eventbus.NewEventBusOptions{
		Transport: transport.NewLocalTransport(l, transport.UserInfo{Nickname: self.DisplayName, PublicKeyID: self.PublicKeyID}),
		Topic:     constants.GameTopic,
	})
	c := &client{
		bus:     bus,
		matches: make(chan Match, 4),
	}
	c.mm = New(NewMatchmakerOptions{
		EventBus:     bus,
		Self:         self,
		Timeout:      timeout,
		PollInterval: 5 * time.Millisecond,
		OnStart: func(m Match) {
			c.matches <- m
		},
	})
	return c
}

func waitMatch(t *testing.T, c *client) Match {
	t.Helper()
	select {
	case m := <-c.matches:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("no match")
		return Match{}
	}
}

func TestMatchmaker_TwoPeers(t *testing.T) {
	ctx := context.Background()
	l := eventlog.NewInMemoryLog()
	a := newClient(l, alice, time.Minute)
	b := newClient(l, bob, time.Minute)

	require.NoError(t, a.mm.FindGame(ctx))
	require.NoError(t, b.mm.FindGame(ctx))

	ma := waitMatch(t, a)
	mb := waitMatch(t, b)

	assert.Equal(t, 0, ma.Self.ID)
	assert.Equal(t, constants.PlayerOneColor, ma.Self.Color)
	assert.Equal(t, bob.PublicKeyID, ma.Opponent.PublicKeyID)
	assert.False(t, ma.Opponent.IsSynthetic)

	assert.Equal(t, 1, mb.Self.ID)
	assert.Equal(t, constants.PlayerTwoColor, mb.Self.Color)
	assert.Equal(t, alice.PublicKeyID, mb.Opponent.PublicKeyID)

	assert.Equal(t, StateStarted, a.mm.State())
	assert.Equal(t, StateStarted, b.mm.State())
}

func TestMatchmaker_SimultaneousJoins(t *testing.T) {
	ctx := context.Background()
	l := eventlog.NewInMemoryLog()
	a := newClient(l, alice, time.Minute)
	b := newClient(l, bob, time.Minute)

	var wg sync.WaitGroup
	for _, c := range []*client{a, b} {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			assert.NoError(t, c.mm.FindGame(ctx))
		}(c)
	}
	wg.Wait()

	ma := waitMatch(t, a)
	mb := waitMatch(t, b)
	assert.ElementsMatch(t, []int{0, 1}, []int{ma.Self.ID, mb.Self.ID})

	entries, err := l.Read(ctx, eventlog.ReadOptions{Topic: constants.GameTopic})
	require.NoError(t, err)
	starts := 0
	for _, e := range entries {
		ev, err := messages.Decode([]byte(e.Body))
		require.NoError(t, err)
		if ev.Type == messages.EventTypeStartGame {
			starts++
		}
	}
	assert.Equal(t, 1, starts)
}

func TestMatchmaker_FallsBackToSyntheticOpponent(t *testing.T) {
	l := eventlog.NewInMemoryLog()
	a := newClient(l, alice, 30*time.Millisecond)

	require.NoError(t, a.mm.FindGame(context.Background()))
	m := waitMatch(t, a)

	assert.Equal(t, 0, m.Self.ID)
	assert.True(t, m.Opponent.IsSynthetic)
	assert.Equal(t, types.SyntheticOpponent, m.Opponent)

	select {
	case <-a.matches:
		t.Fatal("OnStart fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMatchmaker_FallbackExactlyOnceUnderRace(t *testing.T) {
	l := eventlog.NewInMemoryLog()
	var starts atomic.Int32
	bus := eventbus.New(eventbus.NewEventBusOptions{
		Transport: transport.NewLocalTransport(l, transport.UserInfo{Nickname: "Alice", PublicKeyID: "pk-alice"}),
		Topic:     constants.GameTopic,
	})
	mm := New(NewMatchmakerOptions{
		EventBus:     bus,
		Self:         alice,
		Timeout:      time.Minute,
		PollInterval: time.Minute,
		OnStart: func(Match) {
			starts.Add(1)
		},
	})
	require.NoError(t, mm.FindGame(context.Background()))

	bobSeat := types.Player{Identity: bob, ID: 1}
	target := alice
	start := messages.Event{
		Type:        messages.EventTypeStartGame,
		Payload:     messages.StartGame{Opponent: &bobSeat, Target: &target},
		TimestampMs: time.Now().UnixMilli(),
		Sender:      bob,
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			mm.Timeout()
		}()
		go func() {
			defer wg.Done()
			mm.HandleEvent(start)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), starts.Load())
	assert.Equal(t, StateStarted, mm.State())
}

func TestMatchmaker_IgnoresStaleJoin(t *testing.T) {
	ctx := context.Background()
	l := eventlog.NewInMemoryLog()

	old, err := messages.Encode(messages.Event{
		Payload:     messages.JoinGame{},
		TimestampMs: time.Now().Add(-time.Hour).UnixMilli(),
		Sender:      bob,
	})
	require.NoError(t, err)
	_, err = l.Append(ctx, constants.GameTopic, string(old), eventlog.Author{DisplayName: "Bob"})
	require.NoError(t, err)

	a := newClient(l, alice, 50*time.Millisecond)
	require.NoError(t, a.mm.FindGame(ctx))
	m := waitMatch(t, a)
	assert.True(t, m.Opponent.IsSynthetic)
}

func TestMatchmaker_AnswersPendingJoin(t *testing.T) {
	ctx := context.Background()
	l := eventlog.NewInMemoryLog()
	a := newClient(l, alice, time.Minute)

	// read by the previous game before this lobby began polling
	rematch := messages.Event{
		Type:        messages.EventTypeJoinGame,
		Payload:     messages.JoinGame{},
		TimestampMs: time.Now().UnixMilli(),
		Sender:      bob,
	}
	require.NoError(t, a.mm.FindGame(ctx, rematch))

	m := waitMatch(t, a)
	assert.Equal(t, 1, m.Self.ID)
	assert.True(t, m.Opponent.Is(bob))
	select {
	case <-a.mm.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("lobby polling did not stop")
	}

	entries, err := l.Read(ctx, eventlog.ReadOptions{Topic: constants.GameTopic})
	require.NoError(t, err)
	var starts []messages.StartGame
	for _, e := range entries {
		event, err := messages.Decode([]byte(e.Body))
		require.NoError(t, err)
		if p, ok := event.Payload.(messages.StartGame); ok {
			starts = append(starts, p)
		}
	}
	require.Len(t, starts, 1)
	require.NotNil(t, starts[0].Target)
	assert.True(t, starts[0].Target.Is(bob))
}

func TestMatchmaker_IgnoresStartGameForSomeoneElse(t *testing.T) {
	mm := New(NewMatchmakerOptions{
		EventBus: eventbus.New(eventbus.NewEventBusOptions{
			Transport: transport.NewLocalTransport(eventlog.NewInMemoryLog(), transport.UserInfo{PublicKeyID: "pk-alice"}),
			Topic:     constants.GameTopic,
		}),
		Self:         alice,
		Timeout:      time.Minute,
		PollInterval: time.Minute,
	})
	require.NoError(t, mm.FindGame(context.Background()))
	defer mm.Stop()

	carol := types.Identity{DisplayName: "Carol", PublicKeyID: "pk-carol"}
	mm.HandleEvent(messages.Event{
		Type:        messages.EventTypeStartGame,
		Payload:     messages.StartGame{Target: &carol},
		TimestampMs: time.Now().UnixMilli(),
		Sender:      bob,
	})
	assert.Equal(t, StateWaiting, mm.State())
}

func TestMatchmaker_FindGameTwice(t *testing.T) {
	l := eventlog.NewInMemoryLog()
	a := newClient(l, alice, time.Minute)
	require.NoError(t, a.mm.FindGame(context.Background()))
	defer a.mm.Stop()

	assert.Error(t, a.mm.FindGame(context.Background()))
}

func TestMatchmaker_Countdown(t *testing.T) {
	l := eventlog.NewInMemoryLog()
	var mu sync.Mutex
	var reports []time.Duration
	mm := New(NewMatchmakerOptions{
		EventBus: eventbus.New(eventbus.NewEventBusOptions{
			Transport: transport.NewLocalTransport(l, transport.UserInfo{PublicKeyID: "pk-alice"}),
			Topic:     constants.GameTopic,
		}),
		Self:              alice,
		Timeout:           3 * time.Second,
		CountdownInterval: 10 * time.Millisecond,
		PollInterval:      time.Minute,
		OnCountdown: func(remaining time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			reports = append(reports, remaining)
		},
	})
	require.NoError(t, mm.FindGame(context.Background()))
	defer mm.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reports) >= 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3*time.Second, reports[0])
}
