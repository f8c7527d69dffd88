package eventbus

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
	"github.com/achgulp/axon-bbs-sub000/pkg/transport"
)

// Callback receives each new event exactly once, in log order.
type Callback func(event messages.Event)

// EventBus wraps a Transport for a single topic. It deduplicates entries by
// their log id and delivers them in ascending id order.
type EventBus struct {
	transport transport.Transport
	topic     string
	readLimit int
	now       func() time.Time
	logger    *log.Logger

	// pollMu serializes polls so an entry is never delivered twice
	pollMu       sync.Mutex
	processedIDs map[int64]struct{}
	lastID       int64
}

type NewEventBusOptions struct {
	Transport transport.Transport
	Topic     string
	// ReadLimit is passed to the transport, zero uses the host default
	ReadLimit int
	// Clock defaults to time.Now
	Clock func() time.Time
}

func New(opts NewEventBusOptions) *EventBus {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &EventBus{
		transport:    opts.Transport,
		topic:        opts.Topic,
		readLimit:    opts.ReadLimit,
		now:          now,
		logger:       log.With("eventbus"),
		processedIDs: make(map[int64]struct{}),
	}
}

func (b *EventBus) Topic() string {
	return b.topic
}

// PostEvent stamps the event with the sender and posts it. An event not
// already stamped at authoring time gets the current time.
// Failures are logged and never retried.
func (b *EventBus) PostEvent(ctx context.Context, event messages.Event, sender types.Identity) {
	event.Sender = sender
	if event.TimestampMs == 0 {
		event.TimestampMs = b.now().UnixMilli()
	}
	if event.Type == "" && event.Payload != nil {
		event.Type = event.Payload.EventType()
	}

	body, err := messages.Encode(event)
	if err != nil {
		b.logger.Error("Failed to encode %s event: %v", event.Type, err)
		return
	}
	if err := b.transport.PostEvent(ctx, transport.PostRequest{Topic: b.topic, Body: string(body)}); err != nil {
		b.logger.Error("Failed to post %s event: %v", event.Type, err)
		return
	}
	b.logger.Trace("Posted %s event as %s", event.Type, sender.DisplayName)
}

// PollEvents reads the topic once and delivers every unprocessed entry.
// Entries that fail to decode are marked processed and dropped.
func (b *EventBus) PollEvents(ctx context.Context, callback Callback) error {
	b.pollMu.Lock()
	defer b.pollMu.Unlock()

	entries, err := b.transport.ReadEvents(ctx, transport.ReadRequest{
		Topic:   b.topic,
		SinceID: b.lastID,
		Limit:   b.readLimit,
	})
	if err != nil {
		return err
	}

	fresh := make([]eventlog.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Topic != b.topic {
			continue
		}
		if _, ok := b.processedIDs[e.ID]; ok {
			continue
		}
		fresh = append(fresh, e)
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].ID < fresh[j].ID })

	for _, e := range fresh {
		b.processedIDs[e.ID] = struct{}{}
		if e.ID > b.lastID {
			b.lastID = e.ID
		}
		event, err := messages.Decode([]byte(e.Body))
		if err != nil {
			b.logger.Warn("Dropping entry %d: %v", e.ID, err)
			continue
		}
		callback(*event)
	}
	return nil
}

// Reset forgets every processed id. Only a full session restart should call it.
func (b *EventBus) Reset() {
	b.pollMu.Lock()
	defer b.pollMu.Unlock()
	b.processedIDs = make(map[int64]struct{})
	b.lastID = 0
}

// PollHandle controls a polling goroutine started by StartPolling.
type PollHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Done is closed once the polling goroutine has exited.
func (h *PollHandle) Done() <-chan struct{} {
	return h.done
}

// StartPolling polls immediately and then once per interval until stopped or
// ctx is done. Transport errors are logged and retried on the next tick.
func (b *EventBus) StartPolling(ctx context.Context, callback Callback, interval time.Duration) *PollHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := b.PollEvents(ctx, callback); err != nil && ctx.Err() == nil {
				b.logger.Warn("Failed to poll events: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return h
}

// StopPolling cancels the polling goroutine. It does not wait for it to exit,
// so it is safe to call from inside a callback.
func (b *EventBus) StopPolling(h *PollHandle) {
	if h == nil {
		return
	}
	h.cancel()
}
