package eventlog

import (
	"context"
	"sync"
	"time"
)

// InMemoryLog keeps the log for the lifetime of the process.
type InMemoryLog struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
	closed  bool
}

func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{
		nextID: 1,
	}
}

func (l *InMemoryLog) Append(ctx context.Context, topic string, body string, author Author) (Entry, error) {
	if err := validateTopic(topic); err != nil {
		return Entry{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return Entry{}, ErrClosed
	}

	entry := Entry{
		ID:            l.nextID,
		Topic:         topic,
		Body:          body,
		AuthorDisplay: author.DisplayName,
		CreatedAtMs:   time.Now().UnixMilli(),
	}
	l.nextID++
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *InMemoryLog) Read(ctx context.Context, opts ReadOptions) ([]Entry, error) {
	if err := validateTopic(opts.Topic); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}

	limit := opts.limit()
	matched := make([]Entry, 0)
	for _, e := range l.entries {
		if e.Topic != opts.Topic || e.ID <= opts.SinceID {
			continue
		}
		matched = append(matched, e)
		if opts.SinceID > 0 && len(matched) == limit {
			break
		}
	}
	if opts.SinceID == 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

func (l *InMemoryLog) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
