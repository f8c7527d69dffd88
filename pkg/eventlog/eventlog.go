package eventlog

import (
	"context"
	"fmt"
	"net/url"
)

// DefaultReadLimit is applied when ReadOptions.Limit is not positive.
const DefaultReadLimit = 50

// Entry is one record of the append-only log. The log assigns ID.
type Entry struct {
	ID            int64  `json:"id"`
	Topic         string `json:"topic"`
	Body          string `json:"body"`
	AuthorDisplay string `json:"authorDisplay"`
	CreatedAtMs   int64  `json:"createdAtMs"`
}

// Author describes the poster of an entry.
type Author struct {
	DisplayName string
	PublicKeyID string
}

type ReadOptions struct {
	Topic string
	// SinceID returns only entries with a greater id. With no cursor
	// the latest Limit entries are returned.
	SinceID int64
	Limit   int
}

func (o ReadOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultReadLimit
	}
	return o.Limit
}

// Log is an append-only, totally ordered message log partitioned by topic.
// Entry ids increase strictly across the whole log, and an entry becomes
// visible to Read only after every entry with a lower id, so a reader that
// passes the highest id it has seen as SinceID never skips an entry.
// Read returns entries in ascending id order.
type Log interface {
	Append(ctx context.Context, topic string, body string, author Author) (Entry, error)
	Read(ctx context.Context, opts ReadOptions) ([]Entry, error)
	Close(ctx context.Context) error
}

// Open creates a Log from a connection string.
// Supported schemes are memory://, sqlite://<path> and postgresql://.
func Open(ctx context.Context, connStr string) (Log, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "memory":
		return NewInMemoryLog(), nil
	case "sqlite":
		path := u.Host + u.Path
		if path == "" {
			return nil, fmt.Errorf("sqlite connection string has no path")
		}
		return NewSQLiteLog(ctx, path)
	case "postgres", "postgresql":
		return NewPostgresLog(ctx, u.String())
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}
