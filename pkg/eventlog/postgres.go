package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/jackc/pgx/v5/pgxpool"
)

// appendLockKey names the advisory lock that serializes appends.
const appendLockKey int64 = 0x6f766c64

type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog connects to the database and applies migrations.
// The caller is responsible for calling Close() on the log.
func NewPostgresLog(ctx context.Context, connStr string) (*PostgresLog, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	statements, err := migrations("postgres")
	if err != nil {
		pool.Close()
		return nil, err
	}
	for i, migration := range statements {
		if _, err := pool.Exec(ctx, migration); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i, err)
		}
	}

	return &PostgresLog{
		pool: pool,
	}, nil
}

func (l *PostgresLog) Append(ctx context.Context, topic string, body string, author Author) (Entry, error) {
	if err := validateTopic(topic); err != nil {
		return Entry{}, err
	}
	now := time.Now().UnixMilli()

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	// ids are drawn under the lock and committed before it is released, so an
	// entry is never visible before one with a lower id
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", appendLockKey); err != nil {
		return Entry{}, fmt.Errorf("failed to lock events: %v", err)
	}
	q := `
	INSERT INTO events (topic, body, author_display, author_pubkey, created_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id;
	`
	var id int64
	if err := tx.QueryRow(ctx, q, topic, body, author.DisplayName, author.PublicKeyID, now).Scan(&id); err != nil {
		return Entry{}, fmt.Errorf("failed to insert event: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Entry{}, fmt.Errorf("failed to commit event: %v", err)
	}

	return Entry{
		ID:            id,
		Topic:         topic,
		Body:          body,
		AuthorDisplay: author.DisplayName,
		CreatedAtMs:   now,
	}, nil
}

func (l *PostgresLog) Read(ctx context.Context, opts ReadOptions) ([]Entry, error) {
	if err := validateTopic(opts.Topic); err != nil {
		return nil, err
	}
	var q string
	if opts.SinceID > 0 {
		q = `
		SELECT id, topic, body, author_display, created_at FROM events
		WHERE topic = $1 AND id > $2 ORDER BY id ASC LIMIT $3;
		`
	} else {
		q = `
		SELECT id, topic, body, author_display, created_at FROM (
			SELECT id, topic, body, author_display, created_at FROM events
			WHERE topic = $1 AND id > $2 ORDER BY id DESC LIMIT $3
		) latest ORDER BY id ASC;
		`
	}

	rows, err := l.pool.Query(ctx, q, opts.Topic, opts.SinceID, opts.limit())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %v", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Topic, &e.Body, &e.AuthorDisplay, &e.CreatedAtMs); err != nil {
			return nil, fmt.Errorf("failed to scan event: %v", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %v", err)
	}

	return entries, nil
}

func (l *PostgresLog) Close(ctx context.Context) error {
	l.pool.Close()
	return nil
}
