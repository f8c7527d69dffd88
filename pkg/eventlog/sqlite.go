package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteLog struct {
	db *sql.DB
}

func NewSQLiteLog(ctx context.Context, path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	statements, err := migrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range statements {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i, err)
		}
	}

	return &SQLiteLog{
		db: db,
	}, nil
}

func (l *SQLiteLog) Append(ctx context.Context, topic string, body string, author Author) (Entry, error) {
	if err := validateTopic(topic); err != nil {
		return Entry{}, err
	}
	now := time.Now().UnixMilli()
	q := `
	INSERT INTO events (topic, body, author_display, author_pubkey, created_at)
	VALUES (?, ?, ?, ?, ?);
	`
	res, err := l.db.ExecContext(ctx, q, topic, body, author.DisplayName, author.PublicKeyID, now)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert event: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get event id: %v", err)
	}

	return Entry{
		ID:            id,
		Topic:         topic,
		Body:          body,
		AuthorDisplay: author.DisplayName,
		CreatedAtMs:   now,
	}, nil
}

func (l *SQLiteLog) Read(ctx context.Context, opts ReadOptions) ([]Entry, error) {
	if err := validateTopic(opts.Topic); err != nil {
		return nil, err
	}
	var q string
	if opts.SinceID > 0 {
		q = `
		SELECT id, topic, body, author_display, created_at FROM events
		WHERE topic = ? AND id > ? ORDER BY id ASC LIMIT ?;
		`
	} else {
		q = `
		SELECT id, topic, body, author_display, created_at FROM (
			SELECT id, topic, body, author_display, created_at FROM events
			WHERE topic = ? AND id > ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC;
		`
	}

	rows, err := l.db.QueryContext(ctx, q, opts.Topic, opts.SinceID, opts.limit())
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

func (l *SQLiteLog) Close(ctx context.Context) error {
	return l.db.Close()
}
