package eventlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLog runs the behaviour shared by every backend.
func testLog(t *testing.T, newLog func(t *testing.T) Log) {
	ctx := context.Background()
	author := Author{DisplayName: "Player 1", PublicKeyID: "pk-a"}

	t.Run("ids increase across topics", func(t *testing.T) {
		l := newLog(t)
		a, err := l.Append(ctx, "a", "1", author)
		require.NoError(t, err)
		b, err := l.Append(ctx, "b", "2", author)
		require.NoError(t, err)
		c, err := l.Append(ctx, "a", "3", author)
		require.NoError(t, err)

		assert.Less(t, a.ID, b.ID)
		assert.Less(t, b.ID, c.ID)
		assert.Equal(t, "Player 1", c.AuthorDisplay)
	})

	t.Run("read filters topic and orders ascending", func(t *testing.T) {
		l := newLog(t)
		for i := 0; i < 5; i++ {
			topic := "game"
			if i%2 == 1 {
				topic = "chat"
			}
			_, err := l.Append(ctx, topic, fmt.Sprintf("m%d", i), author)
			require.NoError(t, err)
		}

		entries, err := l.Read(ctx, ReadOptions{Topic: "game"})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []string{"m0", "m2", "m4"}, bodies(entries))
		for i := 1; i < len(entries); i++ {
			assert.Less(t, entries[i-1].ID, entries[i].ID)
		}
	})

	t.Run("no cursor returns the latest entries", func(t *testing.T) {
		l := newLog(t)
		for i := 0; i < 6; i++ {
			_, err := l.Append(ctx, "game", fmt.Sprintf("m%d", i), author)
			require.NoError(t, err)
		}

		entries, err := l.Read(ctx, ReadOptions{Topic: "game", Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"m4", "m5"}, bodies(entries))
	})

	t.Run("cursor returns the entries after it", func(t *testing.T) {
		l := newLog(t)
		var ids []int64
		for i := 0; i < 6; i++ {
			e, err := l.Append(ctx, "game", fmt.Sprintf("m%d", i), author)
			require.NoError(t, err)
			ids = append(ids, e.ID)
		}

		entries, err := l.Read(ctx, ReadOptions{Topic: "game", SinceID: ids[1], Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"m2", "m3"}, bodies(entries))

		entries, err = l.Read(ctx, ReadOptions{Topic: "game", SinceID: ids[5]})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("cursor reader sees every concurrent append", func(t *testing.T) {
		l := newLog(t)
		const writers, perWriter = 4, 25

		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					_, err := l.Append(ctx, "game", fmt.Sprintf("w%d-%d", w, i), author)
					assert.NoError(t, err)
				}
			}(w)
		}
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		seen := make(map[string]bool)
		var cursor int64
		read := func() {
			entries, err := l.Read(ctx, ReadOptions{Topic: "game", SinceID: cursor, Limit: 1000})
			require.NoError(t, err)
			for _, e := range entries {
				seen[e.Body] = true
				cursor = e.ID
			}
		}
		for {
			select {
			case <-done:
				read()
				assert.Len(t, seen, writers*perWriter)
				return
			default:
				read()
			}
		}
	})

	t.Run("empty topic is rejected", func(t *testing.T) {
		l := newLog(t)
		_, err := l.Append(ctx, "", "x", author)
		assert.True(t, IsInvalidTopic(err))
		_, err = l.Read(ctx, ReadOptions{Topic: " "})
		assert.True(t, IsInvalidTopic(err))
	})
}

func bodies(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Body)
	}
	return out
}

func TestInMemoryLog(t *testing.T) {
	testLog(t, func(t *testing.T) Log {
		return NewInMemoryLog()
	})
}

func TestInMemoryLog_Closed(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryLog()
	require.NoError(t, l.Close(ctx))

	_, err := l.Append(ctx, "game", "x", Author{})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = l.Read(ctx, ReadOptions{Topic: "game"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSQLiteLog(t *testing.T) {
	testLog(t, func(t *testing.T) Log {
		l, err := NewSQLiteLog(context.Background(), filepath.Join(t.TempDir(), "events.db"))
		require.NoError(t, err)
		t.Cleanup(func() { l.Close(context.Background()) })
		return l
	})
}

// TestPostgresLog runs against the database in OVERLORD_TEST_DATABASE_URL.
// Every subtest truncates the events table.
func TestPostgresLog(t *testing.T) {
	connStr := os.Getenv("OVERLORD_TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("OVERLORD_TEST_DATABASE_URL not set")
	}
	testLog(t, func(t *testing.T) Log {
		ctx := context.Background()
		l, err := NewPostgresLog(ctx, connStr)
		require.NoError(t, err)
		t.Cleanup(func() { l.Close(ctx) })
		_, err = l.pool.Exec(ctx, "TRUNCATE events")
		require.NoError(t, err)
		return l
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		connStr string
		wantErr bool
	}{
		{name: "memory", connStr: "memory://"},
		{name: "sqlite", connStr: "sqlite://" + filepath.Join(t.TempDir(), "open.db")},
		{name: "unknown scheme", connStr: "redis://localhost", wantErr: true},
		{name: "sqlite without path", connStr: "sqlite://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Open(ctx, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, l.Close(ctx))
		})
	}
}
