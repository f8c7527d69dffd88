package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/api/middleware"
	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
	"github.com/achgulp/axon-bbs-sub000/pkg/transport"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	// MaxBodySize bounds a posted event
	MaxBodySize = 64 << 10
	// MaxReadLimit bounds the limit a reader may ask for
	MaxReadLimit = 500
)

func HandlePostEvent(l eventlog.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}

		req := transport.PostRequest{}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Body == "" {
			http.Error(w, "Body must not be empty", http.StatusBadRequest)
			return
		}

		entry, err := l.Append(r.Context(), mux.Vars(r)["topic"], req.Body, eventlog.Author{
			DisplayName: user.Nickname,
			PublicKeyID: user.PublicKeyID,
		})
		if err != nil {
			writeLogError(w, "append", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(transport.PostResponse{ID: entry.ID}); err != nil {
			log.Error("failed to encode post response: %v", err)
		}
	}
}

func HandleReadEvents(l eventlog.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := readOptions(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		entries, err := l.Read(r.Context(), opts)
		if err != nil {
			writeLogError(w, "read", err)
			return
		}

		b, err := json.Marshal(transport.ReadResponse{Entries: entries})
		if err != nil {
			log.Error("failed to marshal entries: %v", err)
			http.Error(w, "Failed to marshal entries", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if acceptsZstd(r) {
			compressed, err := messages.Compress(b)
			if err != nil {
				log.Error("failed to compress entries: %v", err)
				http.Error(w, "Failed to compress entries", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Encoding", "zstd")
			b = compressed
		}
		if _, err := w.Write(b); err != nil {
			log.Error("failed to write entries: %v", err)
		}
	}
}

func HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(user); err != nil {
			log.Error("failed to encode user: %v", err)
		}
	}
}

// HandleStream pushes every entry of a topic after the since cursor to a
// websocket, checking the log once per interval.
func HandleStream(l eventlog.Log, interval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := readOptions(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Error("failed to accept websocket: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "")
		// the stream is one way; CloseRead cancels ctx when the client goes away
		ctx := conn.CloseRead(r.Context())

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			entries, err := l.Read(ctx, opts)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error("failed to read stream entries: %v", err)
				conn.Close(websocket.StatusInternalError, "read failed")
				return
			}
			for _, entry := range entries {
				if err := wsjson.Write(ctx, conn, entry); err != nil {
					log.Debug("stream closed: %v", err)
					return
				}
				opts.SinceID = entry.ID
			}

			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case <-ticker.C:
			}
		}
	}
}

func readOptions(r *http.Request) (eventlog.ReadOptions, error) {
	opts := eventlog.ReadOptions{Topic: mux.Vars(r)["topic"]}
	q := r.URL.Query()
	if since := q.Get("since"); since != "" {
		id, err := strconv.ParseInt(since, 10, 64)
		if err != nil || id < 0 {
			return opts, errors.New("since must be a non-negative integer")
		}
		opts.SinceID = id
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 || n > MaxReadLimit {
			return opts, errors.New("limit must be between 1 and 500")
		}
		opts.Limit = n
	}
	return opts, nil
}

func acceptsZstd(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.TrimSpace(strings.Split(enc, ";")[0]) == "zstd" {
			return true
		}
	}
	return false
}

func writeLogError(w http.ResponseWriter, op string, err error) {
	switch {
	case eventlog.IsInvalidTopic(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, eventlog.ErrClosed):
		http.Error(w, "Log is closed", http.StatusServiceUnavailable)
	default:
		log.Error("failed to %s entries: %v", op, err)
		http.Error(w, "Failed to "+op+" entries", http.StatusInternalServerError)
	}
}
