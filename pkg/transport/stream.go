package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type StreamOptions struct {
	BaseURL     string
	Topic       string
	SinceID     int64
	Nickname    string
	PublicKeyID string
}

// StreamURL converts an http(s) base URL to the websocket stream endpoint.
func StreamURL(baseURL, topic string, sinceID int64) string {
	wsURL := baseURL
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}
	wsURL = fmt.Sprintf("%s/api/topics/%s/stream", wsURL, url.PathEscape(topic))
	if sinceID > 0 {
		wsURL += "?since=" + strconv.FormatInt(sinceID, 10)
	}
	return wsURL
}

// Stream subscribes to a topic and calls handler for every entry until ctx is done.
func Stream(ctx context.Context, opts StreamOptions, handler func(eventlog.Entry)) error {
	header := http.Header{}
	header.Set(HeaderNickname, opts.Nickname)
	header.Set(HeaderPublicKey, opts.PublicKeyID)

	addr := StreamURL(opts.BaseURL, opts.Topic, opts.SinceID)
	log.Info("Connecting to stream at %s", addr)
	conn, _, err := websocket.Dial(ctx, addr, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return NewErrTransport("stream", fmt.Errorf("failed to connect to server: %v", err))
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var entry eventlog.Entry
		if err := wsjson.Read(ctx, conn, &entry); err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return NewErrTransport("stream", err)
		}
		handler(entry)
	}
}
