package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPTransport talks to a log host over its HTTP API.
type HTTPTransport struct {
	baseURL string
	user    UserInfo
	client  *http.Client
}

type NewHTTPTransportOptions struct {
	BaseURL     string
	Nickname    string
	PublicKeyID string
	// Client defaults to an http.Client with a 10s timeout
	Client *http.Client
}

func NewHTTPTransport(opts NewHTTPTransportOptions) *HTTPTransport {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPTransport{
		baseURL: opts.BaseURL,
		user: UserInfo{
			Nickname:    opts.Nickname,
			PublicKeyID: opts.PublicKeyID,
		},
		client: client,
	}
}

func (t *HTTPTransport) eventsURL(topic string) string {
	return fmt.Sprintf("%s/api/topics/%s/events", t.baseURL, url.PathEscape(topic))
}

func (t *HTTPTransport) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set(HeaderNickname, t.user.Nickname)
	req.Header.Set(HeaderPublicKey, t.user.PublicKeyID)
	return req, nil
}

func (t *HTTPTransport) PostEvent(ctx context.Context, postReq PostRequest) error {
	b, err := json.Marshal(postReq)
	if err != nil {
		return NewErrTransport("post", fmt.Errorf("failed to marshal request: %v", err))
	}
	req, err := t.newRequest(ctx, http.MethodPost, t.eventsURL(postReq.Topic), bytes.NewReader(b))
	if err != nil {
		return NewErrTransport("post", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return NewErrTransport("post", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return NewErrTransport("post", statusError(resp))
	}
	return nil
}

func (t *HTTPTransport) ReadEvents(ctx context.Context, readReq ReadRequest) ([]eventlog.Entry, error) {
	q := url.Values{}
	if readReq.SinceID > 0 {
		q.Set("since", strconv.FormatInt(readReq.SinceID, 10))
	}
	if readReq.Limit > 0 {
		q.Set("limit", strconv.Itoa(readReq.Limit))
	}
	u := t.eventsURL(readReq.Topic)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := t.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, NewErrTransport("read", err)
	}
	req.Header.Set("Accept-Encoding", "zstd")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, NewErrTransport("read", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, NewErrTransport("read", statusError(resp))
	}

	var b []byte
	if resp.Header.Get("Content-Encoding") == "zstd" {
		b, err = messages.Decompress(resp.Body)
	} else {
		b, err = io.ReadAll(resp.Body)
	}
	if err != nil {
		return nil, NewErrTransport("read", err)
	}

	readResp := ReadResponse{}
	if err := json.Unmarshal(b, &readResp); err != nil {
		return nil, NewErrTransport("read", fmt.Errorf("failed to unmarshal response: %v", err))
	}
	return readResp.Entries, nil
}

func (t *HTTPTransport) GetUserInfo(ctx context.Context) (UserInfo, error) {
	req, err := t.newRequest(ctx, http.MethodGet, t.baseURL+"/api/me", nil)
	if err != nil {
		return UserInfo{}, NewErrTransport("user info", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return UserInfo{}, NewErrTransport("user info", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return UserInfo{}, NewErrTransport("user info", statusError(resp))
	}

	user := UserInfo{}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return UserInfo{}, NewErrTransport("user info", fmt.Errorf("failed to decode response: %v", err))
	}
	return user, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
}
