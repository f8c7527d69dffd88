package transport

import (
	"context"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
)

// Headers carrying the caller identity to the log host.
const (
	HeaderNickname  = "X-Axon-Nickname"
	HeaderPublicKey = "X-Axon-Pubkey"
)

type PostRequest struct {
	Topic string `json:"-"`
	Body  string `json:"body"`
}

type PostResponse struct {
	ID int64 `json:"id"`
}

type ReadRequest struct {
	Topic   string
	SinceID int64
	Limit   int
}

type ReadResponse struct {
	Entries []eventlog.Entry `json:"entries"`
}

type UserInfo struct {
	Nickname    string `json:"nickname"`
	PublicKeyID string `json:"publicKeyId"`
}

// Identity returns the participant identity for this user.
func (u UserInfo) Identity() types.Identity {
	return types.Identity{
		DisplayName: u.Nickname,
		PublicKeyID: u.PublicKeyID,
	}
}

// Transport is the host-provided access to the shared log.
type Transport interface {
	PostEvent(ctx context.Context, req PostRequest) error
	ReadEvents(ctx context.Context, req ReadRequest) ([]eventlog.Entry, error)
	GetUserInfo(ctx context.Context) (UserInfo, error)
}
