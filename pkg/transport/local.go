package transport

import (
	"context"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
)

// LocalTransport binds a user directly to an in-process log.
type LocalTransport struct {
	log  eventlog.Log
	user UserInfo
}

func NewLocalTransport(log eventlog.Log, user UserInfo) *LocalTransport {
	return &LocalTransport{
		log:  log,
		user: user,
	}
}

func (t *LocalTransport) PostEvent(ctx context.Context, req PostRequest) error {
	_, err := t.log.Append(ctx, req.Topic, req.Body, eventlog.Author{
		DisplayName: t.user.Nickname,
		PublicKeyID: t.user.PublicKeyID,
	})
	if err != nil {
		return NewErrTransport("post", err)
	}
	return nil
}

func (t *LocalTransport) ReadEvents(ctx context.Context, req ReadRequest) ([]eventlog.Entry, error) {
	entries, err := t.log.Read(ctx, eventlog.ReadOptions{
		Topic:   req.Topic,
		SinceID: req.SinceID,
		Limit:   req.Limit,
	})
	if err != nil {
		return nil, NewErrTransport("read", err)
	}
	return entries, nil
}

func (t *LocalTransport) GetUserInfo(ctx context.Context) (UserInfo, error) {
	return t.user, nil
}
