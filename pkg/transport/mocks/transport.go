package mocks

import (
	"context"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/transport"
	"github.com/stretchr/testify/mock"
)

// Transport is a mock of transport.Transport.
type Transport struct {
	mock.Mock
}

var _ transport.Transport = (*Transport)(nil)

func (m *Transport) PostEvent(ctx context.Context, req transport.PostRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *Transport) ReadEvents(ctx context.Context, req transport.ReadRequest) ([]eventlog.Entry, error) {
	args := m.Called(ctx, req)
	entries, _ := args.Get(0).([]eventlog.Entry)
	return entries, args.Error(1)
}

func (m *Transport) GetUserInfo(ctx context.Context) (transport.UserInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(transport.UserInfo), args.Error(1)
}
