package workers

import (
	"context"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventbus"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
)

// DefaultPostBufferSize is the capacity of the channel feeding a PostEventWorker.
const DefaultPostBufferSize = 256

type PostEventWorker struct {
	eventBus     *eventbus.EventBus
	postRequests <-chan PostEventRequest
	done         chan struct{}
	logger       *log.Logger
}

type PostEventRequest struct {
	Event  messages.Event
	Sender types.Identity
}

type NewPostEventWorkerOptions struct {
	EventBus     *eventbus.EventBus
	PostRequests <-chan PostEventRequest
}

// NewPostEventWorker creates a new PostEventWorker.
// The worker posts events for the game loop so a slow transport never
// stalls a frame.
func NewPostEventWorker(opts NewPostEventWorkerOptions) *PostEventWorker {
	return &PostEventWorker{
		eventBus:     opts.EventBus,
		postRequests: opts.PostRequests,
		done:         make(chan struct{}),
		logger:       log.With("post-worker"),
	}
}

// Start posts requests in order until the request channel is closed or ctx
// is done. Closing the channel lets every pending request go out first.
func (w *PostEventWorker) Start(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-w.postRequests:
			if !ok {
				return
			}
			w.eventBus.PostEvent(ctx, req.Event, req.Sender)
		}
	}
}

// Done is closed once Start has returned.
func (w *PostEventWorker) Done() <-chan struct{} {
	return w.done
}

// TryPost hands a request to a worker without blocking.
// It reports false and drops the request when the buffer is full.
func TryPost(postRequests chan<- PostEventRequest, req PostEventRequest) bool {
	select {
	case postRequests <- req:
		return true
	default:
		log.Warn("Post buffer full, dropping %s event", req.Event.Type)
		return false
	}
}
