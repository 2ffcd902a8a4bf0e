package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/rangetrk/pkg/framework"
)

// Hub is the device side of many accepted connections.
// Commands from any of them are posted into the loop, events are
// broadcast to all of them.
type Hub struct {
	pipes map[*Pipe]struct{}
	lock  sync.Mutex
}

// Serve runs a Pipe over rw until it's closed or ctx is done.
// ctx must come from a Runnable of the device loop.
func (h *Hub) Serve(ctx context.Context, rw PacketReadWriter) error {
	pipe := NewPipe(rw)
	pipe.Handler = commandPoster(pipe)
	h.lock.Lock()
	if h.pipes == nil {
		h.pipes = make(map[*Pipe]struct{})
	}
	h.pipes[pipe] = struct{}{}
	count := len(h.pipes)
	h.lock.Unlock()
	glog.V(1).Infof("client connected, %d active", count)

	defer func() {
		h.lock.Lock()
		delete(h.pipes, pipe)
		count := len(h.pipes)
		h.lock.Unlock()
		glog.V(1).Infof("client disconnected, %d active", count)
	}()
	return pipe.Run(ctx)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.pipes)
}

// SendEvent implements Registrar.
func (h *Hub) SendEvent(ctx context.Context, msg fx.Message) error {
	h.lock.Lock()
	pipes := make([]*Pipe, 0, len(h.pipes))
	for pipe := range h.pipes {
		pipes = append(pipes, pipe)
	}
	h.lock.Unlock()
	var errs fx.AggregatedError
	for _, pipe := range pipes {
		errs.Add(pipe.SendEventMsg(msg))
	}
	return errs.Aggregate()
}
