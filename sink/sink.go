package sink

import (
	"context"

	"messenger/contract"
)

// Listener bridges a publisher to one client connection through a
// buffered channel. The connection's write loop drains Events; the
// publisher pushes into it under its delivery deadline.
type Listener struct {
	Events chan contract.PropertyEvent
}

func NewListener(bufferSize int) *Listener {
	return &Listener{Events: make(chan contract.PropertyEvent, bufferSize)}
}

// OnPropertyChanged is called by the publisher fan-out. It hands the
// event to the owning connection, or reports the deadline error when the
// buffer stays full until the delivery context expires.
func (s *Listener) OnPropertyChanged(ctx context.Context, evt contract.PropertyEvent) error {
	select {
	case s.Events <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
