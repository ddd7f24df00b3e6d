// Package publisher implements the per-user notification bus: a registry
// of named properties with subscriber lists, pushing change events to
// every current subscriber of a property.
//
// Delivery is best effort with no guarantees regarding ordering across
// properties, durability, or retries. A listener that errors or stalls
// never blocks delivery to the remaining listeners.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"messenger/contract"
	"messenger/errors"
)

type Publisher struct {
	mu              sync.RWMutex
	log             *slog.Logger
	deliveryTimeout time.Duration
	subscribers     map[string][]contract.PropertyListener
}

func New(log *slog.Logger, deliveryTimeout time.Duration) *Publisher {
	return &Publisher{
		log:             log,
		deliveryTimeout: deliveryTimeout,
		subscribers:     make(map[string][]contract.PropertyListener),
	}
}

// RegisterProperty creates an empty subscriber list for name. Registering
// a name twice is an error, not an overwrite: overwriting would silently
// drop live subscribers.
func (p *Publisher) RegisterProperty(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.subscribers[name]; ok {
		return errors.ErrDuplicateProperty
	}
	p.subscribers[name] = nil
	return nil
}

// UnregisterProperty drops the property. Subscribers still attached are
// told the property disappeared through a RegistryUpdater announcement
// before the list is discarded.
func (p *Publisher) UnregisterProperty(name string) error {
	p.mu.Lock()
	remaining, ok := p.subscribers[name]
	if !ok {
		p.mu.Unlock()
		return errors.ErrUnknownProperty
	}
	delete(p.subscribers, name)
	p.mu.Unlock()

	if len(remaining) > 0 {
		p.deliver(remaining, contract.PropertyEvent{
			Property: RegistryUpdater,
			NewValue: Removed(name),
		})
	}
	return nil
}

// Subscribe attaches listener to the subscriber list of property.
// Subscribing the same listener twice is a no-op, never a duplicate
// delivery.
func (p *Publisher) Subscribe(listener contract.PropertyListener, property string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, ok := p.subscribers[property]
	if !ok {
		return errors.ErrUnknownProperty
	}
	for _, l := range current {
		if l == listener {
			return nil
		}
	}
	p.subscribers[property] = append(current, listener)
	return nil
}

// Unsubscribe removes listener from property; no-op if absent.
func (p *Publisher) Unsubscribe(listener contract.PropertyListener, property string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers[property] = without(p.subscribers[property], listener)
}

// UnsubscribeAll detaches listener from every property. Called when the
// client connection behind the listener is gone, so no dead subscription
// lingers in any list.
func (p *Publisher) UnsubscribeAll(listener contract.PropertyListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for property, listeners := range p.subscribers {
		p.subscribers[property] = without(listeners, listener)
	}
}

// DropSubscribers empties every subscriber list while keeping the
// properties registered. Used on logout: the session's callback handles
// are dead, the account's property set is not.
func (p *Publisher) DropSubscribers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for property := range p.subscribers {
		p.subscribers[property] = nil
	}
}

// Publish delivers (property, oldValue, newValue) to every currently
// subscribed listener of property. Publishing on an unregistered
// property is dropped with a warning: it is a programming error on the
// publishing side, not something a subscriber can recover from.
func (p *Publisher) Publish(property string, oldValue, newValue any) {
	p.mu.RLock()
	current, ok := p.subscribers[property]
	listeners := make([]contract.PropertyListener, len(current))
	copy(listeners, current)
	p.mu.RUnlock()

	if !ok {
		p.log.Warn("publish on unregistered property", "property", property)
		return
	}
	p.deliver(listeners, contract.PropertyEvent{
		Property: property,
		OldValue: oldValue,
		NewValue: newValue,
	})
}

// Properties returns the registered property names, used by clients to
// discover what to subscribe to.
func (p *Publisher) Properties() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.subscribers))
	for name := range p.subscribers {
		names = append(names, name)
	}
	return names
}

// deliver pushes one event to each listener under its own deadline.
// A broken or stalled listener is logged and skipped so it can't block
// a live chat.
func (p *Publisher) deliver(listeners []contract.PropertyListener, evt contract.PropertyEvent) {
	for _, listener := range listeners {
		ctx, cancel := context.WithTimeout(context.Background(), p.deliveryTimeout)
		if err := listener.OnPropertyChanged(ctx, evt); err != nil {
			p.log.Debug("listener delivery failed",
				"property", evt.Property,
				"error", err)
		}
		cancel()
	}
}

func without(listeners []contract.PropertyListener, listener contract.PropertyListener) []contract.PropertyListener {
	for i, l := range listeners {
		if l == listener {
			return append(listeners[:i:i], listeners[i+1:]...)
		}
	}
	return listeners
}
