package rpcclient

import (
	"encoding/json"

	"github.com/crackcomm/net3/message"
)

// Notifications is a typed-dispatch registry: callers register a
// callback per method name, and NotificationHandler routes each inbound
// Event message to the matching callback (or silently drops it if no
// callback is registered for its name).
//
// Grounded on rpc/client/src/notifications.rs's NotificationHandler,
// adapted from the original's single UnboundedSender<T> fan-out (which
// required every notification to decode to the same T) to a name-keyed
// map of decoders, since this framework's Event messages carry a method
// name rather than a single uniform shape.
type Notifications[M message.Message[M]] struct {
	handlers map[string]func(M) error
}

// NewNotifications returns an empty registry.
func NewNotifications[M message.Message[M]]() *Notifications[M] {
	return &Notifications[M]{handlers: make(map[string]func(M) error)}
}

// On registers callback for method, decoding the message's payload into
// P before invoking fn. Overwrites any previous registration for the
// same name.
func On[M message.Message[M], P any](n *Notifications[M], method string, fn func(P) error) {
	n.handlers[method] = func(msg M) error {
		var params P
		if raw, ok := msg.ReadOptional(); ok {
			if err := json.Unmarshal(raw, &params); err != nil {
				return err
			}
		}
		return fn(params)
	}
}

// OnRaw registers a callback that receives the raw message, skipping
// payload decoding — useful when the handler wants the method name or
// id alongside the data.
func (n *Notifications[M]) OnRaw(method string, fn func(M) error) {
	n.handlers[method] = fn
}

// Dispatch runs the callback registered for msg's method name, if any.
// Returns false if there was no registration for that name.
func (n *Notifications[M]) Dispatch(msg M) (bool, error) {
	method, ok := msg.Method()
	if !ok {
		return false, nil
	}
	fn, ok := n.handlers[method]
	if !ok {
		return false, nil
	}
	return true, fn(msg)
}

// NotificationHandler adapts a Notifications registry into a
// UserHandler, ignoring requests and internal events — the Go
// counterpart of notifications.rs's NotificationHandler, generalized to
// multi-method dispatch via Notifications instead of a single channel.
type NotificationHandler[M message.Message[M], E any] struct {
	Notifications *Notifications[M]
}

// HandleNotification implements UserHandler.
func (h NotificationHandler[M, E]) HandleNotification(msg M) ([]M, error) {
	_, err := h.Notifications.Dispatch(msg)
	return nil, err
}

// HandleRequest implements UserHandler.
func (h NotificationHandler[M, E]) HandleRequest(M) ([]M, error) { return nil, nil }

// HandleInternalEvent implements UserHandler.
func (h NotificationHandler[M, E]) HandleInternalEvent(E) ([]M, error) { return nil, nil }
