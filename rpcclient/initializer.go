package rpcclient

import "github.com/crackcomm/net3/message"

// Initializer runs once per connection against a fresh Handle — e.g.
// authentication, subscribing to a channel. In a one-shot Start an error
// aborts the connection with that error; under the reconnect supervisor
// an error closes the current connection, which is then redialed.
//
// Grounded on the `initializers` field threaded through
// rpc/client/src/builder.rs's Builder.
type Initializer[M message.Message[M], E any] func(h Handle[M, E]) error

// HandlerBuilder builds a fresh UserHandler for each connection. It
// receives the connection's Handle so the handler can capture it for
// later use (e.g. to emit internal events).
//
// Grounded on rpc/client/src/traits.rs's `Initializer`/handler-builder
// role, generalized from the derive-macro stubs the original generated.
type HandlerBuilder[M message.Message[M], E any] interface {
	Build(h Handle[M, E]) (UserHandler[M, E], error)
}

// HandlerBuilderFunc adapts a function to a HandlerBuilder.
type HandlerBuilderFunc[M message.Message[M], E any] func(h Handle[M, E]) (UserHandler[M, E], error)

// Build implements HandlerBuilder.
func (f HandlerBuilderFunc[M, E]) Build(h Handle[M, E]) (UserHandler[M, E], error) { return f(h) }
