package rpcclient

import (
	"sync"
	"sync/atomic"
)

// mailbox is an unbounded FIFO of items of type T, backed by a single
// pump goroutine holding a growable slice buffer. It stands in for the
// original's `UnboundedSender`/`UnboundedReceiver` pair: Send never
// blocks on queue capacity (only momentarily on the pump goroutine
// scheduling), and Close drains whatever is already queued before the
// output channel closes — matching "idle AND zero owned handles" exit
// semantics rather than dropping queued work on close.
//
// Unlike the original's receiver, a Go channel is already a shared
// reference type, so the mailbox itself (not a separate ClonedReceiver
// wrapper) is what persists across reconnects: the reconnect supervisor
// simply hands the same *mailbox to each successive loop instance. The
// owned flag below is the runtime guard SPEC_FULL.md §5 describes,
// proving only one loop instance ever drains it at a time.
type mailbox[T any] struct {
	in       chan T
	out      chan T
	closeVal sync.Once
	owned    atomic.Bool
}

func newMailbox[T any]() *mailbox[T] {
	m := &mailbox[T]{
		in:  make(chan T),
		out: make(chan T),
	}
	go m.pump()
	return m
}

func (m *mailbox[T]) pump() {
	var queue []T
	for {
		if len(queue) == 0 {
			item, ok := <-m.in
			if !ok {
				close(m.out)
				return
			}
			queue = append(queue, item)
			continue
		}
		select {
		case item, ok := <-m.in:
			if !ok {
				// Drain whatever is left before closing out, so
				// already-queued work is never dropped on close.
				for _, q := range queue {
					m.out <- q
				}
				close(m.out)
				return
			}
			queue = append(queue, item)
		case m.out <- queue[0]:
			queue = queue[1:]
		}
	}
}

// Send enqueues an item. Returns ErrConnectionReset if the mailbox has
// already been closed.
func (m *mailbox[T]) Send(item T) (err error) {
	defer func() {
		if recover() != nil {
			err = ErrConnectionReset
		}
	}()
	m.in <- item
	return nil
}

// Close closes the mailbox's input side; already-queued items are still
// delivered before Out() closes.
func (m *mailbox[T]) Close() {
	m.closeVal.Do(func() { close(m.in) })
}

// Out returns the channel the loop drains. Acquire must be called
// before reading from it in a new loop instance.
func (m *mailbox[T]) Out() <-chan T { return m.out }

// Acquire proves single-consumer access across reconnects: it panics if
// called while a previous loop instance has not released it, which
// would indicate a programming error (concurrent polling of the
// mailbox), matching the original's documented "do NOT use this
// receiver concurrently" contract for ClonedReceiver.
func (m *mailbox[T]) Acquire() func() {
	if !m.owned.CompareAndSwap(false, true) {
		panic("rpcclient: mailbox acquired concurrently by two loop instances")
	}
	return func() { m.owned.Store(false) }
}
