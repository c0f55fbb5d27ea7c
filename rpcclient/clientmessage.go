package rpcclient

import "github.com/crackcomm/net3/message"

type clientMessageKind int

const (
	cmRequest clientMessageKind = iota
	cmCancel
	cmClose
)

// clientMessage is the mailbox's tagged-union item, mirroring
// handler.rs's internal::ClientMessage<M>.
type clientMessage[M any] struct {
	kind  clientMessageKind
	id    message.ID
	msg   M
	reply chan<- reply[M]
}

// reply is what a pending request's reply slot receives: the matching
// message, an RPC error decoded from an ErrorResponse, or a reset
// (delivered when the loop instance owning the pending-map exits).
type reply[M any] struct {
	msg   M
	err   *message.Error
	reset bool
}
