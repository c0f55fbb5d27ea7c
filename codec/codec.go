// Package codec defines the shared contract concrete wire codecs
// (jsonlines, msgpack) implement: framing a stream of typed messages to
// and from an underlying byte stream.
//
// Unlike the original Rust crate's tokio_util::codec::{Encoder,Decoder}
// traits, whose Decode returns Option<Item> to signal "need more bytes",
// Go's bufio.Reader already blocks internally until a full frame is
// available. Decode therefore simply blocks (or returns an error) rather
// than returning a partial-decode sentinel — a faithful idiomatic
// adaptation documented in DESIGN.md, not a change to the contract as
// observed by callers.
package codec

import (
	"bufio"
	"io"

	"github.com/crackcomm/net3/message"
)

// Codec frames messages of type M to and from bytes.
type Codec[M message.Message[M]] interface {
	// Encode writes one message's wire form to w.
	Encode(w io.Writer, msg M) error
	// Decode reads and decodes one message from r, blocking until a
	// full frame is available.
	Decode(r *bufio.Reader) (M, error)
}
