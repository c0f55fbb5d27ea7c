// Package jsonlines implements the newline-delimited JSON codec: each
// message is encoded as its JSON form followed by a single '\n'.
//
// Grounded on codec/json-lines/src/lib.rs (LinesCodec + serde_json) in
// the original crackcomm/net3 workspace, and on the teacher's
// bufio.Reader-over-io.Reader framing style in
// internal/lsp/jsonrpc.go's Transport.
package jsonlines

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/crackcomm/net3/message"
)

// Codec is the newline-delimited JSON codec for message type M.
type Codec[M message.Message[M]] struct{}

// New returns a ready-to-use jsonlines codec.
func New[M message.Message[M]]() Codec[M] {
	return Codec[M]{}
}

// Encode writes msg as a single line of JSON followed by '\n'.
func (Codec[M]) Encode(w io.Writer, msg M) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("jsonlines: encode: %w", err)
	}
	body = append(body, '\n')
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("jsonlines: write: %w", err)
	}
	return nil
}

// Decode reads one line from r and JSON-decodes it. Blocks until a full
// line (or EOF/error) is available, which is the idiomatic Go
// equivalent of LinesCodec's buffered partial-decode behavior.
func (Codec[M]) Decode(r *bufio.Reader) (M, error) {
	var zero M
	line, err := r.ReadString('\n')
	if err != nil {
		// A final line with no trailing newline is still a decodable
		// frame if it has content; only a truly empty read is an error
		// propagated as-is (typically io.EOF).
		if len(line) == 0 {
			return zero, err
		}
	}
	var msg M
	if unmarshalErr := json.Unmarshal([]byte(line), &msg); unmarshalErr != nil {
		return zero, fmt.Errorf("jsonlines: decode: %w", unmarshalErr)
	}
	return msg, nil
}
