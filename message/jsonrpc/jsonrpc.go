// Package jsonrpc implements the JSON-RPC 2.0 message coding, including
// the kind-inference rules from field presence (ResolveKind) and the
// Stratum-style tolerance of a `method` field alongside `result`.
//
// Grounded on proto/jsonrpc/src/{message,error,code,params}.rs in the
// original crackcomm/net3 workspace.
package jsonrpc

import (
	"encoding/json"

	"github.com/crackcomm/net3/message"
)

// Message is the JSON-RPC 2.0 wire envelope. Its Kind is not stored; it
// is computed on demand by ResolveKind from field presence.
type Message struct {
	Version     string          `json:"-"`
	IDField     message.ID      `json:"-"`
	MethodField *string         `json:"-"`
	ParamsField json.RawMessage `json:"-"`
	ResultField json.RawMessage `json:"-"`
	ErrorField  *wireError      `json:"-"`
}

// wireError is the JSON-RPC 2.0 error object.
type wireError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

var _ message.Message[Message] = Message{}

// wireMessage is Message's on-the-wire shape.
type wireMessage struct {
	Version string          `json:"jsonrpc"`
	ID      *message.ID     `json:"id,omitempty"`
	Method  *string         `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	version := m.Version
	if version == "" {
		version = "2.0"
	}
	w := wireMessage{
		Version: version,
		Method:  m.MethodField,
		Params:  m.ParamsField,
		Result:  m.ResultField,
		Error:   m.ErrorField,
	}
	if m.IDField.IsSome() {
		id := m.IDField
		w.ID = &id
	}
	return json.Marshal(w)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Version = w.Version
	m.MethodField = w.Method
	m.ParamsField = w.Params
	m.ResultField = w.Result
	m.ErrorField = w.Error
	if w.ID != nil {
		m.IDField = *w.ID
	} else {
		m.IDField = message.NullID
	}
	return nil
}

func (m Message) ID() message.ID { return m.IDField }

// Method implements message.Message[Message].
func (m Message) Method() (string, bool) {
	if m.MethodField == nil {
		return "", false
	}
	return *m.MethodField, true
}

// Kind resolves the logical message kind from field presence, per the
// table in SPEC_FULL.md §7.2 / spec.md §4.2.
func (m Message) Kind() message.Kind {
	return ResolveKind(m)
}

// ResolveKind implements the JSON-RPC kind-inference table. Exported
// standalone so callers (and tests) can reason about it without an
// instance in hand.
func ResolveKind(m Message) message.Kind {
	if m.IDField.IsSome() {
		if m.ErrorField == nil {
			if len(m.ResultField) > 0 || m.MethodField == nil {
				return message.Response
			}
			return message.Request
		}
		if len(m.ResultField) == 0 {
			return message.ErrorResponse
		}
		return message.Undefined
	}
	if m.MethodField != nil && *m.MethodField != "" {
		return message.Event
	}
	return message.Undefined
}

func (m Message) ErrorKind() (message.ErrorKind, bool) {
	if m.ErrorField == nil {
		return message.ErrorKind{}, false
	}
	return message.FromCode(m.ErrorField.Code), true
}

func (m Message) Description() (string, bool) {
	if m.ErrorField == nil {
		return "", false
	}
	return m.ErrorField.Message, true
}

func (m Message) IntoError() (message.Error, bool) {
	if m.ErrorField == nil {
		return message.Error{}, false
	}
	msg := m.ErrorField.Message
	return message.NewError(message.FromCode(m.ErrorField.Code), &msg), true
}

// ReadOptional returns params when present, else result, matching
// message.rs's traits::Read impl (params preferred over result).
func (m Message) ReadOptional() (json.RawMessage, bool) {
	if len(m.ParamsField) > 0 {
		return m.ParamsField, true
	}
	if len(m.ResultField) > 0 {
		return m.ResultField, true
	}
	return nil, false
}

func (m Message) WithID(id message.ID) Message {
	m.IDField = id
	return m
}

func (m Message) WithEventName(name string) Message {
	m.IDField = message.NullID
	m.MethodField = &name
	return m
}

func (m Message) WithMethodName(method string) Message {
	m.MethodField = &method
	return m
}

// WithData writes result when method is absent, else params — matching
// message.rs's set_data: a message already shaped as a Request (method
// set) gets its params, a bare or response-shaped message gets its
// result.
func (m Message) WithData(data any) (Message, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return m, err
	}
	if m.MethodField == nil {
		m.ResultField = json.RawMessage(encoded)
	} else {
		m.ParamsField = json.RawMessage(encoded)
	}
	return m, nil
}

// WithResponseKind is a no-op: JSON-RPC infers Response from field
// presence (an id with no method and no error already resolves to
// Response via ResolveKind), so there is no explicit kind to set.
func (m Message) WithResponseKind() Message {
	return m
}

func (m Message) WithError(err message.Error) Message {
	description := err.Kind.Description()
	if err.Description != nil {
		description = *err.Description
	}
	m.ErrorField = &wireError{Code: err.Kind.Code(), Message: description}
	m.MethodField = nil
	m.ResultField = nil
	m.ParamsField = nil
	return m
}

func (m Message) New() Message { return Message{Version: "2.0"} }
