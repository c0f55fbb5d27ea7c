// Package compact implements the compact internal message coding: a flat
// envelope of kind, id, name, error kind, description, and an opaque
// JSON payload string. This is the sole Compact shape carried over from
// the original crackcomm/net3 workspace's message/src/compact.rs — the
// only Compact implementation that crate ever had, and the shape this
// module adopts as canonical (see SPEC_FULL.md §12 and DESIGN.md).
package compact

import (
	"bytes"
	"encoding/json"

	"github.com/crackcomm/net3/message"
)

// Message is the compact wire envelope. Unknown fields are not
// tolerated on decode; absent optional fields are omitted on encode.
type Message struct {
	KindField        message.Kind       `json:"-"`
	ErrorField       *message.ErrorKind `json:"-"`
	IDField          message.ID         `json:"-"`
	NameField        *string            `json:"-"`
	DescriptionField *string            `json:"-"`
	DataField        *string            `json:"-"`
}

var _ message.Message[Message] = Message{}

// wireMessage mirrors Message's fields for JSON marshaling, omitting
// the id entirely when it is Null, matching compact.rs's
// `skip_serializing_if = "types::Id::is_none"`.
type wireMessage struct {
	Kind        message.Kind       `json:"kind"`
	Error       *message.ErrorKind `json:"error,omitempty"`
	ID          *message.ID        `json:"id,omitempty"`
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Data        *string            `json:"data,omitempty"`
}

// MarshalJSON encodes the compact envelope, omitting a Null id
// entirely rather than emitting a literal JSON null.
func (m Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{
		Kind:        m.KindField,
		Error:       m.ErrorField,
		Name:        m.NameField,
		Description: m.DescriptionField,
		Data:        m.DataField,
	}
	if m.IDField.IsSome() {
		id := m.IDField
		w.ID = &id
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the compact envelope; an absent id decodes to
// Null.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return err
	}
	m.KindField = w.Kind
	m.ErrorField = w.Error
	m.NameField = w.Name
	m.DescriptionField = w.Description
	m.DataField = w.Data
	if w.ID != nil {
		m.IDField = *w.ID
	} else {
		m.IDField = message.NullID
	}
	return nil
}

// Builder is the shared generic builder parameterized over Message.
var Builder = message.NewBuilder[Message]()

func (m Message) ID() message.ID { return m.IDField }

func (m Message) Method() (string, bool) {
	if m.NameField == nil {
		return "", false
	}
	return *m.NameField, true
}

func (m Message) Kind() message.Kind { return m.KindField }

func (m Message) ErrorKind() (message.ErrorKind, bool) {
	if m.ErrorField == nil {
		return message.ErrorKind{}, false
	}
	return *m.ErrorField, true
}

func (m Message) Description() (string, bool) {
	if m.DescriptionField == nil {
		return "", false
	}
	return *m.DescriptionField, true
}

func (m Message) IntoError() (message.Error, bool) {
	if m.ErrorField == nil {
		return message.Error{}, false
	}
	return message.NewError(*m.ErrorField, m.DescriptionField), true
}

func (m Message) ReadOptional() (json.RawMessage, bool) {
	if m.DataField == nil {
		return nil, false
	}
	return json.RawMessage(*m.DataField), true
}

func (m Message) WithID(id message.ID) Message {
	m.IDField = id
	return m
}

func (m Message) WithEventName(name string) Message {
	m.KindField = message.Event
	m.NameField = &name
	return m
}

func (m Message) WithMethodName(method string) Message {
	m.KindField = message.Request
	m.NameField = &method
	return m
}

func (m Message) WithData(data any) (Message, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return m, err
	}
	raw := string(encoded)
	m.DataField = &raw
	return m, nil
}

func (m Message) WithResponseKind() Message {
	m.KindField = message.Response
	return m
}

func (m Message) WithError(err message.Error) Message {
	m.KindField = message.ErrorResponse
	kind := err.Kind
	m.ErrorField = &kind
	m.DescriptionField = err.Description
	return m
}

func (m Message) New() Message { return Message{} }
