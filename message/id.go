package message

import (
	"encoding/json"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

// idKind discriminates the three variants of ID. Go has no native sum
// types, so ID is a small tagged struct instead of Rust's enum.
type idKind int

const (
	idNull idKind = iota
	idStr
	idNum
)

// ID is a message identifier: absent (Null), a string, or a number.
//
// Str and Num are interchangeable identities for correlation purposes
// iff their stringified forms are equal — callers that need to match an
// ID against a pending request MUST compare via String(), never via the
// struct itself, since Str("5") and Num(5) are distinct Go values but
// the same logical identity.
type ID struct {
	kind idKind
	str  string
	num  uint64
}

// NullID is the empty identifier, default for Event messages.
var NullID = ID{kind: idNull}

// StrID builds a string-valued ID.
func StrID(s string) ID { return ID{kind: idStr, str: s} }

// NumID builds a numeric-valued ID.
func NumID(n uint64) ID { return ID{kind: idNum, num: n} }

// IDFromCounter builds the Str(decimal(counter)) id shape that the
// correlator uses for client-generated request ids.
func IDFromCounter(n uint64) ID { return StrID(strconv.FormatUint(n, 10)) }

// IsNone reports whether the id is Null.
func (id ID) IsNone() bool { return id.kind == idNull }

// IsSome reports whether the id is not Null.
func (id ID) IsSome() bool { return id.kind != idNull }

// String renders the id for display and correlation-map keying.
//
// Null renders as "null", matching the original's Display impl.
func (id ID) String() string {
	switch id.kind {
	case idStr:
		return id.str
	case idNum:
		return strconv.FormatUint(id.num, 10)
	default:
		return "null"
	}
}

// MarshalJSON encodes Null as JSON null, Str as a JSON string, and Num
// as a JSON number.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idStr:
		return json.Marshal(id.str)
	case idNum:
		return json.Marshal(id.num)
	default:
		return json.Marshal(nil)
	}
}

// EncodeMsgpack encodes Null as msgpack nil, Str as a string, and Num
// as a uint64.
func (id ID) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch id.kind {
	case idStr:
		return enc.EncodeString(id.str)
	case idNum:
		return enc.EncodeUint64(id.num)
	default:
		return enc.EncodeNil()
	}
}

// DecodeMsgpack accepts a msgpack string, uint, or nil.
func (id *ID) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*id = NullID
	case string:
		*id = StrID(v)
	case int8:
		*id = NumID(uint64(v))
	case int16:
		*id = NumID(uint64(v))
	case int32:
		*id = NumID(uint64(v))
	case int64:
		*id = NumID(uint64(v))
	case uint8:
		*id = NumID(uint64(v))
	case uint16:
		*id = NumID(uint64(v))
	case uint32:
		*id = NumID(uint64(v))
	case uint64:
		*id = NumID(v)
	default:
		*id = NullID
	}
	return nil
}

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = NullID
		return nil
	}
	var asNum uint64
	if err := json.Unmarshal(data, &asNum); err == nil {
		*id = NumID(asNum)
		return nil
	}
	var asStr string
	if err := json.Unmarshal(data, &asStr); err != nil {
		return err
	}
	*id = StrID(asStr)
	return nil
}
