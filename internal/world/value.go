// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"encoding/json"
	"strconv"

	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// ValueKind tags the concrete type held by a Value.
type ValueKind string

// Value kinds.
const (
	ValueText   ValueKind = "text"
	ValueNumber ValueKind = "number"
	ValueBool   ValueKind = "bool"
	ValueJSON   ValueKind = "json"
)

// Value is a tagged union of the field types an entity or location can
// carry. Exactly one payload is meaningful, selected by Kind. The zero
// Value is invalid; construct through the Text/Number/Bool/JSON helpers
// or DecodeColumns.
type Value struct {
	Kind ValueKind

	text   string
	number float64
	boolv  bool
	raw    json.RawMessage
}

// Text builds a text value.
func Text(s string) Value { return Value{Kind: ValueText, text: s} }

// Number builds a numeric value.
func Number(f float64) Value { return Value{Kind: ValueNumber, number: f} }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{Kind: ValueBool, boolv: b} }

// JSON builds a structured value from raw JSON.
func JSON(raw json.RawMessage) Value {
	return Value{Kind: ValueJSON, raw: append(json.RawMessage(nil), raw...)}
}

// Text returns the text payload. Valid only when Kind is ValueText.
func (v Value) Text() string { return v.text }

// Number returns the numeric payload. Valid only when Kind is ValueNumber.
func (v Value) Number() float64 { return v.number }

// Bool returns the boolean payload. Valid only when Kind is ValueBool.
func (v Value) Bool() bool { return v.boolv }

// JSON returns the raw JSON payload. Valid only when Kind is ValueJSON.
func (v Value) JSON() json.RawMessage { return v.raw }

// Validate checks that the value carries a known kind.
func (v Value) Validate() error {
	switch v.Kind {
	case ValueText, ValueNumber, ValueBool, ValueJSON:
		return nil
	default:
		return oops.Code(access.CodeInvalidRequest).
			With("kind", string(v.Kind)).
			Wrapf(ErrInvalidRequest, "unknown value kind")
	}
}

// Equal reports whether two values are the same kind and payload. JSON
// payloads compare byte-for-byte.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueText:
		return v.text == o.text
	case ValueNumber:
		return v.number == o.number
	case ValueBool:
		return v.boolv == o.boolv
	case ValueJSON:
		return string(v.raw) == string(o.raw)
	default:
		return false
	}
}

// String renders the value for display and audit diffs.
func (v Value) String() string {
	switch v.Kind {
	case ValueText:
		return v.text
	case ValueNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.boolv)
	case ValueJSON:
		return string(v.raw)
	default:
		return ""
	}
}

// valueJSON is the wire form of a Value.
type valueJSON struct {
	Kind   ValueKind       `json:"kind"`
	Text   *string         `json:"text,omitempty"`
	Number *float64        `json:"number,omitempty"`
	Bool   *bool           `json:"bool,omitempty"`
	JSON   json.RawMessage `json:"json,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	w := valueJSON{Kind: v.Kind}
	switch v.Kind {
	case ValueText:
		w.Text = &v.text
	case ValueNumber:
		w.Number = &v.number
	case ValueBool:
		w.Bool = &v.boolv
	case ValueJSON:
		w.JSON = v.raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w valueJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return oops.Wrapf(err, "decode value")
	}
	decoded := Value{Kind: w.Kind}
	switch w.Kind {
	case ValueText:
		if w.Text == nil {
			return oops.Errorf("text value missing payload")
		}
		decoded.text = *w.Text
	case ValueNumber:
		if w.Number == nil {
			return oops.Errorf("number value missing payload")
		}
		decoded.number = *w.Number
	case ValueBool:
		if w.Bool == nil {
			return oops.Errorf("bool value missing payload")
		}
		decoded.boolv = *w.Bool
	case ValueJSON:
		decoded.raw = append(json.RawMessage(nil), w.JSON...)
	default:
		return oops.Errorf("unknown value kind %q", w.Kind)
	}
	*v = decoded
	return nil
}

// DecodeColumns decodes a value stored across parallel nullable columns.
// Precedence is explicit: text, then number, then bool, then JSON — the
// first non-null column wins and any later non-null columns are ignored.
// All-null yields ok=false, meaning the field holds no value.
func DecodeColumns(text *string, number *float64, boolean *bool, raw []byte) (Value, bool) {
	switch {
	case text != nil:
		return Text(*text), true
	case number != nil:
		return Number(*number), true
	case boolean != nil:
		return Bool(*boolean), true
	case raw != nil:
		return JSON(raw), true
	default:
		return Value{}, false
	}
}

// Columns splits the value back into the parallel nullable columns used
// by storage. Exactly one return is non-nil.
func (v Value) Columns() (text *string, number *float64, boolean *bool, raw []byte) {
	switch v.Kind {
	case ValueText:
		text = &v.text
	case ValueNumber:
		number = &v.number
	case ValueBool:
		boolean = &v.boolv
	case ValueJSON:
		raw = v.raw
	}
	return text, number, boolean, raw
}
