package model

import (
	"encoding/json"
	"fmt"
)

// scalarJSON is the sidecar wire form of a Value: {"type": ..., "value": ...}.
type scalarJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value in its sidecar form.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("model: marshal of invalid value")
	}
	var payload any
	switch {
	case v.kind == String:
		payload = v.str
	case v.kind == Bool:
		payload = v.bits != 0
	case v.kind.IsSigned():
		payload = v.Int()
	case v.kind.IsUnsigned():
		payload = v.bits
	default:
		payload = v.Float()
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(scalarJSON{Type: v.kind.String(), Value: raw})
}

// UnmarshalJSON decodes a value from its sidecar form.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s scalarJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, err := ParseKind(s.Type)
	if err != nil {
		return err
	}
	switch {
	case kind == String:
		var x string
		if err := json.Unmarshal(s.Value, &x); err != nil {
			return err
		}
		*v = StringValue(x)
	case kind == Bool:
		var x bool
		if err := json.Unmarshal(s.Value, &x); err != nil {
			return err
		}
		*v = BoolValue(x)
	case kind.IsSigned():
		var x int64
		if err := json.Unmarshal(s.Value, &x); err != nil {
			return err
		}
		*v = IntValue(kind, x)
	case kind.IsUnsigned():
		var x uint64
		if err := json.Unmarshal(s.Value, &x); err != nil {
			return err
		}
		*v = UintValue(kind, x)
	default:
		var x float64
		if err := json.Unmarshal(s.Value, &x); err != nil {
			return err
		}
		*v = FloatValue(kind, x)
	}
	return nil
}
