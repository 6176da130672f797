package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Quantity is a non-negative unit count that may be explicitly unknown.
// It serializes as a JSON number, or null when unknown.
type Quantity struct {
	Value float64
	Known bool
}

// KnownQuantity returns a known quantity with the given value
func KnownQuantity(v float64) Quantity {
	return Quantity{Value: v, Known: true}
}

// UnknownQuantity returns the unknown marker
func UnknownQuantity() Quantity {
	return Quantity{}
}

// Float returns the value, treating unknown as zero
func (q Quantity) Float() float64 {
	if !q.Known {
		return 0
	}
	return q.Value
}

// IsZero reports whether the quantity is unknown or zero
func (q Quantity) IsZero() bool {
	return !q.Known || q.Value == 0
}

func (q Quantity) String() string {
	if !q.Known {
		return ""
	}
	return strconv.FormatFloat(q.Value, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Known {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(q.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (q *Quantity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*q = Quantity{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*q = Quantity{Value: v, Known: true}
	return nil
}
