package domain

import (
	"bytes"
	"encoding/json"
)

// OptionalFloat is a metric that may be undefined for a given input snapshot.
// The zero value is absent.
type OptionalFloat struct {
	Value float64
	Valid bool
}

func Some(v float64) OptionalFloat { return OptionalFloat{Value: v, Valid: true} }

func None() OptionalFloat { return OptionalFloat{} }

// Get returns the value and whether it is present.
func (o OptionalFloat) Get() (float64, bool) { return o.Value, o.Valid }

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *OptionalFloat) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
