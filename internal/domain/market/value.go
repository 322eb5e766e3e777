package market

import "math"

// NA is rendered wherever a value is not available
const NA = "N/A"

// Value is a provider number that may be absent. The zero Value is absent.
type Value struct {
	V  float64 `json:"v"`
	OK bool    `json:"ok"`
}

// Some wraps an available number. NaN and Inf are treated as absent.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{V: v, OK: true}
}

// NonZero treats 0 as absent, matching providers that zero-fill unknown fields
func NonZero(v float64) Value {
	if v == 0 {
		return Value{}
	}
	return Some(v)
}

// FromPtr converts an optional decoded number
func FromPtr(v *float64) Value {
	if v == nil {
		return Value{}
	}
	return Some(*v)
}

// Or returns the number or def when absent
func (v Value) Or(def float64) float64 {
	if !v.OK {
		return def
	}
	return v.V
}

// Scale multiplies an available value
func (v Value) Scale(f float64) Value {
	if !v.OK {
		return v
	}
	return Some(v.V * f)
}

// Str returns s or NA when s is empty
func Str(s string) string {
	if s == "" {
		return NA
	}
	return s
}
