package financials

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary input that may be absent or malformed. Order rows carry
// numbers, decimal strings or NULL depending on the source.
type Amount struct {
	Value float64
	Valid bool
}

func AmountOf(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}
	}
	return Amount{Value: v, Valid: true}
}

// AmountFromPtr maps a nullable column to an Amount.
func AmountFromPtr(v *float64) Amount {
	if v == nil {
		return Amount{}
	}
	return AmountOf(*v)
}

// ParseAmount accepts a decimal string; anything non-numeric is invalid.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Amount{}
	}
	return AmountOf(v)
}

// Or returns the amount's value, or def when it is invalid.
func (a Amount) Or(def float64) float64 {
	if !a.Valid {
		return def
	}
	return a.Value
}

// UnmarshalJSON accepts numbers, numeric strings and null. Malformed values
// decode to an invalid Amount instead of failing the surrounding document.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = Amount{}
			return nil
		}
		*a = ParseAmount(s)
		return nil
	}
	*a = ParseAmount(string(data))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}
