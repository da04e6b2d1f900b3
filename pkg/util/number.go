package util

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned when a JSON value cannot be read as a finite number.
var ErrNotANumber = errors.New("not a number")

// Number is a JSON numeric field that also accepts numeric strings such as
// "50000". The zero Number means the field was absent from the payload.
type Number struct {
	value float64
	set   bool
}

func NewNumber(v float64) Number { return Number{value: v, set: true} }

func (n Number) Float() float64 { return n.value }

// Int truncates toward zero.
func (n Number) Int() int { return int(n.value) }

// IsSet reports whether the field was present in the payload.
func (n Number) IsSet() bool { return n.set }

// UnmarshalJSON rejects null, booleans, non-numeric strings and values
// that overflow float64.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if strings.HasPrefix(s, `"`) {
		u, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrNotANumber, s)
		}
		s = strings.TrimSpace(u)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s", ErrNotANumber, s)
	}
	*n = Number{value: v, set: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, n.value, 'g', -1, 64), nil
}
