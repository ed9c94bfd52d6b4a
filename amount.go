package unb

import (
	"bytes"
	"fmt"
	"strconv"
)

// wireInfinity is the literal the API uses for an unlimited balance or stock.
const wireInfinity = `"Infinity"`

// Unlimited is the sentinel for an unbounded balance or stock amount.
// It serializes as the JSON string "Infinity" rather than a number.
var Unlimited = Amount{unlimited: true}

// Amount is a balance or stock quantity: either a finite integer or the
// Unlimited sentinel. The zero value is Finite(0). Amount is comparable, so
// Unlimited == Unlimited holds and no float infinity is involved.
type Amount struct {
	value     int64
	unlimited bool
}

// Finite returns the amount for a concrete value.
func Finite(n int64) Amount {
	return Amount{value: n}
}

// IsUnlimited reports whether the amount is the Unlimited sentinel.
func (a Amount) IsUnlimited() bool {
	return a.unlimited
}

// Int64 returns the finite value. It is 0 for Unlimited; check IsUnlimited
// first when the distinction matters.
func (a Amount) Int64() int64 {
	return a.value
}

// String implements fmt.Stringer.
func (a Amount) String() string {
	if a.unlimited {
		return "Infinity"
	}

	return strconv.FormatInt(a.value, 10)
}

// MarshalJSON writes a number, or the "Infinity" wire literal for Unlimited.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.unlimited {
		return []byte(wireInfinity), nil
	}

	return []byte(strconv.FormatInt(a.value, 10)), nil
}

// UnmarshalJSON reads a number, a numeric string, or the "Infinity" literal.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(wireInfinity)) {
		*a = Unlimited
		return nil
	}

	data = bytes.Trim(data, `"`)

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid amount", ErrParse, data)
	}

	*a = Amount{value: n}

	return nil
}
