package host

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Amount is a 256-bit unsigned token amount encoded in JSON as a decimal
// string, e.g. "1000".
type Amount uint256.Int

var errInvalidAmount = errors.New("amount must be a decimal string of digits")

// NewAmount returns Amount holding v.
func NewAmount(v uint64) Amount {
	return Amount(*uint256.NewInt(v))
}

// Int returns a copy of a as uint256.Int.
func (a Amount) Int() *uint256.Int {
	v := uint256.Int(a)
	return &v
}

// String returns decimal representation of a.
func (a Amount) String() string {
	return a.Int().Dec()
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	v, err := parseAmount(s)
	if err != nil {
		return err
	}

	*a = Amount(*v)
	return nil
}

// parseAmount accepts digits only, uint256.Int.SetFromDecimal alone also
// takes a leading plus sign.
func parseAmount(s string) (*uint256.Int, error) {
	if len(s) == 0 || s[0] == '+' {
		return nil, fmt.Errorf("%w: %q", errInvalidAmount, s)
	}

	var v uint256.Int

	err := v.SetFromDecimal(s)
	switch {
	case errors.Is(err, uint256.ErrBig256Range):
		return nil, fmt.Errorf("amount %s exceeds 256 bits", s)
	case err != nil:
		return nil, fmt.Errorf("%w: %q", errInvalidAmount, s)
	}

	return &v, nil
}
