package ledger

import (
	"github.com/holiman/uint256"
)

// Coin is an amount of some denomination attached to a call.
type Coin struct {
	Denom  string
	Amount uint256.Int
}

// Split describes how a successful deposit was distributed.
type Split struct {
	// Share is credited to each of the two recipients.
	Share uint256.Int
	// Fee is credited to the owner.
	Fee uint256.Int
	// Burned is the unit (0 or 1) left after halving an odd remainder, it's
	// not credited to anyone.
	Burned uint256.Int
}

// SumFunds returns the total amount of the given denomination in funds.
// Coins of other denominations are ignored.
func SumFunds(funds []Coin, denom string) (*uint256.Int, error) {
	var total uint256.Int

	for i := range funds {
		if funds[i].Denom != denom {
			continue
		}

		if _, overflow := total.AddOverflow(&total, &funds[i].Amount); overflow {
			return nil, newError(KindOverflow, "sum of attached "+denom+" exceeds 256 bits")
		}
	}

	return &total, nil
}

// Deposit takes the fixed fee from funded for the owner and splits the rest
// equally between recipient1 and recipient2. Recipients may be equal to each
// other, to the owner or to anyone else, credits just add up.
//
// Deposit fails with ErrInsufficientFunds if funded does not exceed the fixed
// fee. On any failure s is returned as is.
func Deposit(s State, funded *uint256.Int, recipient1, recipient2 Identity) (State, Split, error) {
	var split Split

	if !funded.Gt(&s.FixedFee) {
		return s, split, newError(KindInsufficientFunds,
			"deposit of "+funded.Dec()+" does not exceed fixed fee "+s.FixedFee.Dec())
	}

	var remainder uint256.Int
	remainder.Sub(funded, &s.FixedFee)

	split.Share.Rsh(&remainder, 1)
	split.Fee.Set(&s.FixedFee)
	split.Burned.SetUint64(remainder.Uint64() & 1)

	balances, err := Credit(s.Balances, recipient1, &split.Share)
	if err != nil {
		return s, Split{}, err
	}

	balances, err = Credit(balances, recipient2, &split.Share)
	if err != nil {
		return s, Split{}, err
	}

	balances, err = Credit(balances, s.Owner, &split.Fee)
	if err != nil {
		return s, Split{}, err
	}

	res := s
	res.Balances = balances

	return res, split, nil
}
