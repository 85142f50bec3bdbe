package ledger

import (
	"github.com/holiman/uint256"
)

// TransferInstruction asks the host to pay Amount back to To. It's only
// valid together with the State returned alongside it: the host must persist
// that State and execute the transfer as one unit.
type TransferInstruction struct {
	To     Identity
	Amount uint256.Int
}

// Withdraw debits amount from the caller's balance and returns the
// instruction to pay it out.
//
// Checks are done in order: zero amount fails with ErrInvalidArgument, a
// caller without balance entry or with balance below amount fails with
// ErrInsufficientFunds. On failure s is returned as is.
func Withdraw(s State, caller Identity, amount *uint256.Int) (State, TransferInstruction, error) {
	if amount.IsZero() {
		return s, TransferInstruction{}, newError(KindInvalidArgument, "amount cannot be zero")
	}

	balances, err := debit(s.Balances, caller, amount)
	if err != nil {
		return s, TransferInstruction{}, err
	}

	res := s
	res.Balances = balances

	instr := TransferInstruction{To: caller}
	instr.Amount.Set(amount)

	return res, instr, nil
}
