package ledger

import (
	"sort"

	"github.com/holiman/uint256"
)

// Identity is an opaque account identifier. Identities are equal only if
// their strings are equal, no normalization is performed.
type Identity string

// State is the ledger record of a single deployment.
//
// State is a value: engines take it as an argument and return a new one.
// The Balances map of a State handed to an engine is never written to.
type State struct {
	// Owner receives the fixed fee of every deposit.
	Owner Identity
	// FixedFee is charged from every deposit.
	FixedFee uint256.Int
	// Balances holds credited amounts. Missing key means zero balance.
	Balances map[Identity]uint256.Int
}

// New returns State with no balances.
func New(owner Identity, fixedFee *uint256.Int) State {
	s := State{
		Owner:    owner,
		Balances: make(map[Identity]uint256.Int),
	}
	s.FixedFee.Set(fixedFee)

	return s
}

// BalanceOf returns recorded balance of the given identity or zero if there is
// no entry for it.
func (s State) BalanceOf(id Identity) *uint256.Int {
	b := s.Balances[id]
	return &b
}

// HasEntry reports whether the identity has ever been credited.
func (s State) HasEntry(id Identity) bool {
	_, ok := s.Balances[id]
	return ok
}

// Accounts returns all identities having a balance entry (including zero
// ones) in ascending order.
func (s State) Accounts() []Identity {
	res := make([]Identity, 0, len(s.Balances))
	for id := range s.Balances {
		res = append(res, id)
	}

	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })

	return res
}

// Total returns the sum of all recorded balances.
func (s State) Total() (*uint256.Int, error) {
	var total uint256.Int

	for id, b := range s.Balances {
		b := b
		if _, overflow := total.AddOverflow(&total, &b); overflow {
			return nil, newError(KindOverflow, "total of balances overflows at "+string(id))
		}
	}

	return &total, nil
}

// Credit returns a copy of balances where id's entry is increased by amount.
// The entry is created if missing, even for zero amount. The input map is
// left intact, so failed multi-step updates need no rollback.
func Credit(balances map[Identity]uint256.Int, id Identity, amount *uint256.Int) (map[Identity]uint256.Int, error) {
	var (
		cur = balances[id]
		sum uint256.Int
	)

	if _, overflow := sum.AddOverflow(&cur, amount); overflow {
		return nil, newError(KindOverflow, "balance of "+string(id)+" exceeds 256 bits")
	}

	res := cloneBalances(balances, 1)
	res[id] = sum

	return res, nil
}

// debit is the counterpart of Credit used by Withdraw. The entry must exist
// and hold at least amount.
func debit(balances map[Identity]uint256.Int, id Identity, amount *uint256.Int) (map[Identity]uint256.Int, error) {
	cur, ok := balances[id]
	if !ok {
		return nil, newError(KindInsufficientFunds, "no balance recorded for "+string(id))
	}

	if cur.Lt(amount) {
		return nil, newError(KindInsufficientFunds,
			"balance "+cur.Dec()+" of "+string(id)+" is less than "+amount.Dec())
	}

	var rest uint256.Int
	rest.Sub(&cur, amount)

	res := cloneBalances(balances, 0)
	res[id] = rest

	return res, nil
}

func cloneBalances(balances map[Identity]uint256.Int, extra int) map[Identity]uint256.Int {
	res := make(map[Identity]uint256.Int, len(balances)+extra)
	for id, b := range balances {
		res[id] = b
	}

	return res
}
