package splitter

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// AccountBalance is a single item of `iterateBalances` result.
type AccountBalance struct {
	Account util.Uint160
	Balance *big.Int
}

// SplitData returns the data argument of a GAS transfer to the contract
// splitting the payment between two recipients.
func SplitData(recipient1, recipient2 util.Uint160) []any {
	return []any{recipient1, recipient2}
}

// SendDuo transfers amount of GAS from the sender to the contract to be split
// between two recipients. This transaction is signed and immediately sent to
// the network. The values returned are its hash, ValidUntilBlock value and
// error if any.
func SendDuo(actor nep17.Actor, contract, from util.Uint160, amount *big.Int, recipient1, recipient2 util.Uint160) (util.Uint256, uint32, error) {
	return gas.New(actor).Transfer(from, contract, amount, SplitData(recipient1, recipient2))
}

// SendDuoTransaction is similar to SendDuo, but the transaction is signed
// and returned to the caller instead of being sent.
func SendDuoTransaction(actor nep17.Actor, contract, from util.Uint160, amount *big.Int, recipient1, recipient2 util.Uint160) (*transaction.Transaction, error) {
	return gas.New(actor).TransferTransaction(from, contract, amount, SplitData(recipient1, recipient2))
}

// SendDuoUnsigned is similar to SendDuo, but the transaction is neither
// signed nor sent.
func SendDuoUnsigned(actor nep17.Actor, contract, from util.Uint160, amount *big.Int, recipient1, recipient2 util.Uint160) (*transaction.Transaction, error) {
	return gas.New(actor).TransferUnsigned(from, contract, amount, SplitData(recipient1, recipient2))
}

// Balances returns all non-zero balances traversing `iterateBalances`
// session iterator by batches of the given size. If the server expands
// iterators itself, its result is returned. The session is terminated
// afterwards, failure to terminate it fails the call.
func (c *ContractReader) Balances(batch int) (res []AccountBalance, err error) {
	if batch <= 0 {
		return nil, errors.New("batch size must be positive")
	}

	sess, iter, err := c.IterateBalances()
	if err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}

	if iter.ID == nil {
		return ParseBalances(iter.Values)
	}

	defer func() {
		termErr := c.invoker.TerminateSession(sess)
		if termErr != nil && err == nil {
			res, err = nil, fmt.Errorf("terminate session: %w", termErr)
		}
	}()

	for {
		items, err := c.invoker.TraverseIterator(sess, &iter, batch)
		if err != nil {
			return nil, fmt.Errorf("traverse balances: %w", err)
		}

		parsed, err := ParseBalances(items)
		if err != nil {
			return nil, err
		}
		res = append(res, parsed...)

		if len(items) < batch {
			return res, nil
		}
	}
}

// ParseBalances converts key-value structures returned by `iterateBalances`
// to AccountBalance list.
func ParseBalances(items []stackitem.Item) ([]AccountBalance, error) {
	res := make([]AccountBalance, 0, len(items))

	for i := range items {
		kv, ok := items[i].Value().([]stackitem.Item)
		if !ok || len(kv) != 2 {
			return nil, fmt.Errorf("item #%d: not a key-value structure", i)
		}

		acc, err := uint160FromItem(kv[0])
		if err != nil {
			return nil, fmt.Errorf("item #%d: account: %w", i, err)
		}

		b, err := kv[1].TryInteger()
		if err != nil {
			return nil, fmt.Errorf("item #%d: balance: %w", i, err)
		}

		res = append(res, AccountBalance{Account: acc, Balance: b})
	}

	return res, nil
}

// EventsFromApplicationLog returns all Split and Withdraw events of the
// transaction.
func EventsFromApplicationLog(log *result.ApplicationLog) ([]*SplitEvent, []*WithdrawEvent, error) {
	splits, err := SplitEventsFromApplicationLog(log)
	if err != nil {
		return nil, nil, err
	}

	withdrawals, err := WithdrawEventsFromApplicationLog(log)
	if err != nil {
		return nil, nil, err
	}

	return splits, withdrawals, nil
}
