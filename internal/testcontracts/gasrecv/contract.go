package gasrecv

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	lastKey    = "last"
	reenterKey = "reenter"
)

type Call struct {
	From   interop.Hash160
	Amount int
	Data   any
}

// OnNEP17Payment records the payment. If re-entrance is requested, the
// contract withdraws from the payer once more.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	if !runtime.GetCallingScriptHash().Equals(gas.Hash) {
		panic("GAS only")
	}

	ctx := storage.GetContext()
	storage.Put(ctx, lastKey, std.Serialize(Call{
		From:   from,
		Amount: amount,
		Data:   data,
	}))

	v := storage.Get(ctx, reenterKey)
	if v == nil {
		return
	}

	storage.Delete(ctx, reenterKey)
	contract.Call(from, "withdraw", contract.All, runtime.GetExecutingScriptHash(), v.(int))
}

// Withdraw withdraws amount of the contract balance from the splitter. If
// reenter is positive, reenter is withdrawn once more from the payment
// callback.
func Withdraw(splitter interop.Hash160, amount int, reenter int) {
	if reenter > 0 {
		storage.Put(storage.GetContext(), reenterKey, reenter)
	}

	contract.Call(splitter, "withdraw", contract.All, runtime.GetExecutingScriptHash(), amount)
}

func Get() Call {
	val := storage.Get(storage.GetReadOnlyContext(), lastKey)
	if val == nil {
		return Call{}
	}
	return std.Deserialize(val.([]byte)).(Call)
}
