package oldsplitter

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Storage layout of the splitter contract.
const (
	ownerKey  = "o"
	feeKey    = "f"
	accPrefix = 'a'
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	args := data.(struct {
		owner interop.Hash160
		fee   int
	})

	ctx := storage.GetContext()
	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, feeKey, args.fee)
}

// OnNEP17Payment credits the whole GAS payment to the payer.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	if !runtime.GetCallingScriptHash().Equals(gas.Hash) {
		panic("GAS only")
	}

	ctx := storage.GetContext()
	key := append([]byte{accPrefix}, from...)

	var balance int
	if v := storage.Get(ctx, key); v != nil {
		balance = v.(int)
	}

	storage.Put(ctx, key, balance+amount)
}

// Update passes data to the new contract as is, so the caller decides which
// version the update is performed from.
func Update(script []byte, manifest []byte, data any) {
	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, data)
}
