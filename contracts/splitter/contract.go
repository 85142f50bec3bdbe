package splitter

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/splitter-contract/common"
)

const (
	ownerKey  = "o"
	feeKey    = "f"
	accPrefix = 'a'

	errInsufficientFunds  = "insufficient funds"
	errInvalidAmount      = "invalid argument: amount must be positive"
	errInvalidRecipients  = "invalid split recipients"
	errTransferFailed     = "failed to transfer funds, aborting"
	errUpdateAccessDenied = "only committee can update contract"
)

// _deploy stores the owner and the fixed fee. The data is [owner, fee] where
// nil owner stands for the transaction sender.
// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner interop.Hash160
		fee   int
	})

	owner := args.owner
	if owner == nil {
		owner = runtime.GetScriptContainer().Sender
	}

	if len(owner) != interop.Hash160Len {
		panic("incorrect length of owner script hash")
	}

	if args.fee < 0 {
		panic("fixed fee must be non-negative")
	}

	ctx := storage.GetContext()
	storage.Put(ctx, ownerKey, owner)
	storage.Put(ctx, feeKey, args.fee)

	runtime.Log("splitter contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic(errUpdateAccessDenied)
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("splitter contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// It takes the fixed fee for the owner and splits the rest of the payment
// between two recipients passed in data as [recipient1, recipient2].
//
// Payments of other tokens are accepted and left unaccounted.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		runtime.Log("non-GAS payment is ignored")
		return
	}

	rcv1, rcv2 := splitRecipients(data)

	ctx := storage.GetContext()
	fee := storage.Get(ctx, feeKey).(int)

	if amount <= fee {
		panic(errInsufficientFunds)
	}

	// odd unit stays on the contract account
	share := (amount - fee) / 2

	credit(ctx, rcv1, share)
	credit(ctx, rcv2, share)
	credit(ctx, storage.Get(ctx, ownerKey).(interop.Hash160), fee)

	runtime.Notify("Split", from, rcv1, rcv2, share, fee)
}

// Withdraw transfers amount of GAS from the user's balance back to the user.
// It can be invoked only by the specified user.
func Withdraw(user interop.Hash160, amount int) {
	common.CheckOwnerWitness(user)

	if amount <= 0 {
		panic(errInvalidAmount)
	}

	ctx := storage.GetContext()
	key := append([]byte{accPrefix}, user...)

	balance := getBalance(ctx, key)
	if balance < amount {
		panic(errInsufficientFunds)
	}

	if balance == amount {
		storage.Delete(ctx, key)
	} else {
		storage.Put(ctx, key, balance-amount)
	}

	if !gas.Transfer(runtime.GetExecutingScriptHash(), user, amount, nil) {
		panic(errTransferFailed)
	}

	runtime.Notify("Withdraw", user, amount)
}

// Owner returns the account receiving the fixed fee of every payment.
func Owner() interop.Hash160 {
	return storage.Get(storage.GetReadOnlyContext(), ownerKey).(interop.Hash160)
}

// FixedFee returns the fee charged from every payment.
func FixedFee() int {
	return storage.Get(storage.GetReadOnlyContext(), feeKey).(int)
}

// BalanceOf returns the withdrawable balance of the account, zero for
// unknown accounts.
func BalanceOf(account interop.Hash160) int {
	if len(account) != interop.Hash160Len {
		panic("invalid account script hash")
	}

	return getBalance(storage.GetReadOnlyContext(), append([]byte{accPrefix}, account...))
}

// IterateBalances returns an iterator over all non-zero balances. Keys are
// account script hashes, values are balances.
func IterateBalances() iterator.Iterator {
	return storage.Find(storage.GetReadOnlyContext(), []byte{accPrefix}, storage.RemovePrefix)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func splitRecipients(data any) (interop.Hash160, interop.Hash160) {
	if data == nil {
		panic(errInvalidRecipients)
	}

	args := data.([]any)
	if len(args) != 2 {
		panic(errInvalidRecipients)
	}

	rcv1 := args[0].(interop.Hash160)
	rcv2 := args[1].(interop.Hash160)

	if len(rcv1) != interop.Hash160Len || len(rcv2) != interop.Hash160Len {
		panic(errInvalidRecipients)
	}

	return rcv1, rcv2
}

func credit(ctx storage.Context, acc interop.Hash160, amount int) {
	if amount == 0 {
		return
	}

	key := append([]byte{accPrefix}, acc...)
	storage.Put(ctx, key, getBalance(ctx, key)+amount)
}

func getBalance(ctx storage.Context, key []byte) int {
	data := storage.Get(ctx, key)
	if data == nil {
		return 0
	}

	return data.(int)
}
