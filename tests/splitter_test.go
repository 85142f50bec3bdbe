package tests

import (
	"encoding/json"
	"math/big"
	"math/rand"
	"path"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/splitter-contract/common"
	"github.com/nspcc-dev/splitter-contract/ledger"
	"github.com/nspcc-dev/splitter-contract/rpc/splitter"
	"github.com/stretchr/testify/require"
)

const splitterPath = "../contracts/splitter"

type splitterEnv struct {
	e     *neotest.Executor
	hash  util.Uint160
	owner neotest.Signer
	gas   util.Uint160
}

func deploySplitterContract(t *testing.T, e *neotest.Executor, owner any, fee int64) util.Uint160 {
	return deployContract(t, e, splitterPath, []any{owner, fee})
}

func newSplitterEnv(t *testing.T, fee int64) *splitterEnv {
	e := newExecutor(t)
	owner := e.NewAccount(t)

	return &splitterEnv{
		e:     e,
		hash:  deploySplitterContract(t, e, owner.ScriptHash(), fee),
		owner: owner,
		gas:   e.NativeHash(t, nativenames.Gas),
	}
}

// invoker returns splitter invoker with committee paying for transactions
// and signers co-signing them.
func (x *splitterEnv) invoker(signers ...neotest.Signer) *neotest.ContractInvoker {
	return x.e.NewInvoker(x.hash, append([]neotest.Signer{x.e.Committee}, signers...)...)
}

func (x *splitterEnv) sendDuo(t *testing.T, from neotest.Signer, amount int64, rcv1, rcv2 util.Uint160) util.Uint256 {
	gasInv := x.e.NewInvoker(x.gas, from)
	return gasInv.Invoke(t, true, "transfer", from.ScriptHash(), x.hash, amount, splitter.SplitData(rcv1, rcv2))
}

func (x *splitterEnv) sendDuoFail(t *testing.T, from neotest.Signer, msg string, amount int64, data any) {
	gasInv := x.e.NewInvoker(x.gas, from)
	gasInv.InvokeFail(t, msg, "transfer", from.ScriptHash(), x.hash, amount, data)
}

func (x *splitterEnv) requireBalance(t *testing.T, acc util.Uint160, expected int64) {
	x.invoker().Invoke(t, stackitem.Make(expected), "balanceOf", acc)
}

func (x *splitterEnv) gasBalance(acc util.Uint160) int64 {
	return x.e.Chain.GetUtilityTokenBalance(acc).Int64()
}

func (x *splitterEnv) balances(t *testing.T) []splitter.AccountBalance {
	s, err := x.invoker().TestInvoke(t, "iterateBalances")
	require.NoError(t, err)

	res, err := splitter.ParseBalances(iteratorToArray(s.Pop().Value().(*storage.Iterator)))
	require.NoError(t, err)

	return res
}

// requireOwner checks owner bytes only, stored hash is returned as a buffer.
func requireOwner(t *testing.T, c *neotest.ContractInvoker, expected util.Uint160) {
	s, err := c.TestInvoke(t, "owner")
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	b, err := s.Pop().Item().TryBytes()
	require.NoError(t, err)
	require.Equal(t, expected.BytesBE(), b)
}

func execution(t *testing.T, e *neotest.Executor, h util.Uint256) *result.ApplicationLog {
	res := e.GetTxExecResult(t, h)
	return &result.ApplicationLog{
		Container:  h,
		Executions: []state.Execution{res.Execution},
	}
}

func TestSplitter_Deploy(t *testing.T) {
	t.Run("explicit owner", func(t *testing.T) {
		x := newSplitterEnv(t, 1000)
		c := x.invoker()

		requireOwner(t, c, x.owner.ScriptHash())
		c.Invoke(t, 1000, "fixedFee")
		c.Invoke(t, common.Version, "version")
		require.Empty(t, x.balances(t))
	})

	t.Run("sender is owner by default", func(t *testing.T) {
		e := newExecutor(t)
		h := deploySplitterContract(t, e, nil, 0)

		c := e.CommitteeInvoker(h)
		requireOwner(t, c, e.CommitteeHash)
		c.Invoke(t, 0, "fixedFee")
	})

	t.Run("invalid arguments", func(t *testing.T) {
		e := newExecutor(t)
		c := neotest.CompileFile(t, e.CommitteeHash, splitterPath, path.Join(splitterPath, "config.yml"))

		e.DeployContractCheckFAULT(t, c, []any{[]byte{1, 2, 3}, 0}, "incorrect length of owner script hash")
		e.DeployContractCheckFAULT(t, c, []any{e.CommitteeHash, -1}, "fixed fee must be non-negative")
	})
}

func TestSplitter_Scenarios(t *testing.T) {
	var (
		x      = newSplitterEnv(t, 1000)
		sender = x.e.NewAccount(t)
		user1  = x.e.NewAccount(t)
		user2  = x.e.NewAccount(t)
	)

	// A
	h := x.sendDuo(t, sender, 3000, user1.ScriptHash(), user2.ScriptHash())

	x.requireBalance(t, user1.ScriptHash(), 1000)
	x.requireBalance(t, user2.ScriptHash(), 1000)
	x.requireBalance(t, x.owner.ScriptHash(), 1000)
	require.EqualValues(t, 3000, x.gasBalance(x.hash))

	splits, err := splitter.SplitEventsFromApplicationLog(execution(t, x.e, h))
	require.NoError(t, err)
	require.Equal(t, []*splitter.SplitEvent{{
		From:       sender.ScriptHash(),
		Recipient1: user1.ScriptHash(),
		Recipient2: user2.ScriptHash(),
		Share:      big.NewInt(1000),
		Fee:        big.NewInt(1000),
	}}, splits)

	// B
	gasBefore := x.gasBalance(user1.ScriptHash())
	h = x.invoker(user1).Invoke(t, stackitem.Null{}, "withdraw", user1.ScriptHash(), 500)

	x.requireBalance(t, user1.ScriptHash(), 500)
	require.Equal(t, gasBefore+500, x.gasBalance(user1.ScriptHash()))

	withdrawals, err := splitter.WithdrawEventsFromApplicationLog(execution(t, x.e, h))
	require.NoError(t, err)
	require.Equal(t, []*splitter.WithdrawEvent{{
		User:   user1.ScriptHash(),
		Amount: big.NewInt(500),
	}}, withdrawals)

	gasBefore = x.gasBalance(user2.ScriptHash())
	x.invoker(user2).Invoke(t, stackitem.Null{}, "withdraw", user2.ScriptHash(), 1000)

	x.requireBalance(t, user2.ScriptHash(), 0)
	require.Equal(t, gasBefore+1000, x.gasBalance(user2.ScriptHash()))
	require.EqualValues(t, 1500, x.gasBalance(x.hash))

	// drained account is not stored
	require.ElementsMatch(t, []splitter.AccountBalance{
		{Account: user1.ScriptHash(), Balance: big.NewInt(500)},
		{Account: x.owner.ScriptHash(), Balance: big.NewInt(1000)},
	}, x.balances(t))

	// C
	user3 := x.e.NewAccount(t)

	x.sendDuoFail(t, sender, "insufficient funds", 1000,
		splitter.SplitData(user3.ScriptHash(), user1.ScriptHash()))

	x.requireBalance(t, user3.ScriptHash(), 0)
	x.requireBalance(t, user1.ScriptHash(), 500)
	x.requireBalance(t, x.owner.ScriptHash(), 1000)
	require.EqualValues(t, 1500, x.gasBalance(x.hash))
}

func TestSplitter_OnNEP17Payment(t *testing.T) {
	x := newSplitterEnv(t, 10)
	sender := x.e.NewAccount(t)
	rcv1, rcv2 := x.e.NewAccount(t).ScriptHash(), x.e.NewAccount(t).ScriptHash()

	t.Run("odd remainder", func(t *testing.T) {
		h := x.sendDuo(t, sender, 21, rcv1, rcv2)

		x.requireBalance(t, rcv1, 5)
		x.requireBalance(t, rcv2, 5)
		x.requireBalance(t, x.owner.ScriptHash(), 10)
		require.EqualValues(t, 21, x.gasBalance(x.hash))

		splits, err := splitter.SplitEventsFromApplicationLog(execution(t, x.e, h))
		require.NoError(t, err)
		require.Len(t, splits, 1)
		require.EqualValues(t, 5, splits[0].Share.Int64())
	})

	t.Run("zero share", func(t *testing.T) {
		x.sendDuo(t, sender, 11, rcv1, rcv2)

		x.requireBalance(t, rcv1, 5)
		x.requireBalance(t, rcv2, 5)
		x.requireBalance(t, x.owner.ScriptHash(), 20)
	})

	t.Run("same recipients", func(t *testing.T) {
		x.sendDuo(t, sender, 30, rcv1, rcv1)

		x.requireBalance(t, rcv1, 25)
		x.requireBalance(t, rcv2, 5)
		x.requireBalance(t, x.owner.ScriptHash(), 30)
	})

	t.Run("invalid recipients", func(t *testing.T) {
		for _, data := range []any{
			nil,
			[]any{rcv1},
			[]any{rcv1, rcv2, rcv1},
			[]any{rcv1, []byte{1, 2, 3}},
			[]any{randomBytes(21), rcv2},
		} {
			x.sendDuoFail(t, sender, "invalid split recipients", 100, data)
		}

		x.requireBalance(t, rcv1, 25)
		x.requireBalance(t, x.owner.ScriptHash(), 30)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		for _, amount := range []int64{1, 9, 10} {
			x.sendDuoFail(t, sender, "insufficient funds", amount, splitter.SplitData(rcv1, rcv2))
		}
	})

	t.Run("non-GAS payment is ignored", func(t *testing.T) {
		neoInv := x.e.CommitteeInvoker(x.e.NativeHash(t, nativenames.Neo))
		neoInv.Invoke(t, true, "transfer", x.e.CommitteeHash, x.hash, 1, nil)

		x.requireBalance(t, rcv1, 25)
		x.requireBalance(t, rcv2, 5)
		x.requireBalance(t, x.owner.ScriptHash(), 30)
		x.requireBalance(t, x.e.CommitteeHash, 0)
	})

	require.EqualValues(t, 21+11+30, x.gasBalance(x.hash))
}

func TestSplitter_Withdraw(t *testing.T) {
	x := newSplitterEnv(t, 100)
	sender := x.e.NewAccount(t)
	user := x.e.NewAccount(t)
	stranger := x.e.NewAccount(t)

	x.sendDuo(t, sender, 300, user.ScriptHash(), user.ScriptHash())
	x.requireBalance(t, user.ScriptHash(), 200)

	c := x.invoker(user)

	t.Run("witness", func(t *testing.T) {
		x.invoker(stranger).InvokeFail(t, common.ErrOwnerWitnessFailed, "withdraw", user.ScriptHash(), 1)
		x.invoker().InvokeFail(t, common.ErrOwnerWitnessFailed, "withdraw", user.ScriptHash(), 1)
	})

	t.Run("invalid amount", func(t *testing.T) {
		c.InvokeFail(t, "invalid argument: amount must be positive", "withdraw", user.ScriptHash(), 0)
		c.InvokeFail(t, "invalid argument: amount must be positive", "withdraw", user.ScriptHash(), -1)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		c.InvokeFail(t, "insufficient funds", "withdraw", user.ScriptHash(), 201)
		x.invoker(stranger).InvokeFail(t, "insufficient funds", "withdraw", stranger.ScriptHash(), 1)
	})

	x.requireBalance(t, user.ScriptHash(), 200)
	require.EqualValues(t, 300, x.gasBalance(x.hash))

	gasBefore := x.gasBalance(user.ScriptHash())
	for i := 0; i < 4; i++ {
		c.Invoke(t, stackitem.Null{}, "withdraw", user.ScriptHash(), 50)
	}

	x.requireBalance(t, user.ScriptHash(), 0)
	require.Equal(t, gasBefore+200, x.gasBalance(user.ScriptHash()))
	require.EqualValues(t, 100, x.gasBalance(x.hash))

	c.InvokeFail(t, "insufficient funds", "withdraw", user.ScriptHash(), 1)

	// the owner withdraws fees as any other account
	x.invoker(x.owner).Invoke(t, stackitem.Null{}, "withdraw", x.owner.ScriptHash(), 100)
	require.Zero(t, x.gasBalance(x.hash))
	require.Empty(t, x.balances(t))
}

// splitterExecutable returns NEF and JSON manifest of the current splitter
// contract as passed to `update`.
func splitterExecutable(t *testing.T, e *neotest.Executor) ([]byte, []byte) {
	c := neotest.CompileFile(t, e.CommitteeHash, splitterPath, path.Join(splitterPath, "config.yml"))

	bNEF, err := c.NEF.Bytes()
	require.NoError(t, err)

	jManifest, err := json.Marshal(c.Manifest)
	require.NoError(t, err)

	return bNEF, jManifest
}

func TestSplitter_Update(t *testing.T) {
	t.Run("committee only", func(t *testing.T) {
		x := newSplitterEnv(t, 100)
		bNEF, jManifest := splitterExecutable(t, x.e)

		x.e.NewInvoker(x.hash, x.owner).InvokeFail(t, "only committee can update contract",
			"update", bNEF, jManifest, nil)
	})

	t.Run("already latest", func(t *testing.T) {
		x := newSplitterEnv(t, 100)
		bNEF, jManifest := splitterExecutable(t, x.e)

		x.e.CommitteeInvoker(x.hash).InvokeFail(t, common.ErrAlreadyUpdated,
			"update", bNEF, jManifest, nil)
		x.e.CommitteeInvoker(x.hash).InvokeFail(t, common.ErrAlreadyUpdated,
			"update", bNEF, jManifest, []any{})
	})

	t.Run("from previous version", func(t *testing.T) {
		const oldPath = "../internal/testcontracts/oldsplitter"

		var (
			e     = newExecutor(t)
			owner = e.NewAccount(t)
			user  = e.NewAccount(t)
			gasH  = e.NativeHash(t, nativenames.Gas)
		)

		h := deployContract(t, e, oldPath, []any{owner.ScriptHash(), 70})
		e.NewInvoker(gasH, user).Invoke(t, true, "transfer", user.ScriptHash(), h, 500, nil)

		bNEF, jManifest := splitterExecutable(t, e)
		old := e.CommitteeInvoker(h)

		old.InvokeFail(t, common.ErrVersionMismatch, "update", bNEF, jManifest, []any{common.PrevVersion - 1})
		old.Invoke(t, stackitem.Null{}, "update", bNEF, jManifest, []any{common.PrevVersion})

		x := &splitterEnv{e: e, hash: h, owner: owner, gas: gasH}
		c := x.invoker()

		requireOwner(t, c, owner.ScriptHash())
		c.Invoke(t, 70, "fixedFee")
		c.Invoke(t, common.Version, "version")
		x.requireBalance(t, user.ScriptHash(), 500)

		x.invoker(user).Invoke(t, stackitem.Null{}, "withdraw", user.ScriptHash(), 500)
		x.requireBalance(t, user.ScriptHash(), 0)
		require.Zero(t, x.gasBalance(h))

		rcv := e.NewAccount(t)
		x.sendDuo(t, user, 170, rcv.ScriptHash(), rcv.ScriptHash())
		x.requireBalance(t, rcv.ScriptHash(), 100)
		x.requireBalance(t, owner.ScriptHash(), 70)

		c.InvokeFail(t, common.ErrAlreadyUpdated, "update", bNEF, jManifest, nil)
	})
}

// Random sequence of deposits and withdrawals gives the same balances as
// the ledger package does.
func TestSplitter_MatchesLedger(t *testing.T) {
	const fee = 7

	var (
		x      = newSplitterEnv(t, fee)
		sender = x.e.NewAccount(t)
		accs   = []neotest.Signer{x.owner, x.e.NewAccount(t), x.e.NewAccount(t), x.e.NewAccount(t)}
		model  = ledger.New(id(x.owner.ScriptHash()), uint256.NewInt(fee))
		r      = rand.New(rand.NewSource(1))
	)

	for i := 0; i < 30; i++ {
		if r.Intn(3) != 0 {
			amount := int64(r.Intn(40))
			rcv1, rcv2 := accs[r.Intn(len(accs))].ScriptHash(), accs[r.Intn(len(accs))].ScriptHash()

			next, _, err := ledger.Deposit(model, uint256.NewInt(uint64(amount)), id(rcv1), id(rcv2))
			if err != nil {
				require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
				if amount > 0 {
					x.sendDuoFail(t, sender, "insufficient funds", amount, splitter.SplitData(rcv1, rcv2))
				}
				continue
			}

			x.sendDuo(t, sender, amount, rcv1, rcv2)
			model = next
			continue
		}

		acc := accs[r.Intn(len(accs))]
		amount := int64(r.Intn(20)) + 1

		next, _, err := ledger.Withdraw(model, id(acc.ScriptHash()), uint256.NewInt(uint64(amount)))
		if err != nil {
			require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
			x.invoker(acc).InvokeFail(t, "insufficient funds", "withdraw", acc.ScriptHash(), amount)
			continue
		}

		x.invoker(acc).Invoke(t, stackitem.Null{}, "withdraw", acc.ScriptHash(), amount)
		model = next
	}

	for _, acc := range accs {
		x.requireBalance(t, acc.ScriptHash(), int64(model.BalanceOf(id(acc.ScriptHash())).Uint64()))
	}

	total, err := model.Total()
	require.NoError(t, err)
	require.LessOrEqual(t, total.Uint64(), uint64(x.gasBalance(x.hash)))
}

func id(h util.Uint160) ledger.Identity {
	return ledger.Identity(address.Uint160ToString(h))
}

// Receiving contract withdrawing again from the payment callback sees the
// already debited balance.
func TestSplitter_WithdrawReentrance(t *testing.T) {
	const recvPath = "../internal/testcontracts/gasrecv"

	x := newSplitterEnv(t, 100)

	recvHash := deployContract(t, x.e, recvPath, nil)
	recv := x.e.CommitteeInvoker(recvHash)

	x.sendDuo(t, x.e.NewAccount(t), 300, recvHash, recvHash)
	x.requireBalance(t, recvHash, 200)

	recv.InvokeFail(t, "insufficient funds", "withdraw", x.hash, 150, 100)
	x.requireBalance(t, recvHash, 200)
	require.Zero(t, x.gasBalance(recvHash))

	recv.Invoke(t, stackitem.Null{}, "withdraw", x.hash, 150, 50)
	x.requireBalance(t, recvHash, 0)
	require.EqualValues(t, 200, x.gasBalance(recvHash))
	require.EqualValues(t, 100, x.gasBalance(x.hash))

	recv.Invoke(t, stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(x.hash.BytesBE()),
		stackitem.Make(50),
		stackitem.Null{},
	}), "get")
}
