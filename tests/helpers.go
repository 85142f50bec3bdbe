package tests

import (
	"math/rand"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// newExecutor returns executor over a single-node chain with validator
// and committee being the same account.
func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

// deployContract compiles the contract from the dir with its config.yml and
// deploys it by committee.
func deployContract(t *testing.T, e *neotest.Executor, dir string, data any) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, dir, path.Join(dir, "config.yml"))
	e.DeployContract(t, c, data)
	return c.Hash
}

func iteratorToArray(iter *storage.Iterator) []stackitem.Item {
	var res []stackitem.Item
	for iter.Next() {
		res = append(res, iter.Value())
	}
	return res
}

func randomBytes(n int) []byte {
	a := make([]byte, n)
	rand.Read(a) //nolint:staticcheck // SA1019: rand.Read has been deprecated since Go 1.20
	return a
}
