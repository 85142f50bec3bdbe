package host

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/splitter-contract/ledger"
)

// Storage layout.
const (
	ownerKey      = 0x01
	feeKey        = 0x02
	balancePrefix = 0x03
)

var errNotInstantiated = errors.New("ledger is not instantiated")

func balanceKey(id ledger.Identity) []byte {
	return append([]byte{balancePrefix}, id...)
}

func encodeInt(v *uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

func isInstantiated(s storage.Store) (bool, error) {
	_, err := s.Get([]byte{ownerKey})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("read owner: %w", err)
	}
}

// loadState reads the whole ledger state from s.
func loadState(s storage.Store) (ledger.State, error) {
	owner, err := s.Get([]byte{ownerKey})
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return ledger.State{}, errNotInstantiated
		}
		return ledger.State{}, fmt.Errorf("read owner: %w", err)
	}

	fee, err := s.Get([]byte{feeKey})
	if err != nil {
		return ledger.State{}, fmt.Errorf("read fixed fee: %w", err)
	}

	st := ledger.New(ledger.Identity(owner), new(uint256.Int).SetBytes(fee))

	s.Seek(storage.SeekRange{Prefix: []byte{balancePrefix}}, func(k, v []byte) bool {
		st.Balances[ledger.Identity(k[1:])] = *new(uint256.Int).SetBytes(v)
		return true
	})

	return st, nil
}

// storeState writes the entries of next that differ from prev.
func storeState(s *storage.MemCachedStore, prev, next ledger.State) {
	for id, b := range next.Balances {
		b := b
		if old, ok := prev.Balances[id]; ok && old.Eq(&b) {
			continue
		}

		s.Put(balanceKey(id), encodeInt(&b))
	}
}

func storeNew(s *storage.MemCachedStore, st ledger.State) {
	s.Put([]byte{ownerKey}, []byte(st.Owner))
	s.Put([]byte{feeKey}, encodeInt(&st.FixedFee))

	storeState(s, ledger.State{}, st)
}
