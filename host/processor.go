package host

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/splitter-contract/ledger"
	"go.uber.org/zap"
)

// DefaultDenom is the denomination accepted by Processor if Prm.Denom is
// not set.
const DefaultDenom = "gas"

// Prm groups parameters of the Processor.
type Prm struct {
	// Logger is used for call tracing. Optional, no logging by default.
	Logger *zap.Logger

	// Store keeps ledger state. Optional, in-memory store by default.
	Store storage.Store

	// Denom is the only denomination counted in deposits. Optional,
	// DefaultDenom by default.
	Denom string
}

// Processor runs ledger calls over the key-value store. Each state changing
// call is staged in a separate cache layer which is persisted only if the
// call succeeds, so a failed call leaves the store intact. Calls are
// serialized.
type Processor struct {
	mtx   sync.Mutex
	log   *zap.Logger
	store storage.Store
	denom string
}

type operation func(st ledger.State) (ledger.State, *Response, error)

// New returns Processor working over prm.Store.
func New(prm Prm) *Processor {
	p := &Processor{
		log:   prm.Logger,
		store: prm.Store,
		denom: prm.Denom,
	}

	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.store == nil {
		p.store = storage.NewMemoryStore()
	}
	if p.denom == "" {
		p.denom = DefaultDenom
	}

	return p
}

// Instantiate creates the ledger with the owner and fixed fee from the
// JSON-encoded InstantiateMsg. It fails if the ledger already exists.
func (p *Processor) Instantiate(info MessageInfo, raw []byte) (*Response, error) {
	id := uuid.New()
	log := p.log.With(zap.Stringer("id", id), zap.String("method", "instantiate"))

	var msg InstantiateMsg
	if err := decodeMsg(raw, &msg); err != nil {
		return nil, p.fail(log, ledger.HostError(fmt.Errorf("decode instantiate message: %w", err)))
	}

	src := info.Sender
	if msg.Owner != "" {
		src = msg.Owner
	}

	if src == "" {
		return nil, p.fail(log, ledger.HostError(errors.New("owner is not specified")))
	}

	owner, err := parseIdentity(src)
	if err != nil {
		return nil, p.fail(log, ledger.HostError(fmt.Errorf("owner: %w", err)))
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	ok, err := isInstantiated(p.store)
	if err != nil {
		return nil, p.fail(log, ledger.HostError(err))
	}
	if ok {
		return nil, p.fail(log, ledger.HostError(errors.New("ledger is already instantiated")))
	}

	st := ledger.New(owner, msg.FixedFee.Int())

	cache := storage.NewMemCachedStore(p.store)
	storeNew(cache, st)

	if _, err := cache.Persist(); err != nil {
		return nil, p.fail(log, ledger.HostError(fmt.Errorf("persist state: %w", err)))
	}

	resp := &Response{
		ID: id,
		Attributes: []Attribute{
			attr("method", "instantiate"),
			attr("owner", string(st.Owner)),
			attr("fixed_fee", msg.FixedFee.String()),
		},
	}

	log.Debug("ledger instantiated",
		zap.String("owner", string(st.Owner)),
		zap.Stringer("fixed_fee", msg.FixedFee))

	return resp, nil
}

// Execute runs the JSON-encoded ExecuteMsg on behalf of info.Sender.
// Ledger errors are returned as is and can be matched with errors.Is.
func (p *Processor) Execute(info MessageInfo, raw []byte) (*Response, error) {
	var msg ExecuteMsg
	if err := decodeMsg(raw, &msg); err != nil {
		return nil, p.fail(p.log, ledger.HostError(fmt.Errorf("decode execute message: %w", err)))
	}

	switch {
	case msg.SendDuo != nil && msg.Withdraw == nil:
		return p.call("send_duo", func(st ledger.State) (ledger.State, *Response, error) {
			return p.sendDuo(st, info, msg.SendDuo)
		})
	case msg.Withdraw != nil && msg.SendDuo == nil:
		return p.call("withdraw", func(st ledger.State) (ledger.State, *Response, error) {
			return p.withdraw(st, info, msg.Withdraw)
		})
	default:
		return nil, p.fail(p.log, ledger.HostError(errors.New("execute message must contain exactly one operation")))
	}
}

// Query runs the JSON-encoded QueryMsg and returns JSON-encoded response.
func (p *Processor) Query(raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := decodeMsg(raw, &msg); err != nil {
		return nil, ledger.HostError(fmt.Errorf("decode query message: %w", err))
	}

	p.mtx.Lock()
	st, err := loadState(p.store)
	p.mtx.Unlock()
	if err != nil {
		return nil, ledger.HostError(err)
	}

	var resp any

	switch {
	case msg.GetOwner != nil && msg.GetBalance == nil && msg.GetFixedFee == nil:
		resp = OwnerResponse{Owner: string(st.Owner)}
	case msg.GetBalance != nil && msg.GetOwner == nil && msg.GetFixedFee == nil:
		acc, err := parseIdentity(msg.GetBalance.Address)
		if err != nil {
			return nil, ledger.HostError(fmt.Errorf("address: %w", err))
		}
		resp = BalanceResponse{Balance: Amount(*st.BalanceOf(acc))}
	case msg.GetFixedFee != nil && msg.GetOwner == nil && msg.GetBalance == nil:
		resp = FixedFeeResponse{FixedFee: Amount(st.FixedFee)}
	default:
		return nil, ledger.HostError(errors.New("query message must contain exactly one query"))
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, ledger.HostError(fmt.Errorf("encode query response: %w", err))
	}

	return data, nil
}

func (p *Processor) call(method string, op operation) (*Response, error) {
	id := uuid.New()
	log := p.log.With(zap.Stringer("id", id), zap.String("method", method))

	p.mtx.Lock()
	defer p.mtx.Unlock()

	cache := storage.NewMemCachedStore(p.store)

	prev, err := loadState(cache)
	if err != nil {
		return nil, p.fail(log, ledger.HostError(err))
	}

	next, resp, err := op(prev)
	if err != nil {
		return nil, p.fail(log, err)
	}

	storeState(cache, prev, next)

	if _, err := cache.Persist(); err != nil {
		return nil, p.fail(log, ledger.HostError(fmt.Errorf("persist state: %w", err)))
	}

	resp.ID = id

	log.Debug("call succeeded",
		zap.Any("attributes", resp.Attributes),
		zap.Int("transfers", len(resp.Transfers)))

	return resp, nil
}

func (p *Processor) sendDuo(st ledger.State, info MessageInfo, msg *SendDuoMsg) (ledger.State, *Response, error) {
	rcv1, err := parseIdentity(msg.Receiver1)
	if err != nil {
		return st, nil, ledger.HostError(fmt.Errorf("receiver1: %w", err))
	}

	rcv2, err := parseIdentity(msg.Receiver2)
	if err != nil {
		return st, nil, ledger.HostError(fmt.Errorf("receiver2: %w", err))
	}

	coins := make([]ledger.Coin, 0, len(info.Funds))
	for i := range info.Funds {
		coins = append(coins, ledger.Coin{
			Denom:  info.Funds[i].Denom,
			Amount: uint256.Int(info.Funds[i].Amount),
		})
	}

	funded, err := ledger.SumFunds(coins, p.denom)
	if err != nil {
		return st, nil, err
	}

	next, split, err := ledger.Deposit(st, funded, rcv1, rcv2)
	if err != nil {
		return st, nil, err
	}

	return next, &Response{
		Attributes: []Attribute{
			attr("method", "send_duo"),
			attr("sender", info.Sender),
			attr("receiver1", string(rcv1)),
			attr("receiver2", string(rcv2)),
			attr("share", Amount(split.Share).String()),
			attr("fixed_fee", Amount(split.Fee).String()),
			attr("burned", Amount(split.Burned).String()),
		},
	}, nil
}

func (p *Processor) withdraw(st ledger.State, info MessageInfo, msg *WithdrawMsg) (ledger.State, *Response, error) {
	next, instr, err := ledger.Withdraw(st, ledger.Identity(info.Sender), msg.Amount.Int())
	if err != nil {
		return st, nil, err
	}

	amount := Amount(instr.Amount)

	return next, &Response{
		Attributes: []Attribute{
			attr("method", "withdraw"),
			attr("recipient", string(instr.To)),
			attr("amount", amount.String()),
		},
		Transfers: []Transfer{{
			To:     string(instr.To),
			Denom:  p.denom,
			Amount: amount,
		}},
	}, nil
}

func (p *Processor) fail(log *zap.Logger, err error) error {
	log.Info("call failed",
		zap.Bool("caller_correctable", ledger.IsCallerCorrectable(err)),
		zap.Error(err))

	return err
}

// parseIdentity checks that s is a valid Neo address. Identities are kept in
// the form they are given.
func parseIdentity(s string) (ledger.Identity, error) {
	if _, err := address.StringToUint160(s); err != nil {
		return "", fmt.Errorf("invalid address %q: %w", s, err)
	}

	return ledger.Identity(s), nil
}

func decodeMsg(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}
