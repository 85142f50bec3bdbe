package host

import (
	"github.com/google/uuid"
)

// Coin is an amount of some denomination attached to a call.
type Coin struct {
	Denom  string `json:"denom"`
	Amount Amount `json:"amount"`
}

// MessageInfo describes the authenticated caller and the funds attached to
// the call. It's filled by the environment, not by the caller.
type MessageInfo struct {
	Sender string
	Funds  []Coin
}

// InstantiateMsg creates the ledger. Empty Owner means the sender.
type InstantiateMsg struct {
	Owner    string `json:"owner,omitempty"`
	FixedFee Amount `json:"fixed_fee"`
}

// ExecuteMsg is a state changing call, exactly one field must be set.
type ExecuteMsg struct {
	SendDuo  *SendDuoMsg  `json:"send_duo,omitempty"`
	Withdraw *WithdrawMsg `json:"withdraw,omitempty"`
}

// SendDuoMsg deposits attached funds split between two receivers.
type SendDuoMsg struct {
	Receiver1 string `json:"receiver1"`
	Receiver2 string `json:"receiver2"`
}

// WithdrawMsg pays the amount from the sender's balance back to the sender.
type WithdrawMsg struct {
	Amount Amount `json:"amount"`
}

// QueryMsg is a read-only call, exactly one field must be set.
type QueryMsg struct {
	GetOwner    *struct{}        `json:"get_owner,omitempty"`
	GetBalance  *GetBalanceQuery `json:"get_balance,omitempty"`
	GetFixedFee *struct{}        `json:"get_fixed_fee,omitempty"`
}

// GetBalanceQuery requests the balance of the address.
type GetBalanceQuery struct {
	Address string `json:"address"`
}

// OwnerResponse is a response to get_owner query.
type OwnerResponse struct {
	Owner string `json:"owner"`
}

// BalanceResponse is a response to get_balance query.
type BalanceResponse struct {
	Balance Amount `json:"balance"`
}

// FixedFeeResponse is a response to get_fixed_fee query.
type FixedFeeResponse struct {
	FixedFee Amount `json:"fixed_fee"`
}

// Attribute is a key-value pair describing the call result.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Transfer is an outgoing payment the environment must execute together
// with the state commit.
type Transfer struct {
	To     string `json:"to"`
	Denom  string `json:"denom"`
	Amount Amount `json:"amount"`
}

// Response is a result of successful state changing call.
type Response struct {
	ID         uuid.UUID   `json:"id"`
	Attributes []Attribute `json:"attributes"`
	Transfers  []Transfer  `json:"transfers,omitempty"`
}

// Attribute returns the value of the first attribute with the given key.
func (r *Response) Attribute(key string) (string, bool) {
	for i := range r.Attributes {
		if r.Attributes[i].Key == key {
			return r.Attributes[i].Value, true
		}
	}

	return "", false
}

func attr(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}
