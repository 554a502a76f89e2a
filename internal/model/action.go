package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"actionScope/internal/numeric"
)

// ActionKind tags the variant of an Action.
type ActionKind string

const (
	KindTransfer     ActionKind = "transfer"
	KindPoolCreation ActionKind = "pool_creation"
	KindSwap         ActionKind = "swap"
	KindDeposit      ActionKind = "deposit"
	KindWithdrawal   ActionKind = "withdrawal"
	KindUnclassified ActionKind = "unclassified"
)

// Action is the normalized classification of one CallTrace. Exactly one of the
// variant fields is set, matching Kind.
type Action struct {
	Kind         ActionKind  `json:"kind"`
	Protocol     string      `json:"protocol,omitempty"`
	Function     string      `json:"function,omitempty"`
	TxHash       common.Hash `json:"tx_hash"`
	BlockNumber  uint64      `json:"block_number"`
	TxPosition   uint64      `json:"tx_position"`
	TraceAddress []uint64    `json:"trace_address"`

	Transfer     *Transfer     `json:"transfer,omitempty"`
	PoolCreation *PoolCreation `json:"pool_creation,omitempty"`
	Swap         *Swap         `json:"swap,omitempty"`
	Deposit      *Deposit      `json:"deposit,omitempty"`
	Withdrawal   *Withdrawal   `json:"withdrawal,omitempty"`
	Unclassified *Unclassified `json:"unclassified,omitempty"`
}

// Transfer is an ERC20 transfer or transferFrom.
type Transfer struct {
	Token  common.Address `json:"token"`
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount numeric.U256   `json:"amount"`
}

// PoolCreation is a factory call creating a pool. Fee is zero for fee-less pairs.
type PoolCreation struct {
	Factory common.Address `json:"factory"`
	Token0  common.Address `json:"token0"`
	Token1  common.Address `json:"token1"`
	Fee     numeric.U256   `json:"fee"`
}

// Swap is a direct pool swap call.
type Swap struct {
	Pool              common.Address `json:"pool"`
	Sender            common.Address `json:"sender"`
	Recipient         common.Address `json:"recipient"`
	ZeroForOne        bool           `json:"zero_for_one"`
	AmountSpecified   numeric.I256   `json:"amount_specified"`
	SqrtPriceLimitX96 numeric.U256   `json:"sqrt_price_limit_x96"`
	Data              hexutil.Bytes  `json:"data,omitempty"`
}

// Deposit wraps native currency into the wrapped-asset token.
type Deposit struct {
	Token   common.Address `json:"token"`
	Account common.Address `json:"account"`
	Amount  numeric.U256   `json:"amount"`
}

// Withdrawal unwraps the wrapped-asset token into native currency.
type Withdrawal struct {
	Token   common.Address `json:"token"`
	Account common.Address `json:"account"`
	Amount  numeric.U256   `json:"amount"`
}

// Reasons attached to Unclassified actions.
const (
	ReasonShortPayload    = "short_payload"
	ReasonNotACall        = "not_a_call"
	ReasonUnknownSelector = "unknown_selector"
	ReasonNoMatch         = "no_match"
	ReasonNumericOverflow = "numeric_overflow"
)

// Unclassified keeps the source trace verbatim.
type Unclassified struct {
	Reason string    `json:"reason"`
	Detail string    `json:"detail,omitempty"`
	Trace  CallTrace `json:"trace"`
}
