package classify

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"actionScope/internal/decoder"
	"actionScope/internal/model"
	"actionScope/internal/numeric"
	"actionScope/internal/registry"
)

// Canonical signatures with an Action mapping.
const (
	SigTransfer     = "transfer(address,uint256)"
	SigTransferFrom = "transferFrom(address,address,uint256)"
	SigCreatePool   = "createPool(address,address,uint24)"
	SigCreatePair   = "createPair(address,address)"
	SigDeposit      = "deposit()"
	SigWithdraw     = "withdraw(uint256)"
	SigSwap         = "swap(address,bool,int256,uint160,bytes)"
)

// Rule is one step of the registry probe: functions of one interface tried together.
type Rule struct {
	Name       string
	Interface  string
	Signatures []string
}

func (r Rule) allows(signature string) bool {
	for _, sig := range r.Signatures {
		if sig == signature {
			return true
		}
	}
	return false
}

// DefaultPriority is the fixed registry probe order. The first successful decode wins.
var DefaultPriority = []Rule{
	{Name: "transfer", Interface: registry.ERC20, Signatures: []string{SigTransfer, SigTransferFrom}},
	{Name: "pool_creation", Interface: registry.PoolFactory, Signatures: []string{SigCreatePool, SigCreatePair}},
	{Name: "wrapped_asset", Interface: registry.WETH, Signatures: []string{SigDeposit, SigWithdraw}},
	{Name: "swap", Interface: registry.Pool, Signatures: []string{SigSwap}},
}

// mapper fills the variant of action from a decoded call. Parameters are read by
// position so ABI documents with other parameter names map the same way.
type mapper func(call *decoder.DecodedCall, trace *model.CallTrace, action *model.Action) error

var mappers = map[string]mapper{
	SigTransfer:     mapTransfer,
	SigTransferFrom: mapTransferFrom,
	SigCreatePool:   mapCreatePool,
	SigCreatePair:   mapCreatePair,
	SigDeposit:      mapDeposit,
	SigWithdraw:     mapWithdraw,
	SigSwap:         mapSwap,
}

// HasMapping reports whether a signature maps to an Action variant.
func HasMapping(signature string) bool {
	_, ok := mappers[signature]
	return ok
}

func mapTransfer(call *decoder.DecodedCall, trace *model.CallTrace, action *model.Action) error {
	to, err := addressAt(call, 0)
	if err != nil {
		return err
	}
	amount, err := u256At(call, 1)
	if err != nil {
		return err
	}
	action.Kind = model.KindTransfer
	action.Transfer = &model.Transfer{Token: trace.To, From: trace.From, To: to, Amount: amount}
	return nil
}

func mapTransferFrom(call *decoder.DecodedCall, trace *model.CallTrace, action *model.Action) error {
	from, err := addressAt(call, 0)
	if err != nil {
		return err
	}
	to, err := addressAt(call, 1)
	if err != nil {
		return err
	}
	amount, err := u256At(call, 2)
	if err != nil {
		return err
	}
	action.Kind = model.KindTransfer
	action.Transfer = &model.Transfer{Token: trace.To, From: from, To: to, Amount: amount}
	return nil
}

func mapCreatePool(call *decoder.DecodedCall, trace *model.CallTrace, action *model.Action) error {
	token0, err := addressAt(call, 0)
	if err != nil {
		return err
	}
	token1, err := addressAt(call, 1)
	if err != nil {
		return err
	}
	fee, err := u256At(call, 2)
	if err != nil {
		return err
	}
	action.Kind = model.KindPoolCreation
	action.PoolCreation = &model.PoolCreation{Factory: trace.To, Token0: token0, Token1: token1, Fee: fee}
	return nil
}

func mapCreatePair(call *decoder.DecodedCall, trace *model.CallTrace, action *model.Action) error {
	token0, err := addressAt(call, 0)
	if err != nil {
		return err
	}
	token1, err := addressAt(call, 1)
	if err != nil {
		return err
	}
	action.Kind = model.KindPoolCreation
	action.PoolCreation = &model.PoolCreation{Factory: trace.To, Token0: token0, Token1: token1}
	return nil
}

func mapDeposit(_ *decoder.DecodedCall, trace *model.CallTrace, action *model.Action) error {
	amount, err := nativeValue(trace)
	if err != nil {
		return err
	}
	action.Kind = model.KindDeposit
	action.Deposit = &model.Deposit{Token: trace.To, Account: trace.From, Amount: amount}
	return nil
}

func mapWithdraw(call *decoder.DecodedCall, trace *model.CallTrace, action *model.Action) error {
	amount, err := u256At(call, 0)
	if err != nil {
		return err
	}
	action.Kind = model.KindWithdrawal
	action.Withdrawal = &model.Withdrawal{Token: trace.To, Account: trace.From, Amount: amount}
	return nil
}

func mapSwap(call *decoder.DecodedCall, trace *model.CallTrace, action *model.Action) error {
	recipient, err := addressAt(call, 0)
	if err != nil {
		return err
	}
	zeroForOne, err := boolAt(call, 1)
	if err != nil {
		return err
	}
	amountSpecified, err := i256At(call, 2)
	if err != nil {
		return err
	}
	limit, err := u256At(call, 3)
	if err != nil {
		return err
	}
	data, err := bytesAt(call, 4)
	if err != nil {
		return err
	}
	action.Kind = model.KindSwap
	action.Swap = &model.Swap{
		Pool:              trace.To,
		Sender:            trace.From,
		Recipient:         recipient,
		ZeroForOne:        zeroForOne,
		AmountSpecified:   amountSpecified,
		SqrtPriceLimitX96: limit,
		Data:              data,
	}
	return nil
}

func nativeValue(trace *model.CallTrace) (numeric.U256, error) {
	if trace.Value == nil {
		return numeric.U256{}, nil
	}
	return numeric.U256FromBig(trace.Value.ToInt())
}

func paramAt(call *decoder.DecodedCall, i int) (decoder.Value, error) {
	if i >= len(call.Params) {
		return nil, fmt.Errorf("%s: missing param %d", call.Signature, i)
	}
	return call.Params[i].Value, nil
}

func addressAt(call *decoder.DecodedCall, i int) (common.Address, error) {
	v, err := paramAt(call, i)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: param %d is %T, want address", call.Signature, i, v)
	}
	return addr, nil
}

func u256At(call *decoder.DecodedCall, i int) (numeric.U256, error) {
	v, err := paramAt(call, i)
	if err != nil {
		return numeric.U256{}, err
	}
	n, ok := v.(numeric.U256)
	if !ok {
		return numeric.U256{}, fmt.Errorf("%s: param %d is %T, want uint", call.Signature, i, v)
	}
	return n, nil
}

func i256At(call *decoder.DecodedCall, i int) (numeric.I256, error) {
	v, err := paramAt(call, i)
	if err != nil {
		return numeric.I256{}, err
	}
	n, ok := v.(numeric.I256)
	if !ok {
		return numeric.I256{}, fmt.Errorf("%s: param %d is %T, want int", call.Signature, i, v)
	}
	return n, nil
}

func boolAt(call *decoder.DecodedCall, i int) (bool, error) {
	v, err := paramAt(call, i)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: param %d is %T, want bool", call.Signature, i, v)
	}
	return b, nil
}

func bytesAt(call *decoder.DecodedCall, i int) ([]byte, error) {
	v, err := paramAt(call, i)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%s: param %d is %T, want bytes", call.Signature, i, v)
	}
	return b, nil
}
