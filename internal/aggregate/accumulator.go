package aggregate

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"actionScope/internal/model"
)

// Accumulator holds flow totals for one token window.
type Accumulator struct {
	Token            common.Address
	WindowStart      uint64
	WindowEnd        uint64
	TransferCount    uint64
	DepositCount     uint64
	WithdrawalCount  uint64
	TransferVolume   *big.Int
	DepositVolume    *big.Int
	WithdrawalVolume *big.Int
	FirstBlock       uint64
	LastBlock        uint64
}

func NewAccumulator(token common.Address, block, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		Token:            token,
		WindowStart:      windowStart,
		WindowEnd:        windowEnd,
		TransferVolume:   big.NewInt(0),
		DepositVolume:    big.NewInt(0),
		WithdrawalVolume: big.NewInt(0),
		FirstBlock:       block,
		LastBlock:        block,
	}
}

// AddAction folds one action into the window. Actions of other kinds are ignored.
func (a *Accumulator) AddAction(action model.Action) {
	switch {
	case action.Transfer != nil:
		a.TransferCount++
		a.TransferVolume.Add(a.TransferVolume, action.Transfer.Amount.Big())
	case action.Deposit != nil:
		a.DepositCount++
		a.DepositVolume.Add(a.DepositVolume, action.Deposit.Amount.Big())
	case action.Withdrawal != nil:
		a.WithdrawalCount++
		a.WithdrawalVolume.Add(a.WithdrawalVolume, action.Withdrawal.Amount.Big())
	default:
		return
	}
	if action.BlockNumber < a.FirstBlock {
		a.FirstBlock = action.BlockNumber
	}
	if action.BlockNumber > a.LastBlock {
		a.LastBlock = action.BlockNumber
	}
}

// tokenOf returns the token an action moves, if it is a flow action.
func tokenOf(action model.Action) (common.Address, bool) {
	switch {
	case action.Transfer != nil:
		return action.Transfer.Token, true
	case action.Deposit != nil:
		return action.Deposit.Token, true
	case action.Withdrawal != nil:
		return action.Withdrawal.Token, true
	default:
		return common.Address{}, false
	}
}
