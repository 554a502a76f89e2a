package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"actionScope/internal/model"
)

// ParityTrace is one entry of a trace_block response.
type ParityTrace struct {
	Action              ParityTraceAction  `json:"action"`
	BlockHash           *common.Hash       `json:"blockHash"`
	BlockNumber         uint64             `json:"blockNumber"`
	Result              *ParityTraceResult `json:"result"`
	Subtraces           uint64             `json:"subtraces"`
	TraceAddress        []uint64           `json:"traceAddress"`
	TransactionHash     *common.Hash       `json:"transactionHash"`
	TransactionPosition *uint64            `json:"transactionPosition"`
	Type                string             `json:"type"`
	Error               string             `json:"error,omitempty"`
}

// ParityTraceAction holds the fields of every trace type; which are set depends on Type.
type ParityTraceAction struct {
	From     *common.Address `json:"from,omitempty"`
	To       *common.Address `json:"to,omitempty"`
	CallType string          `json:"callType,omitempty"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	Input    hexutil.Bytes   `json:"input,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`

	// create
	Init hexutil.Bytes `json:"init,omitempty"`

	// suicide
	Address       *common.Address `json:"address,omitempty"`
	RefundAddress *common.Address `json:"refundAddress,omitempty"`
	Balance       *hexutil.Big    `json:"balance,omitempty"`

	// reward
	Author     *common.Address `json:"author,omitempty"`
	RewardType string          `json:"rewardType,omitempty"`
}

// ParityTraceResult is the outcome of a call or create.
type ParityTraceResult struct {
	GasUsed *hexutil.Uint64 `json:"gasUsed,omitempty"`
	Output  hexutil.Bytes   `json:"output,omitempty"`
	Address *common.Address `json:"address,omitempty"`
	Code    hexutil.Bytes   `json:"code,omitempty"`
}

// CallTrace converts the wire entry into the classifier's input record. Every entry
// converts: fields missing on the wire stay zero and unknown types keep their raw Type,
// so the classifier reports them instead of the block being dropped.
func (p ParityTrace) CallTrace() model.CallTrace {
	out := model.CallTrace{
		Type:         p.Type,
		BlockNumber:  p.BlockNumber,
		TraceAddress: append([]uint64{}, p.TraceAddress...),
		Error:        p.Error,
	}
	if p.TransactionHash != nil {
		out.TxHash = *p.TransactionHash
	}
	if p.TransactionPosition != nil {
		out.TxPosition = *p.TransactionPosition
	}

	a := p.Action
	switch p.Type {
	case model.TraceTypeCreate:
		setAddress(&out.From, a.From)
		if p.Result != nil {
			setAddress(&out.To, p.Result.Address)
		}
		out.Input = a.Init
		out.Value = a.Value
	case model.TraceTypeSuicide:
		setAddress(&out.From, a.Address)
		setAddress(&out.To, a.RefundAddress)
		out.Value = a.Balance
	case model.TraceTypeReward:
		setAddress(&out.To, a.Author)
		out.Value = a.Value
	default:
		out.CallType = a.CallType
		setAddress(&out.From, a.From)
		setAddress(&out.To, a.To)
		out.Input = a.Input
		out.Value = a.Value
	}
	return out
}

func setAddress(dst *common.Address, src *common.Address) {
	if src != nil {
		*dst = *src
	}
}
