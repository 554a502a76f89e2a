package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Trace types as reported by trace_block.
const (
	TraceTypeCall    = "call"
	TraceTypeCreate  = "create"
	TraceTypeSuicide = "suicide"
	TraceTypeReward  = "reward"
)

// Call types of a call frame. Delegated frames run the target's code in the caller's
// context.
const (
	CallTypeCall         = "call"
	CallTypeStaticCall   = "staticcall"
	CallTypeDelegateCall = "delegatecall"
	CallTypeCallCode     = "callcode"
)

// CallTrace is one recorded call frame of a transaction. An empty Type means a call.
type CallTrace struct {
	Type         string         `json:"type,omitempty"`
	CallType     string         `json:"call_type,omitempty"`
	From         common.Address `json:"from"`
	To           common.Address `json:"to"`
	Input        hexutil.Bytes  `json:"input"`
	Value        *hexutil.Big   `json:"value,omitempty"`
	TxHash       common.Hash    `json:"tx_hash"`
	BlockNumber  uint64         `json:"block_number"`
	TxPosition   uint64         `json:"tx_position"`
	TraceAddress []uint64       `json:"trace_address"`
	Error        string         `json:"error,omitempty"`
}

// IsCall reports whether the trace is a call frame.
func (t CallTrace) IsCall() bool {
	return t.Type == "" || t.Type == TraceTypeCall
}

// IsDelegated reports whether the frame runs To's code on behalf of From.
func (t CallTrace) IsDelegated() bool {
	return t.CallType == CallTypeDelegateCall || t.CallType == CallTypeCallCode
}

// Clone returns a deep copy so the result shares no memory with the caller's trace.
func (t CallTrace) Clone() CallTrace {
	out := t
	if t.Input != nil {
		out.Input = append(hexutil.Bytes{}, t.Input...)
	}
	if t.Value != nil {
		v := new(hexutil.Big)
		v.ToInt().Set(t.Value.ToInt())
		out.Value = v
	}
	if t.TraceAddress != nil {
		out.TraceAddress = append([]uint64{}, t.TraceAddress...)
	}
	return out
}
