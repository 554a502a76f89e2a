package classify

import (
	"context"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"actionScope/internal/model"
	"actionScope/internal/numeric"
	"actionScope/internal/registry"
	"actionScope/internal/resolver"
)

var (
	tokenAddr   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	senderAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	recvAddr    = common.HexToAddress("0x3333333333333333333333333333333333333333")
	factoryAddr = common.HexToAddress("0x4444444444444444444444444444444444444444")
	poolAddr    = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

const createPoolOnlyABI = `[
  {"inputs": [{"name": "a", "type": "address"}, {"name": "b", "type": "address"}, {"name": "fee", "type": "uint24"}], "name": "createPool", "outputs": [{"name": "", "type": "address"}], "type": "function"}
]`

func defaultRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return reg
}

func newClassifier(t *testing.T, docs ...resolver.Document) *Classifier {
	t.Helper()
	res, err := resolver.New(docs...)
	require.NoError(t, err)
	c, err := New(defaultRegistry(t), res, WithWorkers(4))
	require.NoError(t, err)
	return c
}

func payload(t *testing.T, iface, fn string, args ...interface{}) hexutil.Bytes {
	t.Helper()
	i, ok := defaultRegistry(t).Interface(iface)
	require.True(t, ok, iface)
	schema, ok := i.Function(fn)
	require.True(t, ok, fn)
	packed, err := schema.Method.Inputs.Pack(args...)
	require.NoError(t, err)
	return append(append(hexutil.Bytes{}, schema.Selector[:]...), packed...)
}

func callTrace(to common.Address, input hexutil.Bytes) model.CallTrace {
	return model.CallTrace{
		Type:         model.TraceTypeCall,
		CallType:     "call",
		From:         senderAddr,
		To:           to,
		Input:        input,
		TxHash:       common.HexToHash("0xabc"),
		BlockNumber:  19000000,
		TxPosition:   3,
		TraceAddress: []uint64{0, 1},
	}
}

func TestClassifyTransfer(t *testing.T) {
	c := newClassifier(t)
	amount, _ := new(big.Int).SetString("1000000000000000000000", 10)
	trace := callTrace(tokenAddr, payload(t, registry.ERC20, "transfer", recvAddr, amount))

	action := c.Classify(trace)
	require.Equal(t, model.KindTransfer, action.Kind)
	require.Equal(t, registry.ERC20, action.Protocol)
	require.Equal(t, "transfer", action.Function)
	require.NotNil(t, action.Transfer)
	require.Equal(t, tokenAddr, action.Transfer.Token)
	require.Equal(t, senderAddr, action.Transfer.From)
	require.Equal(t, recvAddr, action.Transfer.To)
	require.Equal(t, 0, action.Transfer.Amount.Big().Cmp(amount))
	require.Equal(t, trace.TxHash, action.TxHash)
	require.Equal(t, trace.BlockNumber, action.BlockNumber)
	require.Equal(t, trace.TraceAddress, action.TraceAddress)
}

func TestClassifyTransferFrom(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(tokenAddr, payload(t, registry.ERC20, "transferFrom", recvAddr, poolAddr, big.NewInt(7)))

	action := c.Classify(trace)
	require.Equal(t, model.KindTransfer, action.Kind)
	require.Equal(t, recvAddr, action.Transfer.From)
	require.Equal(t, poolAddr, action.Transfer.To)
	require.True(t, action.Transfer.Amount.Eq(numeric.U256FromUint64(7)))
}

func TestClassifyShortPayload(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(tokenAddr, hexutil.Bytes{0xa9, 0x05})

	action := c.Classify(trace)
	require.Equal(t, model.KindUnclassified, action.Kind)
	require.Equal(t, model.ReasonShortPayload, action.Unclassified.Reason)
	require.True(t, reflect.DeepEqual(trace, action.Unclassified.Trace))
}

func TestClassifyTruncatedWithdraw(t *testing.T) {
	c := newClassifier(t)
	full := payload(t, registry.WETH, "withdraw", big.NewInt(5))
	trace := callTrace(tokenAddr, full[:4+16])

	action := c.Classify(trace)
	require.Equal(t, model.KindUnclassified, action.Kind)
	require.Equal(t, model.ReasonNoMatch, action.Unclassified.Reason)
	require.Equal(t, []byte(trace.Input), []byte(action.Unclassified.Trace.Input))
}

func TestClassifyResolverPrecedence(t *testing.T) {
	iface, err := registry.ParseInterface("CustomFactory", []byte(createPoolOnlyABI))
	require.NoError(t, err)
	c := newClassifier(t, resolver.Document{Address: factoryAddr, Interface: iface})

	// A transfer payload sent to the registered address never becomes a Transfer.
	transfer := callTrace(factoryAddr, payload(t, registry.ERC20, "transfer", recvAddr, big.NewInt(1)))
	action := c.Classify(transfer)
	require.Equal(t, model.KindUnclassified, action.Kind)
	require.Equal(t, model.ReasonUnknownSelector, action.Unclassified.Reason)

	create := callTrace(factoryAddr, payload(t, registry.PoolFactory, "createPool", tokenAddr, recvAddr, big.NewInt(3000)))
	action = c.Classify(create)
	require.Equal(t, model.KindPoolCreation, action.Kind)
	require.Equal(t, "CustomFactory", action.Protocol)
	require.Equal(t, factoryAddr, action.PoolCreation.Factory)
	require.Equal(t, tokenAddr, action.PoolCreation.Token0)
	require.Equal(t, recvAddr, action.PoolCreation.Token1)
	require.True(t, action.PoolCreation.Fee.Eq(numeric.U256FromUint64(3000)))

	// Other addresses still go through the registry.
	action = c.Classify(callTrace(tokenAddr, transfer.Input))
	require.Equal(t, model.KindTransfer, action.Kind)
}

func TestClassifyUnknownSelectorKeepsTrace(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(tokenAddr, hexutil.Bytes{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02})
	trace.Value = (*hexutil.Big)(big.NewInt(42))

	action := c.Classify(trace)
	require.Equal(t, model.KindUnclassified, action.Kind)
	require.Equal(t, model.ReasonUnknownSelector, action.Unclassified.Reason)
	require.True(t, reflect.DeepEqual(trace, action.Unclassified.Trace))

	// The retained trace does not alias the input.
	trace.Input[0] = 0x00
	require.Equal(t, byte(0xde), action.Unclassified.Trace.Input[0])
}

func TestClassifyNotACall(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(common.Address{}, payload(t, registry.ERC20, "transfer", recvAddr, big.NewInt(1)))
	trace.Type = model.TraceTypeCreate

	action := c.Classify(trace)
	require.Equal(t, model.KindUnclassified, action.Kind)
	require.Equal(t, model.ReasonNotACall, action.Unclassified.Reason)
}

func TestClassifyDelegatedFrames(t *testing.T) {
	c := newClassifier(t)
	input := payload(t, registry.ERC20, "transfer", recvAddr, big.NewInt(1))

	for _, callType := range []string{model.CallTypeDelegateCall, model.CallTypeCallCode} {
		trace := callTrace(tokenAddr, input)
		trace.CallType = callType

		action := c.Classify(trace)
		require.Equal(t, model.KindUnclassified, action.Kind, callType)
		require.Equal(t, model.ReasonNotACall, action.Unclassified.Reason)
		require.Equal(t, callType, action.Unclassified.Detail)
	}

	for _, callType := range []string{"", model.CallTypeCall, model.CallTypeStaticCall} {
		trace := callTrace(tokenAddr, input)
		trace.CallType = callType
		require.Equal(t, model.KindTransfer, c.Classify(trace).Kind, callType)
	}
}

func TestClassifyEmptyTypeIsCall(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(tokenAddr, payload(t, registry.ERC20, "transfer", recvAddr, big.NewInt(9)))
	trace.Type = ""
	trace.CallType = ""

	action := c.Classify(trace)
	require.Equal(t, model.KindTransfer, action.Kind)
	require.Equal(t, "9", action.Transfer.Amount.String())
}

func TestClassifyDepositUsesTraceValue(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(tokenAddr, payload(t, registry.WETH, "deposit"))
	trace.Value = (*hexutil.Big)(big.NewInt(1e18))

	action := c.Classify(trace)
	require.Equal(t, model.KindDeposit, action.Kind)
	require.Equal(t, tokenAddr, action.Deposit.Token)
	require.Equal(t, senderAddr, action.Deposit.Account)
	require.Equal(t, "1000000000000000000", action.Deposit.Amount.String())
}

func TestClassifyWithdraw(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(tokenAddr, payload(t, registry.WETH, "withdraw", big.NewInt(99)))

	action := c.Classify(trace)
	require.Equal(t, model.KindWithdrawal, action.Kind)
	require.Equal(t, registry.WETH, action.Protocol)
	require.True(t, action.Withdrawal.Amount.Eq(numeric.U256FromUint64(99)))
}

func TestClassifyNumericOverflow(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(tokenAddr, payload(t, registry.WETH, "deposit"))
	huge := new(big.Int).Lsh(big.NewInt(1), 300)
	trace.Value = (*hexutil.Big)(huge)

	action := c.Classify(trace)
	require.Equal(t, model.KindUnclassified, action.Kind)
	require.Equal(t, model.ReasonNumericOverflow, action.Unclassified.Reason)
	require.NotEmpty(t, action.Unclassified.Detail)
}

func TestClassifySwap(t *testing.T) {
	c := newClassifier(t)
	limit, _ := new(big.Int).SetString("1461446703485210103287273052203988822378723970341", 10)
	amount := big.NewInt(-500000)
	trace := callTrace(poolAddr, payload(t, registry.Pool, "swap", recvAddr, true, amount, limit, []byte{0xca, 0xfe}))

	action := c.Classify(trace)
	require.Equal(t, model.KindSwap, action.Kind)
	require.Equal(t, poolAddr, action.Swap.Pool)
	require.Equal(t, senderAddr, action.Swap.Sender)
	require.Equal(t, recvAddr, action.Swap.Recipient)
	require.True(t, action.Swap.ZeroForOne)
	require.Equal(t, -1, action.Swap.AmountSpecified.Sign())
	require.Equal(t, 0, action.Swap.AmountSpecified.Big().Cmp(amount))
	require.Equal(t, 0, action.Swap.SqrtPriceLimitX96.Big().Cmp(limit))
	require.Equal(t, []byte{0xca, 0xfe}, []byte(action.Swap.Data))
}

func TestClassifyCreatePair(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(factoryAddr, payload(t, registry.PoolFactory, "createPair", tokenAddr, recvAddr))

	action := c.Classify(trace)
	require.Equal(t, model.KindPoolCreation, action.Kind)
	require.True(t, action.PoolCreation.Fee.IsZero())
}

func TestClassifyUnmappedFunctionIsNoMatch(t *testing.T) {
	c := newClassifier(t)
	trace := callTrace(tokenAddr, payload(t, registry.ERC20, "approve", recvAddr, big.NewInt(1)))

	action := c.Classify(trace)
	require.Equal(t, model.KindUnclassified, action.Kind)
	require.Equal(t, model.ReasonNoMatch, action.Unclassified.Reason)
}

func TestClassifyBatchTotalAndOrdered(t *testing.T) {
	c := newClassifier(t)
	traces := []model.CallTrace{
		callTrace(tokenAddr, payload(t, registry.ERC20, "transfer", recvAddr, big.NewInt(1))),
		callTrace(tokenAddr, hexutil.Bytes{0x01}),
		callTrace(poolAddr, payload(t, registry.Pool, "swap", recvAddr, false, big.NewInt(10), big.NewInt(0), []byte{})),
		callTrace(tokenAddr, nil),
		callTrace(factoryAddr, payload(t, registry.PoolFactory, "createPool", tokenAddr, recvAddr, big.NewInt(500))),
	}
	for i := 0; i < 50; i++ {
		traces = append(traces, callTrace(tokenAddr, payload(t, registry.WETH, "withdraw", big.NewInt(int64(i)))))
	}

	actions, err := c.ClassifyBatch(context.Background(), traces)
	require.NoError(t, err)
	require.Len(t, actions, len(traces))

	require.Equal(t, model.KindTransfer, actions[0].Kind)
	require.Equal(t, model.KindUnclassified, actions[1].Kind)
	require.Equal(t, model.KindSwap, actions[2].Kind)
	require.Equal(t, model.KindUnclassified, actions[3].Kind)
	require.Equal(t, model.KindPoolCreation, actions[4].Kind)
	for i := 0; i < 50; i++ {
		a := actions[5+i]
		require.Equal(t, model.KindWithdrawal, a.Kind)
		require.True(t, a.Withdrawal.Amount.Eq(numeric.U256FromUint64(uint64(i))))
	}

	// Each element matches its standalone classification.
	for i, trace := range traces {
		require.Equal(t, c.Classify(trace), actions[i])
	}
}

func TestClassifyBatchEmpty(t *testing.T) {
	c := newClassifier(t)
	actions, err := c.ClassifyBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, actions)
}

func TestClassifyBatchCancelled(t *testing.T) {
	c := newClassifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	traces := []model.CallTrace{callTrace(tokenAddr, hexutil.Bytes{0x01})}
	_, err := c.ClassifyBatch(ctx, traces)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsUnknownRule(t *testing.T) {
	_, err := New(defaultRegistry(t), nil, WithPriority([]Rule{{Name: "x", Interface: "Nope"}}))
	require.Error(t, err)

	_, err = New(defaultRegistry(t), nil, WithPriority([]Rule{{Name: "x", Interface: registry.ERC20, Signatures: []string{"approve(address,uint256)"}}}))
	require.Error(t, err)

	_, err = New(nil, nil)
	require.Error(t, err)
}

func TestNilResolverUsesRegistry(t *testing.T) {
	c, err := New(defaultRegistry(t), nil)
	require.NoError(t, err)
	action := c.Classify(callTrace(tokenAddr, payload(t, registry.ERC20, "transfer", recvAddr, big.NewInt(1))))
	require.Equal(t, model.KindTransfer, action.Kind)
}
