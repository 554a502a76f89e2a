package tokens

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"actionScope/internal/model"
	"actionScope/internal/registry"
)

// Caller performs read-only contract calls. *chain.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Some early tokens (MKR, SAI) return bytes32 from symbol/name.
const erc20Bytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	bytes32ABI     abi.ABI
	bytes32ABIOnce sync.Once
	bytes32ABIErr  error
)

func bytes32Instance() (abi.ABI, error) {
	bytes32ABIOnce.Do(func() {
		bytes32ABI, bytes32ABIErr = abi.JSON(strings.NewReader(erc20Bytes32JSON))
	})
	return bytes32ABI, bytes32ABIErr
}

func erc20Method(name string) (abi.Method, error) {
	reg, err := registry.Default()
	if err != nil {
		return abi.Method{}, err
	}
	iface, ok := reg.Interface(registry.ERC20)
	if !ok {
		return abi.Method{}, fmt.Errorf("registry has no %s interface", registry.ERC20)
	}
	fn, ok := iface.Function(name)
	if !ok {
		return abi.Method{}, fmt.Errorf("%s has no %s", registry.ERC20, name)
	}
	return fn.Method, nil
}

func callMethod(ctx context.Context, caller Caller, token common.Address, method abi.Method) ([]interface{}, error) {
	msg := ethereum.CallMsg{To: &token, Data: append([]byte{}, method.ID...)}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method.Name, err)
	}
	values, err := method.Outputs.Unpack(resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method.Name, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method.Name)
	}
	return values, nil
}

// FetchMeta loads token metadata via ERC20 calls. Decimals is required; symbol and name
// are best effort, with a bytes32 fallback.
func FetchMeta(ctx context.Context, caller Caller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token}
	if caller == nil {
		return meta, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	decimalsMethod, err := erc20Method("decimals")
	if err != nil {
		return meta, err
	}
	values, err := callMethod(ctx, caller, token, decimalsMethod)
	if err != nil {
		return meta, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return meta, fmt.Errorf("unsupported decimals type %T", values[0])
	}
	meta.Decimals = decimals

	meta.Symbol = fetchText(ctx, caller, token, "symbol", logger)
	meta.Name = fetchText(ctx, caller, token, "name", logger)
	return meta, nil
}

func fetchText(ctx context.Context, caller Caller, token common.Address, name string, logger *zap.Logger) string {
	method, err := erc20Method(name)
	if err != nil {
		return ""
	}
	values, err := callMethod(ctx, caller, token, method)
	if err == nil {
		if text, ok := values[0].(string); ok {
			return text
		}
	}

	fallback, abiErr := bytes32Instance()
	if abiErr != nil {
		return ""
	}
	values, err = callMethod(ctx, caller, token, fallback.Methods[name])
	if err != nil {
		logger.Debug(name+" call failed", zap.String("token", token.Hex()), zap.Error(err))
		return ""
	}
	if raw, ok := values[0].([32]byte); ok {
		return string(bytes.TrimRight(raw[:], "\x00"))
	}
	return ""
}
