package tokens

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"actionScope/internal/model"
)

// Cache fetches token metadata once per address. Failed lookups are cached as
// zero-decimals metadata so a broken token is not queried again.
type Cache struct {
	caller Caller
	logger *zap.Logger

	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewCache(caller Caller, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{caller: caller, logger: logger, data: make(map[common.Address]model.TokenMeta)}
}

func (c *Cache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *Cache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// Meta returns cached metadata or fetches it over RPC.
func (c *Cache) Meta(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	if meta, ok := c.Get(token); ok {
		return meta, nil
	}
	meta, err := FetchMeta(ctx, c.caller, token, c.logger)
	if err != nil {
		c.logger.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
		if ctx.Err() == nil {
			c.Set(token, meta)
		}
		return meta, err
	}
	c.Set(token, meta)
	return meta, nil
}

// Decimals returns the token's decimals.
func (c *Cache) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	meta, err := c.Meta(ctx, token)
	return meta.Decimals, err
}

// FormatAmount renders a raw integer amount as a decimal string with the given decimals.
func FormatAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}
