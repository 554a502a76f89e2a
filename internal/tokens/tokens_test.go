package tokens

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// fakeToken answers eth_call by selector.
type fakeToken struct {
	responses map[string][]byte
	calls     atomic.Int32
}

func (f *fakeToken) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls.Add(1)
	if resp, ok := f.responses[common.Bytes2Hex(msg.Data)]; ok {
		return resp, nil
	}
	return nil, errors.New("execution reverted")
}

func word(b []byte) []byte {
	return common.LeftPadBytes(b, 32)
}

func stringResult(s string) []byte {
	out := word([]byte{0x20})
	out = append(out, word(big.NewInt(int64(len(s))).Bytes())...)
	return append(out, common.RightPadBytes([]byte(s), 32)...)
}

const (
	decimalsSel = "313ce567"
	symbolSel   = "95d89b41"
	nameSel     = "06fdde03"
)

func TestFetchMetaStringToken(t *testing.T) {
	token := &fakeToken{responses: map[string][]byte{
		decimalsSel: word([]byte{6}),
		symbolSel:   stringResult("USDC"),
		nameSel:     stringResult("USD Coin"),
	}}

	meta, err := FetchMeta(context.Background(), token, common.HexToAddress("0x01"), nil)
	require.NoError(t, err)
	require.Equal(t, uint8(6), meta.Decimals)
	require.Equal(t, "USDC", meta.Symbol)
	require.Equal(t, "USD Coin", meta.Name)
}

func TestFetchMetaBytes32Token(t *testing.T) {
	token := &fakeToken{responses: map[string][]byte{
		decimalsSel: word([]byte{18}),
		symbolSel:   common.RightPadBytes([]byte("MKR"), 32),
	}}

	meta, err := FetchMeta(context.Background(), token, common.HexToAddress("0x02"), nil)
	require.NoError(t, err)
	require.Equal(t, uint8(18), meta.Decimals)
	require.Equal(t, "MKR", meta.Symbol)
	require.Empty(t, meta.Name)
}

func TestFetchMetaWithoutDecimals(t *testing.T) {
	_, err := FetchMeta(context.Background(), &fakeToken{}, common.HexToAddress("0x03"), nil)
	require.Error(t, err)

	_, err = FetchMeta(context.Background(), nil, common.HexToAddress("0x03"), nil)
	require.Error(t, err)
}

func TestCacheFetchesOnce(t *testing.T) {
	token := &fakeToken{responses: map[string][]byte{decimalsSel: word([]byte{8})}}
	cache := NewCache(token, nil)
	addr := common.HexToAddress("0x04")

	decimals, err := cache.Decimals(context.Background(), addr)
	require.NoError(t, err)
	require.Equal(t, uint8(8), decimals)
	calls := token.calls.Load()

	decimals, err = cache.Decimals(context.Background(), addr)
	require.NoError(t, err)
	require.Equal(t, uint8(8), decimals)
	require.Equal(t, calls, token.calls.Load())
}

func TestCacheRemembersFailure(t *testing.T) {
	token := &fakeToken{}
	cache := NewCache(token, nil)
	addr := common.HexToAddress("0x05")

	_, err := cache.Decimals(context.Background(), addr)
	require.Error(t, err)

	decimals, err := cache.Decimals(context.Background(), addr)
	require.NoError(t, err)
	require.Zero(t, decimals)
	require.Equal(t, int32(1), token.calls.Load())
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		value    *big.Int
		decimals uint8
		want     string
	}{
		{nil, 18, "0"},
		{big.NewInt(1234), 0, "1234"},
		{big.NewInt(1500000), 6, "1.500000"},
		{big.NewInt(-25), 2, "-0.25"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatAmount(tc.value, tc.decimals))
	}
}
