package numeric

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestFromUnsignedMaxMagnitude(t *testing.T) {
	for width := 8; width <= MaxWidth; width += 8 {
		max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))

		got, err := FromUnsigned(width, max)
		require.NoError(t, err, "uint%d", width)
		require.Zero(t, got.Big().Cmp(max), "uint%d round trip", width)

		over := new(big.Int).Add(max, big.NewInt(1))
		_, err = FromUnsigned(width, over)
		require.ErrorIs(t, err, ErrNumericOverflow, "uint%d overflow", width)
	}
}

func TestFromSignedExtremes(t *testing.T) {
	for width := 8; width <= MaxWidth; width += 8 {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
		min := new(big.Int).Neg(limit)
		max := new(big.Int).Sub(limit, big.NewInt(1))

		got, err := FromSigned(width, min)
		require.NoError(t, err, "int%d min", width)
		require.Zero(t, got.Big().Cmp(min), "int%d min round trip", width)
		require.Equal(t, -1, got.Sign())

		got, err = FromSigned(width, max)
		require.NoError(t, err, "int%d max", width)
		require.Zero(t, got.Big().Cmp(max), "int%d max round trip", width)

		_, err = FromSigned(width, new(big.Int).Add(max, big.NewInt(1)))
		require.ErrorIs(t, err, ErrNumericOverflow)
		_, err = FromSigned(width, new(big.Int).Sub(min, big.NewInt(1)))
		require.ErrorIs(t, err, ErrNumericOverflow)
	}
}

func TestNativeWidths(t *testing.T) {
	cases := []struct {
		width int
		value interface{}
		want  string
	}{
		{8, uint8(math.MaxUint8), "255"},
		{16, uint16(math.MaxUint16), "65535"},
		{32, uint32(math.MaxUint32), "4294967295"},
		{64, uint64(math.MaxUint64), "18446744073709551615"},
	}
	for _, tc := range cases {
		got, err := FromUnsigned(tc.width, tc.value)
		require.NoError(t, err)
		require.Equal(t, tc.want, got.String())
	}

	signed := []struct {
		width int
		value interface{}
		want  string
	}{
		{8, int8(math.MinInt8), "-128"},
		{16, int16(math.MinInt16), "-32768"},
		{32, int32(math.MinInt32), "-2147483648"},
		{64, int64(math.MinInt64), "-9223372036854775808"},
		{64, int64(math.MaxInt64), "9223372036854775807"},
	}
	for _, tc := range signed {
		got, err := FromSigned(tc.width, tc.value)
		require.NoError(t, err)
		require.Equal(t, tc.want, got.String())
	}
}

func TestUnsupportedWidth(t *testing.T) {
	_, err := FromUnsigned(264, big.NewInt(1))
	require.True(t, errors.Is(err, ErrNumericOverflow))
	_, err = FromSigned(0, int64(1))
	require.True(t, errors.Is(err, ErrNumericOverflow))
	_, err = FromUnsigned(12, uint8(1))
	require.True(t, errors.Is(err, ErrNumericOverflow))
}

func TestUnsignedRejectsNegative(t *testing.T) {
	_, err := U256FromBig(big.NewInt(-1))
	require.ErrorIs(t, err, ErrNumericOverflow)
}

func TestI256FromInt64(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 42, -42, math.MinInt64, math.MaxInt64} {
		got := I256FromInt64(v)
		require.Equal(t, big.NewInt(v).String(), got.String())
	}
}

func TestJSONDecimalStrings(t *testing.T) {
	type payload struct {
		Amount U256 `json:"amount"`
		Delta  I256 `json:"delta"`
	}
	in := payload{
		Amount: MustU256("115792089237316195423570985008687907853269984665640564039457584007913129639935"),
		Delta:  MustI256("-57896044618658097711785492504343953926634992332820282019728792003956564819968"),
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"amount": "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		"delta": "-57896044618658097711785492504343953926634992332820282019728792003956564819968"
	}`, string(data))

	var out payload
	require.NoError(t, json.Unmarshal(data, &out))
	require.True(t, in.Amount.Eq(out.Amount))
	require.True(t, in.Delta.Eq(out.Delta))
}

func TestAddressFrom(t *testing.T) {
	want := common.HexToAddress("0x1111111111111111111111111111111111111111")

	got, err := AddressFrom(want.Hex())
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = AddressFrom(common.BytesToHash(want.Bytes()))
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = AddressFrom(want.Bytes())
	require.NoError(t, err)
	require.Equal(t, want, got)

	dirty := common.BytesToHash(want.Bytes())
	dirty[0] = 0x01
	_, err = AddressFrom(dirty)
	require.ErrorIs(t, err, ErrNumericOverflow)

	_, err = AddressFrom([]byte{1, 2, 3})
	require.Error(t, err)
	_, err = AddressFrom("not-an-address")
	require.Error(t, err)
}
