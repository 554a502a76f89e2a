package numeric

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FromUnsigned widens an unsigned value declared as uint<width>.
// Accepted inputs are the native Go unsigned integers and *big.Int.
func FromUnsigned(width int, value interface{}) (U256, error) {
	if err := checkWidth(width); err != nil {
		return U256{}, err
	}

	var b *big.Int
	switch v := value.(type) {
	case uint8:
		b = new(big.Int).SetUint64(uint64(v))
	case uint16:
		b = new(big.Int).SetUint64(uint64(v))
	case uint32:
		b = new(big.Int).SetUint64(uint64(v))
	case uint64:
		b = new(big.Int).SetUint64(v)
	case uint:
		b = new(big.Int).SetUint64(uint64(v))
	case *big.Int:
		if v == nil {
			return U256{}, nil
		}
		b = v
	case big.Int:
		b = &v
	case U256:
		b = v.Big()
	default:
		return U256{}, fmt.Errorf("unsupported unsigned type %T", value)
	}

	if b.Sign() < 0 || b.BitLen() > width {
		return U256{}, fmt.Errorf("%w: %s does not fit uint%d", ErrNumericOverflow, b.String(), width)
	}
	return U256FromBig(b)
}

// FromSigned widens a signed value declared as int<width>.
func FromSigned(width int, value interface{}) (I256, error) {
	if err := checkWidth(width); err != nil {
		return I256{}, err
	}

	var b *big.Int
	switch v := value.(type) {
	case int8:
		b = big.NewInt(int64(v))
	case int16:
		b = big.NewInt(int64(v))
	case int32:
		b = big.NewInt(int64(v))
	case int64:
		b = big.NewInt(v)
	case int:
		b = big.NewInt(int64(v))
	case *big.Int:
		if v == nil {
			return I256{}, nil
		}
		b = v
	case big.Int:
		b = &v
	case I256:
		b = v.Big()
	default:
		return I256{}, fmt.Errorf("unsupported signed type %T", value)
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	lower := new(big.Int).Neg(limit)
	upper := new(big.Int).Sub(limit, big.NewInt(1))
	if b.Cmp(lower) < 0 || b.Cmp(upper) > 0 {
		return I256{}, fmt.Errorf("%w: %s does not fit int%d", ErrNumericOverflow, b.String(), width)
	}
	return I256FromBig(b)
}

func checkWidth(width int) error {
	if width <= 0 || width > MaxWidth || width%8 != 0 {
		return fmt.Errorf("%w: unsupported width %d", ErrNumericOverflow, width)
	}
	return nil
}

// AddressFrom converts any native address encoding into common.Address.
// Byte inputs may be the raw 20 bytes or a left-padded 32-byte word.
func AddressFrom(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v == nil {
			return common.Address{}, fmt.Errorf("nil address")
		}
		return *v, nil
	case [common.AddressLength]byte:
		return common.Address(v), nil
	case common.Hash:
		return addressFromWord(v.Bytes())
	case []byte:
		switch len(v) {
		case common.AddressLength:
			return common.BytesToAddress(v), nil
		case common.HashLength:
			return addressFromWord(v)
		default:
			return common.Address{}, fmt.Errorf("invalid address length %d", len(v))
		}
	case string:
		s := strings.TrimSpace(v)
		if !common.IsHexAddress(s) {
			return common.Address{}, fmt.Errorf("invalid address: %s", v)
		}
		return common.HexToAddress(s), nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func addressFromWord(word []byte) (common.Address, error) {
	for _, b := range word[:common.HashLength-common.AddressLength] {
		if b != 0 {
			return common.Address{}, fmt.Errorf("%w: address word has dirty high bytes %s", ErrNumericOverflow, hexutil.Encode(word))
		}
	}
	return common.BytesToAddress(word[common.HashLength-common.AddressLength:]), nil
}
