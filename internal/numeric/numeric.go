package numeric

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// MaxWidth is the widest integer encoding the canonical types hold.
const MaxWidth = 256

// ErrNumericOverflow reports a value or declared width the canonical types cannot hold.
var ErrNumericOverflow = errors.New("numeric overflow")

// U256 is the canonical unsigned 256-bit integer.
type U256 struct {
	n uint256.Int
}

// I256 is the canonical signed 256-bit integer, stored as two's complement.
type I256 struct {
	n uint256.Int
}

// U256FromUint64 widens a uint64.
func U256FromUint64(v uint64) U256 {
	var u U256
	u.n.SetUint64(v)
	return u
}

// U256FromBig converts a non-negative big.Int of at most 256 bits.
func U256FromBig(b *big.Int) (U256, error) {
	var u U256
	if b == nil {
		return u, nil
	}
	if b.Sign() < 0 {
		return U256{}, fmt.Errorf("%w: negative value %s for unsigned", ErrNumericOverflow, b.String())
	}
	if b.BitLen() > MaxWidth {
		return U256{}, fmt.Errorf("%w: %d bits", ErrNumericOverflow, b.BitLen())
	}
	u.n.SetFromBig(b)
	return u, nil
}

// MustU256 parses a decimal string and panics on failure. Intended for constants and tests.
func MustU256(dec string) U256 {
	b, ok := new(big.Int).SetString(dec, 10)
	if !ok {
		panic("numeric: invalid decimal " + dec)
	}
	u, err := U256FromBig(b)
	if err != nil {
		panic(err)
	}
	return u
}

// Big returns a fresh big.Int copy.
func (u U256) Big() *big.Int {
	return u.n.ToBig()
}

// IsZero reports whether the value is zero.
func (u U256) IsZero() bool {
	return u.n.IsZero()
}

// Eq reports equality.
func (u U256) Eq(o U256) bool {
	return u.n.Eq(&o.n)
}

// Bytes32 returns the big-endian 32-byte word.
func (u U256) Bytes32() [32]byte {
	return u.n.Bytes32()
}

func (u U256) String() string {
	return u.n.ToBig().String()
}

// MarshalJSON encodes the value as a decimal string.
func (u U256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string or a 0x-prefixed hex string.
func (u *U256) UnmarshalJSON(data []byte) error {
	b, err := parseJSONInt(data)
	if err != nil {
		return err
	}
	parsed, err := U256FromBig(b)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

var (
	minI256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), MaxWidth-1))
	maxI256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), MaxWidth-1), big.NewInt(1))
)

// I256FromInt64 widens an int64 with sign extension.
func I256FromInt64(v int64) I256 {
	var i I256
	if v < 0 {
		i.n.SetUint64(uint64(-(v + 1)))
		i.n.Not(&i.n)
		return i
	}
	i.n.SetUint64(uint64(v))
	return i
}

// I256FromBig converts a big.Int in [-2^255, 2^255-1].
func I256FromBig(b *big.Int) (I256, error) {
	var i I256
	if b == nil {
		return i, nil
	}
	if b.Cmp(minI256) < 0 || b.Cmp(maxI256) > 0 {
		return I256{}, fmt.Errorf("%w: %s outside int256", ErrNumericOverflow, b.String())
	}
	i.n.SetFromBig(b)
	return i, nil
}

// MustI256 parses a decimal string and panics on failure.
func MustI256(dec string) I256 {
	b, ok := new(big.Int).SetString(dec, 10)
	if !ok {
		panic("numeric: invalid decimal " + dec)
	}
	i, err := I256FromBig(b)
	if err != nil {
		panic(err)
	}
	return i
}

// Sign returns -1, 0 or +1.
func (i I256) Sign() int {
	return i.n.Sign()
}

// Big returns a fresh signed big.Int copy.
func (i I256) Big() *big.Int {
	if i.n.Sign() >= 0 {
		return i.n.ToBig()
	}
	var abs uint256.Int
	abs.Neg(&i.n)
	return new(big.Int).Neg(abs.ToBig())
}

// Eq reports equality.
func (i I256) Eq(o I256) bool {
	return i.n.Eq(&o.n)
}

func (i I256) String() string {
	return i.Big().String()
}

// MarshalJSON encodes the value as a signed decimal string.
func (i I256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

// UnmarshalJSON accepts a signed decimal string.
func (i *I256) UnmarshalJSON(data []byte) error {
	b, err := parseJSONInt(data)
	if err != nil {
		return err
	}
	parsed, err := I256FromBig(b)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func parseJSONInt(data []byte) (*big.Int, error) {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		return new(big.Int), nil
	}
	b, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return b, nil
}
