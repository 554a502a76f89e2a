package decoder

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const wordSize = 32

// checkHead verifies the static head of the arguments is long enough and that every
// static word is canonically padded. The ABI unpacker accepts dirty padding for
// addresses and odd-width integers, which would let unrelated payloads decode.
func checkHead(args abi.Arguments, data []byte) error {
	offset := 0
	for _, arg := range args {
		size := headSize(arg.Type)
		if size < 0 || offset+size > len(data) {
			return fmt.Errorf("head of %q needs %d bytes at offset %d, have %d", arg.Name, size, offset, len(data))
		}
		if !isDynamic(arg.Type) {
			if err := checkStatic(arg.Type, data[offset:offset+size]); err != nil {
				return fmt.Errorf("%q: %w", arg.Name, err)
			}
		}
		offset += size
	}
	return nil
}

func isDynamic(t abi.Type) bool {
	switch t.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy:
		return true
	case abi.ArrayTy:
		return t.Elem != nil && isDynamic(*t.Elem)
	case abi.TupleTy:
		for _, elem := range t.TupleElems {
			if isDynamic(*elem) {
				return true
			}
		}
	}
	return false
}

func headSize(t abi.Type) int {
	if isDynamic(t) {
		return wordSize
	}
	switch t.T {
	case abi.ArrayTy:
		if t.Elem == nil {
			return -1
		}
		return t.Size * headSize(*t.Elem)
	case abi.TupleTy:
		total := 0
		for _, elem := range t.TupleElems {
			total += headSize(*elem)
		}
		return total
	default:
		return wordSize
	}
}

func checkStatic(t abi.Type, data []byte) error {
	switch t.T {
	case abi.ArrayTy:
		elemSize := headSize(*t.Elem)
		for i := 0; i < t.Size; i++ {
			if err := checkStatic(*t.Elem, data[i*elemSize:(i+1)*elemSize]); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case abi.TupleTy:
		offset := 0
		for i, elem := range t.TupleElems {
			size := headSize(*elem)
			if err := checkStatic(*elem, data[offset:offset+size]); err != nil {
				return fmt.Errorf("field %d: %w", i, err)
			}
			offset += size
		}
		return nil
	default:
		return checkWord(t, data[:wordSize])
	}
}

func checkWord(t abi.Type, word []byte) error {
	switch t.T {
	case abi.AddressTy:
		if !allBytes(word[:wordSize-20], 0x00) {
			return fmt.Errorf("address has dirty high bytes")
		}
	case abi.UintTy:
		if t.Size < 256 {
			pad := (256 - t.Size) / 8
			if !allBytes(word[:pad], 0x00) {
				return fmt.Errorf("uint%d exceeds its width", t.Size)
			}
		}
	case abi.IntTy:
		if t.Size < 256 {
			pad := (256 - t.Size) / 8
			fill := byte(0x00)
			if word[pad]&0x80 != 0 {
				fill = 0xff
			}
			if !allBytes(word[:pad], fill) {
				return fmt.Errorf("int%d is not sign-extended", t.Size)
			}
		}
	case abi.BoolTy:
		if !allBytes(word[:wordSize-1], 0x00) || word[wordSize-1] > 1 {
			return fmt.Errorf("invalid bool encoding")
		}
	case abi.FixedBytesTy:
		if t.Size < wordSize && !allBytes(word[t.Size:], 0x00) {
			return fmt.Errorf("bytes%d has dirty padding", t.Size)
		}
	}
	return nil
}

func allBytes(b []byte, v byte) bool {
	for _, x := range b {
		if x != v {
			return false
		}
	}
	return true
}
