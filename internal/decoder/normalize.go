package decoder

import (
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"actionScope/internal/numeric"
	"actionScope/internal/registry"
)

// normalize converts a value produced by the ABI unpacker into its canonical form.
func normalize(t abi.Type, raw interface{}) (Value, error) {
	switch t.T {
	case abi.AddressTy:
		return numeric.AddressFrom(raw)
	case abi.UintTy:
		return numeric.FromUnsigned(t.Size, raw)
	case abi.IntTy:
		return numeric.FromSigned(t.Size, raw)
	case abi.BoolTy:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("unsupported bool type %T", raw)
		}
		return b, nil
	case abi.StringTy:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("unsupported string type %T", raw)
		}
		return s, nil
	case abi.BytesTy:
		b, ok := raw.([]byte)
		if !ok {
			return nil, fmt.Errorf("unsupported bytes type %T", raw)
		}
		return append([]byte(nil), b...), nil
	case abi.FixedBytesTy, abi.HashTy, abi.FunctionTy:
		return byteArray(raw)
	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("unsupported array type %T", raw)
		}
		out := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := normalize(*t.Elem, rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case abi.TupleTy:
		rv := reflect.ValueOf(raw)
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct || rv.NumField() != len(t.TupleElems) {
			return nil, fmt.Errorf("unsupported tuple type %T", raw)
		}
		out := make([]NamedValue, 0, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			v, err := normalize(*elem, rv.Field(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			name := fmt.Sprintf("field%d", i)
			if i < len(t.TupleRawNames) && t.TupleRawNames[i] != "" {
				name = t.TupleRawNames[i]
			}
			out = append(out, NamedValue{Name: name, Type: registry.NewParamType(*elem), Value: v})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported abi type %s", t.String())
	}
}

func byteArray(raw interface{}) ([]byte, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Array || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, fmt.Errorf("unsupported fixed bytes type %T", raw)
	}
	out := make([]byte, rv.Len())
	for i := range out {
		out[i] = byte(rv.Index(i).Uint())
	}
	return out, nil
}
