package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorLength is the size of a function selector in bytes.
const SelectorLength = 4

// Selector is the leading 4 bytes of call data.
type Selector [SelectorLength]byte

// Hex returns the 0x-prefixed selector.
func (s Selector) Hex() string {
	return hexutil.Encode(s[:])
}

func (s Selector) String() string {
	return s.Hex()
}

// SelectorOf derives the selector of a canonical signature such as "transfer(address,uint256)".
func SelectorOf(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature))[:SelectorLength])
	return s
}

// SelectorFromPayload returns the selector of a payload, or false if it is too short.
func SelectorFromPayload(payload []byte) (Selector, bool) {
	var s Selector
	if len(payload) < SelectorLength {
		return s, false
	}
	copy(s[:], payload[:SelectorLength])
	return s, true
}

// ParamKind tags the shape of a parameter.
type ParamKind uint8

const (
	KindOther ParamKind = iota
	KindAddress
	KindUint
	KindInt
	KindBool
	KindBytes
	KindFixedBytes
	KindString
	KindArray
	KindTuple
)

func (k ParamKind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindFixedBytes:
		return "fixed_bytes"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	default:
		return "other"
	}
}

// ParamType is a parameter type tag. Width is the bit width for integers and the
// byte length for fixed bytes.
type ParamType struct {
	Kind  ParamKind
	Width int
	ABI   abi.Type
}

func (t ParamType) String() string {
	return t.ABI.String()
}

// Param is one named, typed function parameter.
type Param struct {
	Name string
	Type ParamType
}

// FunctionSchema describes a callable function of an interface.
type FunctionSchema struct {
	Interface string
	Name      string
	Signature string
	Selector  Selector
	Params    []Param
	Method    abi.Method
}

// NewParamType tags an ABI type.
func NewParamType(t abi.Type) ParamType {
	pt := ParamType{ABI: t}
	switch t.T {
	case abi.AddressTy:
		pt.Kind = KindAddress
	case abi.UintTy:
		pt.Kind, pt.Width = KindUint, t.Size
	case abi.IntTy:
		pt.Kind, pt.Width = KindInt, t.Size
	case abi.BoolTy:
		pt.Kind = KindBool
	case abi.BytesTy:
		pt.Kind = KindBytes
	case abi.FixedBytesTy:
		pt.Kind, pt.Width = KindFixedBytes, t.Size
	case abi.StringTy:
		pt.Kind = KindString
	case abi.SliceTy, abi.ArrayTy:
		pt.Kind, pt.Width = KindArray, t.Size
	case abi.TupleTy:
		pt.Kind = KindTuple
	default:
		pt.Kind = KindOther
	}
	return pt
}

func newFunctionSchema(iface string, method abi.Method) FunctionSchema {
	params := make([]Param, 0, len(method.Inputs))
	for i, arg := range method.Inputs {
		name := arg.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		params = append(params, Param{Name: name, Type: NewParamType(arg.Type)})
	}

	var sel Selector
	copy(sel[:], method.ID)

	return FunctionSchema{
		Interface: iface,
		Name:      method.RawName,
		Signature: method.Sig,
		Selector:  sel,
		Params:    params,
		Method:    method,
	}
}

// Interface is a named, ordered set of function schemas.
type Interface struct {
	Name      string
	Functions []FunctionSchema
}

// SchemasFor returns the functions of this interface matching a selector.
func (i *Interface) SchemasFor(sel Selector) []FunctionSchema {
	if i == nil {
		return nil
	}
	var out []FunctionSchema
	for _, fn := range i.Functions {
		if fn.Selector == sel {
			out = append(out, fn)
		}
	}
	return out
}

// Function looks up a function by canonical signature or, failing that, by name.
func (i *Interface) Function(nameOrSignature string) (FunctionSchema, bool) {
	if i == nil {
		return FunctionSchema{}, false
	}
	for _, fn := range i.Functions {
		if fn.Signature == nameOrSignature {
			return fn, true
		}
	}
	for _, fn := range i.Functions {
		if fn.Name == nameOrSignature {
			return fn, true
		}
	}
	return FunctionSchema{}, false
}

// ParseInterface builds an Interface from an ABI JSON document. Both a bare ABI array and a
// compiler artifact object with an "abi" field are accepted. Functions are ordered by signature.
func ParseInterface(name string, abiJSON []byte) (*Interface, error) {
	raw := bytes.TrimSpace(abiJSON)
	if len(raw) > 0 && raw[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(raw, &artifact); err != nil {
			return nil, fmt.Errorf("parse abi artifact %s: %w", name, err)
		}
		if len(artifact.ABI) == 0 {
			return nil, fmt.Errorf("abi artifact %s has no abi field", name)
		}
		raw = artifact.ABI
	}

	raw, err := dropRepeatedSpecials(raw)
	if err != nil {
		return nil, fmt.Errorf("parse abi %s: %w", name, err)
	}

	var parsed abi.ABI
	if err := parsed.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("parse abi %s: %w", name, err)
	}

	functions := make([]FunctionSchema, 0, len(parsed.Methods))
	for _, method := range parsed.Methods {
		functions = append(functions, newFunctionSchema(name, method))
	}
	sort.Slice(functions, func(a, b int) bool {
		return functions[a].Signature < functions[b].Signature
	})

	return &Interface{Name: name, Functions: functions}, nil
}

// dropRepeatedSpecials keeps only the first fallback and the first receive entry.
// go-ethereum rejects a second one and stops parsing there, which would lose every
// function listed after it.
func dropRepeatedSpecials(raw []byte) ([]byte, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	kept := make([]json.RawMessage, 0, len(entries))
	seen := make(map[string]bool, 2)
	for _, entry := range entries {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(entry, &head); err != nil {
			return nil, err
		}
		if head.Type == "fallback" || head.Type == "receive" {
			if seen[head.Type] {
				continue
			}
			seen[head.Type] = true
		}
		kept = append(kept, entry)
	}
	if len(kept) == len(entries) {
		return raw, nil
	}
	return json.Marshal(kept)
}
