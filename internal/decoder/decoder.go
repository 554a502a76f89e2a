package decoder

import (
	"bytes"
	"errors"
	"fmt"

	"actionScope/internal/numeric"
	"actionScope/internal/registry"
)

var (
	// ErrSelectorMismatch means the payload does not start with the schema's selector.
	ErrSelectorMismatch = errors.New("selector mismatch")
	// ErrMalformedParameters means the selector matched but the arguments did not parse.
	ErrMalformedParameters = errors.New("malformed parameters")
)

// DecodeError is the typed failure of one decode attempt. Kind is one of
// ErrSelectorMismatch, ErrMalformedParameters or numeric.ErrNumericOverflow.
type DecodeError struct {
	Kind      error
	Interface string
	Function  string
	Err       error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s.%s: %v", e.Interface, e.Function, e.Kind)
	}
	return fmt.Sprintf("%s.%s: %v: %v", e.Interface, e.Function, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Value is a normalized parameter value. Its dynamic type is one of
// common.Address, numeric.U256, numeric.I256, bool, []byte, string,
// []Value (arrays) or []NamedValue (tuples).
type Value interface{}

// NamedValue is one decoded parameter.
type NamedValue struct {
	Name  string
	Type  registry.ParamType
	Value Value
}

// DecodedCall is a successfully decoded call payload.
type DecodedCall struct {
	Interface string
	Function  string
	Signature string
	Params    []NamedValue
}

// Get returns a parameter value by name.
func (c *DecodedCall) Get(name string) (Value, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Decode matches payload against schema and decodes its parameters. It never panics;
// every failure is a *DecodeError.
func Decode(payload []byte, schema registry.FunctionSchema) (call *DecodedCall, err error) {
	fail := func(kind error, cause error) (*DecodedCall, error) {
		return nil, &DecodeError{Kind: kind, Interface: schema.Interface, Function: schema.Name, Err: cause}
	}

	if len(payload) < registry.SelectorLength {
		return fail(ErrSelectorMismatch, fmt.Errorf("payload length %d", len(payload)))
	}
	if !bytes.Equal(payload[:registry.SelectorLength], schema.Selector[:]) {
		return fail(ErrSelectorMismatch, nil)
	}

	defer func() {
		if r := recover(); r != nil {
			call = nil
			err = &DecodeError{
				Kind:      ErrMalformedParameters,
				Interface: schema.Interface,
				Function:  schema.Name,
				Err:       fmt.Errorf("unpack panic: %v", r),
			}
		}
	}()

	args := payload[registry.SelectorLength:]
	if err := checkHead(schema.Method.Inputs, args); err != nil {
		return fail(ErrMalformedParameters, err)
	}

	values, err := schema.Method.Inputs.Unpack(args)
	if err != nil {
		return fail(ErrMalformedParameters, err)
	}
	if len(values) != len(schema.Params) {
		return fail(ErrMalformedParameters, fmt.Errorf("unexpected %s values: %d", schema.Name, len(values)))
	}

	params := make([]NamedValue, 0, len(values))
	for i, raw := range values {
		p := schema.Params[i]
		v, err := normalize(p.Type.ABI, raw)
		if err != nil {
			if errors.Is(err, numeric.ErrNumericOverflow) {
				return fail(numeric.ErrNumericOverflow, fmt.Errorf("%s: %w", p.Name, err))
			}
			return fail(ErrMalformedParameters, fmt.Errorf("%s: %w", p.Name, err))
		}
		params = append(params, NamedValue{Name: p.Name, Type: p.Type, Value: v})
	}

	return &DecodedCall{
		Interface: schema.Interface,
		Function:  schema.Name,
		Signature: schema.Signature,
		Params:    params,
	}, nil
}
