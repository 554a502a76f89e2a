package resolver

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"actionScope/internal/registry"
)

// ErrNotRegistered means no ABI document is known for the address.
var ErrNotRegistered = errors.New("contract not registered")

// Document is an ABI bound to one contract address.
type Document struct {
	Address   common.Address
	Interface *registry.Interface
}

// Resolver maps contract addresses to their ABI documents. It is built once and
// only read afterwards.
type Resolver struct {
	docs map[common.Address]*registry.Interface
}

// New builds a resolver. A later document for the same address replaces an earlier one.
func New(docs ...Document) (*Resolver, error) {
	r := &Resolver{docs: make(map[common.Address]*registry.Interface, len(docs))}
	for _, doc := range docs {
		if doc.Interface == nil {
			return nil, fmt.Errorf("document for %s has no interface", doc.Address.Hex())
		}
		r.docs[doc.Address] = doc.Interface
	}
	return r, nil
}

// Resolve returns the ABI document registered for address.
func (r *Resolver) Resolve(address common.Address) (*registry.Interface, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, address.Hex())
	}
	iface, ok := r.docs[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, address.Hex())
	}
	return iface, nil
}

// Len returns the number of registered addresses.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.docs)
}
