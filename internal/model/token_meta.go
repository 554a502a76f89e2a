package model

import "github.com/ethereum/go-ethereum/common"

// TokenMeta is the ERC20 metadata used to scale flow volumes.
// Symbol and Name are empty when the token does not expose them.
type TokenMeta struct {
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol,omitempty"`
	Name     string         `json:"name,omitempty"`
}
