package model

// ContractABI is a stored ABI document for one contract address.
type ContractABI struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	ABI     string `json:"abi"`
}
