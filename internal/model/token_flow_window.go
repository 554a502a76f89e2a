package model

// TokenFlowWindow sums the value moved for one token over a fixed block window.
type TokenFlowWindow struct {
	Token            string
	Symbol           string
	Decimals         uint8
	WindowSizeBlocks uint64
	WindowStart      uint64
	WindowEnd        uint64
	TransferCount    uint64
	DepositCount     uint64
	WithdrawalCount  uint64
	TransferVolume   string
	DepositVolume    string
	WithdrawalVolume string
	FirstBlock       uint64
	LastBlock        uint64
}
