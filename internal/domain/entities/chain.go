package entities

import "math/big"

// ChainTransaction is the oracle's view of a mined transaction. From is the
// recovered sender; To is nil for contract creations. Addresses are EIP-55
// checksummed.
type ChainTransaction struct {
	Hash    string
	From    string
	To      string
	Value   *big.Int
	ChainID *big.Int
}

// ChainReceipt is the oracle's view of a transaction receipt.
type ChainReceipt struct {
	Succeeded   bool
	BlockNumber uint64
}
