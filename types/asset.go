package types

import (
	"errors"
)

// MaxAmount is the exclusive upper bound on a single asset amount.
const MaxAmount uint64 = 1 << 56

// ErrInvalidAmount signals an amount of zero or at least 2^56.
var ErrInvalidAmount = errors.New("amount must be a positive integer less than 2^56")

// VariableIndex selects a token variable within a contract namespace. It
// spans 0..=255 in practice.
type VariableIndex uint8

// ToHash embeds the index into a Hash for use as a tree key.
func (v VariableIndex) ToHash() Hash {
	return HashFromUint64(uint64(v))
}

// TokenKind identifies a token by its issuing contract and variable index.
type TokenKind struct {
	ContractAddress Address       `json:"contract_address"`
	VariableIndex   VariableIndex `json:"variable_index"`
}

// Asset is an amount of one token kind.
type Asset struct {
	Kind   TokenKind `json:"kind"`
	Amount uint64    `json:"amount"`
}

// Validate checks the amount bounds.
func (a Asset) Validate() error {
	if a.Amount == 0 || a.Amount >= MaxAmount {
		return ErrInvalidAmount
	}
	return nil
}

// ContributedAsset is an asset together with the account it is destined
// for; the unit of deposits and purge diffs.
type ContributedAsset struct {
	ReceiverAddress Address   `json:"receiver"`
	Kind            TokenKind `json:"kind"`
	Amount          uint64    `json:"amount"`
}

// Asset strips the receiver.
func (c ContributedAsset) Asset() Asset {
	return Asset{Kind: c.Kind, Amount: c.Amount}
}

// AssetFragment is a spendable asset fragment: an amount of one token kind
// namespaced by the merge key of the transaction or deposit that produced
// it. At most one fragment exists for any (kind, merge key) pair in a
// ledger.
type AssetFragment struct {
	Kind     TokenKind `json:"kind"`
	Amount   uint64    `json:"amount"`
	MergeKey Hash      `json:"merge_key"`
}
