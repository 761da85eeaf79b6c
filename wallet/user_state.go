package wallet

import (
	"github.com/intmax-network/go-rollup-wallet/smt"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// SentTransaction tracks one in-flight send: the ledger fragments it spent
// (for restoration if the send is cancelled) and, after signing, the block
// number it was proposed into.
type SentTransaction struct {
	Fragments           []types.AssetFragment `json:"fragments"`
	ProposedBlockNumber *uint32               `json:"proposed_block_number"`
}

// UserState is the full wallet state of one account. A transaction is in
// SentTransactions exactly while its input fragments have been removed
// from the ledger but not yet proven final.
type UserState struct {
	Account             Account
	Assets              *Assets
	AssetTree           *smt.LayeredTree
	RestReceivedAssets  []*types.ReceivedAssetProof
	SentTransactions    map[types.Hash]*SentTransaction
	LastSeenBlockNumber uint32
}

// NewUserState creates an empty state over the shared node store.
func NewUserState(account Account, store *smt.NodeStore) *UserState {
	return &UserState{
		Account:          account,
		Assets:           NewAssets(),
		AssetTree:        smt.NewLayeredTree(store, nil),
		SentTransactions: make(map[types.Hash]*SentTransaction),
	}
}

// PendingTransactionHashes lists in-flight transaction hashes.
func (s *UserState) PendingTransactionHashes() []types.Hash {
	hashes := make([]types.Hash, 0, len(s.SentTransactions))
	for txHash := range s.SentTransactions {
		hashes = append(hashes, txHash)
	}
	return hashes
}

// EnqueueReceivedAssets appends proofs to the FIFO merge queue.
func (s *UserState) EnqueueReceivedAssets(proofs []*types.ReceivedAssetProof) {
	s.RestReceivedAssets = append(s.RestReceivedAssets, proofs...)
}
