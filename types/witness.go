package types

import (
	"encoding/json"
	"fmt"
)

// InclusionProof witnesses a read from a sparse Merkle tree: the value
// stored at Key under Root, with the sibling path. Found is false when the
// slot is empty (a non-membership proof).
type InclusionProof struct {
	Found    bool   `json:"found"`
	Key      Hash   `json:"key"`
	Value    Hash   `json:"value"`
	Siblings []Hash `json:"siblings"`
	Root     Hash   `json:"root"`
}

// ProcessProof witnesses an update of a sparse Merkle tree slot: the old
// and new value at Key and the old and new root, with the sibling path.
// Siblings are ordered leaf-adjacent first.
type ProcessProof struct {
	Key      Hash   `json:"key"`
	OldValue Hash   `json:"old_value"`
	NewValue Hash   `json:"new_value"`
	Siblings []Hash `json:"siblings"`
	OldRoot  Hash   `json:"old_root"`
	NewRoot  Hash   `json:"new_root"`
}

// ProcessProof3 is the layered update witness of the three-level asset
// tree, outermost layer first.
type ProcessProof3 [3]ProcessProof

// MerkleProof witnesses a leaf of a fixed-index Merkle tree, such as the
// per-block transaction tree.
type MerkleProof struct {
	Root     Hash   `json:"root"`
	Index    uint64 `json:"index"`
	Value    Hash   `json:"value"`
	Siblings []Hash `json:"siblings"`
}

// DiffInclusionProof ties a received diff to its block: the header, the
// inclusion of the sender's transaction in the block's diff tree, and the
// inclusion of the receiver's asset root in that transaction's diff. On
// the wire this is a 3-element array.
type DiffInclusionProof struct {
	BlockHeader BlockHeader
	TxProof     MerkleProof
	AssetProof  InclusionProof
}

// MarshalJSON encodes the proof as the [header, tx_proof, asset_proof]
// tuple the aggregator serves.
func (p DiffInclusionProof) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]interface{}{p.BlockHeader, p.TxProof, p.AssetProof})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *DiffInclusionProof) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("diff inclusion proof has %d elements, want 3", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.BlockHeader); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &p.TxProof); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &p.AssetProof)
}

// TxHash returns the hash of the transaction (or deposit diff root) the
// proof commits to.
func (p *DiffInclusionProof) TxHash() Hash {
	return p.TxProof.Value
}

// AssetRoot returns the receiver's asset root inside the transaction diff.
func (p *DiffInclusionProof) AssetRoot() Hash {
	return p.AssetProof.Value
}

// ReceivedAssetProof is the aggregator's proof that assets were sent to
// this account: by a deposit, or by another user's transaction.
type ReceivedAssetProof struct {
	IsDeposit                       bool               `json:"is_deposit"`
	DiffTreeInclusionProof          DiffInclusionProof `json:"diff_tree_inclusion_proof"`
	LatestAccountTreeInclusionProof InclusionProof     `json:"latest_account_tree_inclusion_proof"`
	Nonce                           Hash               `json:"nonce"`
	Assets                          []Asset            `json:"assets"`
}

// MergeProof is the witness handed to the user-transition circuit for one
// accepted received-asset proof: the original inclusion proofs plus the
// process proof of this wallet's own asset-tree update.
type MergeProof struct {
	IsDeposit                       bool               `json:"is_deposit"`
	DiffTreeInclusionProof          DiffInclusionProof `json:"diff_tree_inclusion_proof"`
	MergeProcessProof               ProcessProof       `json:"merge_process_proof"`
	LatestAccountTreeInclusionProof InclusionProof     `json:"latest_account_tree_inclusion_proof"`
	Nonce                           Hash               `json:"nonce"`
}

// TransactionPublicInputs are the public inputs of the merge-and-purge
// user transition.
type TransactionPublicInputs struct {
	SenderAddress      Address `json:"sender_address"`
	OldUserAssetRoot   Hash    `json:"old_user_asset_root"`
	MiddleUserAssetRoot Hash   `json:"middle_user_asset_root"`
	NewUserAssetRoot   Hash    `json:"new_user_asset_root"`
	DiffRoot           Hash    `json:"diff_root"`
	Nonce              Hash    `json:"nonce"`
	TxHash             Hash    `json:"tx_hash"`
}
