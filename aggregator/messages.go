package aggregator

import (
	"github.com/intmax-network/go-rollup-wallet/prover"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// InfoResponse is the aggregator's self-description, used for the
// compatibility gate.
type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type RegisterAccountRequest struct {
	PublicKey types.Hash `json:"public_key"`
}

type RegisterAccountResponse struct {
	Address types.Address `json:"address"`
}

// DepositInfo is one entry of the test faucet request, the flattened form
// of a contributed asset.
type DepositInfo struct {
	Receiver      types.Address       `json:"receiver"`
	Contract      types.Address       `json:"contract"`
	VariableIndex types.VariableIndex `json:"variable_index"`
	Amount        uint64              `json:"amount"`
}

type AddDepositsRequest struct {
	DepositInfo []DepositInfo `json:"deposit_info"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

type SendTransactionRequest struct {
	UserTxProof prover.UserTransitionProof `json:"user_tx_proof"`
}

type SendTransactionResponse struct {
	TxHash types.Hash `json:"tx_hash"`
}

// BroadcastTransactionRequest delivers per-receiver inclusion witnesses
// and asset lists so receivers can later merge the diff.
type BroadcastTransactionRequest struct {
	SignerAddress                 types.Address          `json:"signer_address"`
	TxHash                        types.Hash             `json:"tx_hash"`
	Nonce                         types.Hash             `json:"nonce"`
	PurgeOutputInclusionWitnesses []types.InclusionProof `json:"purge_output_inclusion_witnesses"`
	Assets                        []types.ContributedAsset `json:"assets"`
}

type TransactionReceiptResponse struct {
	TxInclusionWitness        types.MerkleProof    `json:"tx_inclusion_witness"`
	UserAssetInclusionWitness types.InclusionProof `json:"user_asset_inclusion_witness"`
}

type SendSignatureRequest struct {
	TxHash            types.Hash            `json:"tx_hash"`
	ReceivedSignature prover.SignatureProof `json:"received_signature"`
}

type ProposeBlockResponse struct {
	NewWorldStateRoot types.Hash `json:"new_world_state_root"`
}

type ApproveBlockResponse struct {
	NewBlock types.BlockInfo `json:"new_block"`
}

type LatestBlockResponse struct {
	Block types.BlockInfo `json:"block"`
}

type BlocksResponse struct {
	Blocks            []types.BlockInfo `json:"blocks"`
	LatestBlockNumber types.BlockNumber `json:"latest_block_number"`
}

type BlockDetailResponse struct {
	BlockDetails types.BlockInfo `json:"block_details"`
}

type ReceivedAssetsResponse struct {
	Proofs            []*types.ReceivedAssetProof `json:"proofs"`
	LatestBlockNumber types.BlockNumber           `json:"latest_block_number"`
}
