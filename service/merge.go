package service

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/smt"
	"github.com/intmax-network/go-rollup-wallet/types"
	"github.com/intmax-network/go-rollup-wallet/wallet"
)

// MergeKey derives the asset tree's outer key for a received-asset proof.
// Deposits have no sender transaction, so the key binds the deposit diff
// root to its block; a user transaction is keyed by its own hash.
func MergeKey(proof *types.ReceivedAssetProof) types.Hash {
	txHash := proof.DiffTreeInclusionProof.TxHash()
	if proof.IsDeposit {
		blockHash := proof.DiffTreeInclusionProof.BlockHeader.Hash()
		return types.Hash(poseidon.TwoToOne(txHash, blockHash))
	}
	return txHash
}

// calcMergeWitnesses credits each received-asset proof into the ledger and
// asset tree and returns one merge witness per accepted proof.
//
// A non-deposit proof is skipped when the sender did not sign the
// enclosing block by its deadline: the latest-account-tree leaf for the
// sender must equal the enclosing block number, otherwise the transaction
// was cancelled and its assets never move. A proof whose merge key is
// already present in the tree is skipped as a double merge.
func (s *Service) calcMergeWitnesses(state *wallet.UserState, batch []*types.ReceivedAssetProof) ([]types.MergeProof, error) {
	witnesses := make([]types.MergeProof, 0, len(batch))
	for _, proof := range batch {
		mergeKey := MergeKey(proof)

		if !proof.IsDeposit {
			signedAt := proof.LatestAccountTreeInclusionProof.Value.Uint32()
			blockNumber := proof.DiffTreeInclusionProof.BlockHeader.BlockNumber
			if signedAt != blockNumber {
				log.Warn().
					Str("mergeKey", mergeKey.Hex()).
					Uint32("signedAt", signedAt).
					Uint32("blockNumber", blockNumber).
					Msg("Skipping cancelled transaction")
				continue
			}
		}

		existing, err := state.AssetTree.SubRoot(mergeKey)
		if err != nil {
			return nil, err
		}
		if !existing.IsZero() {
			log.Info().Str("mergeKey", mergeKey.Hex()).Msg("Already merged, skipping")
			continue
		}

		preRoot := state.AssetTree.Root()
		added := make([]types.AssetFragment, 0, len(proof.Assets))
		for _, asset := range proof.Assets {
			state.Assets.Add(asset.Kind, asset.Amount, mergeKey)
			added = append(added, types.AssetFragment{Kind: asset.Kind, Amount: asset.Amount, MergeKey: mergeKey})
			_, err := state.AssetTree.Set(
				mergeKey,
				asset.Kind.ContractAddress,
				asset.Kind.VariableIndex.ToHash(),
				types.HashFromUint64(asset.Amount),
			)
			if err != nil {
				return nil, err
			}
		}

		subRoot, err := state.AssetTree.SubRoot(mergeKey)
		if err != nil {
			return nil, err
		}
		if subRoot != proof.DiffTreeInclusionProof.AssetRoot() {
			// The server's proof disagrees with our recomputation. Roll the
			// speculative credit back and skip; committed state stays clean.
			state.AssetTree.ChangeRoot(preRoot)
			state.Assets.Remove(added)
			log.Error().
				Str("mergeKey", mergeKey.Hex()).
				Str("computed", subRoot.Hex()).
				Str("expected", proof.DiffTreeInclusionProof.AssetRoot().Hex()).
				Err(ErrInconsistentAssetRoot).
				Msg("Skipping received asset proof")
			continue
		}

		mergeProcessProof, err := replayOuterUpdate(state.AssetTree.Store(), preRoot, mergeKey, subRoot)
		if err != nil {
			return nil, err
		}
		if mergeProcessProof.NewRoot != state.AssetTree.Root() {
			return nil, fmt.Errorf("merge replay diverged at key %s", mergeKey.Hex())
		}

		witnesses = append(witnesses, types.MergeProof{
			IsDeposit:                       proof.IsDeposit,
			DiffTreeInclusionProof:          proof.DiffTreeInclusionProof,
			MergeProcessProof:               mergeProcessProof,
			LatestAccountTreeInclusionProof: proof.LatestAccountTreeInclusionProof,
			Nonce:                           proof.Nonce,
		})
	}
	return witnesses, nil
}

// replayOuterUpdate recomputes the merge as a single outer-layer update on
// a fork rooted before the merge. The content-addressed store already
// holds every node both roots reach, so the fork costs only a root cell.
func replayOuterUpdate(store *smt.NodeStore, preRoot types.Hash, mergeKey, subRoot types.Hash) (types.ProcessProof, error) {
	fork := smt.NewTree(store, &preRoot)
	return fork.Update(mergeKey, subRoot)
}
