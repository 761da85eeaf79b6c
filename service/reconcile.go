package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/intmax-network/go-rollup-wallet/types"
	"github.com/intmax-network/go-rollup-wallet/wallet"
)

// SyncSentTransactions reconciles local state with the chain: it enqueues
// newly received asset proofs, restores fragments spent by transactions
// the chain cancelled, and drops sent-transaction entries that are final.
//
// Transport errors are swallowed: the watermark is kept so the next sync
// retries the same window, and cancelled fragments are re-credited then.
func (s *Service) SyncSentTransactions(ctx context.Context, state *wallet.UserState) error {
	proofs, watermark, err := s.client.ReceivedAssets(ctx, state.Account.Address, state.LastSeenBlockNumber)
	if err != nil {
		log.Warn().Err(err).Msg("Sync skipped, could not fetch received assets")
		return nil
	}

	blocks, _, err := s.client.Blocks(ctx, state.LastSeenBlockNumber, watermark)
	if err != nil {
		log.Warn().Err(err).Msg("Sync skipped, could not fetch blocks")
		return nil
	}

	for _, block := range blocks {
		for _, txHash := range block.CancelledTransactions(state.Account.Address) {
			sent, ok := state.SentTransactions[txHash]
			if !ok {
				continue
			}
			if err := s.restoreFragments(state, sent.Fragments); err != nil {
				return err
			}
			delete(state.SentTransactions, txHash)
			log.Info().Str("txHash", txHash.Hex()).Msg("Restored cancelled transaction")
		}
	}

	for _, txHash := range state.PendingTransactionHashes() {
		sent := state.SentTransactions[txHash]
		if sent.ProposedBlockNumber != nil && *sent.ProposedBlockNumber <= watermark {
			delete(state.SentTransactions, txHash)
		}
	}

	state.EnqueueReceivedAssets(proofs)
	state.LastSeenBlockNumber = watermark
	return nil
}

// restoreFragments re-credits fragments a cancelled transaction spent. The
// tree write is guarded on the leaf still being zero so a fragment seen
// cancelled twice is not credited twice.
func (s *Service) restoreFragments(state *wallet.UserState, fragments []types.AssetFragment) error {
	for _, fragment := range fragments {
		current, err := state.AssetTree.GetBalance(
			fragment.MergeKey,
			fragment.Kind.ContractAddress,
			fragment.Kind.VariableIndex.ToHash(),
		)
		if err != nil {
			return err
		}
		if current.IsZero() {
			if _, err := state.AssetTree.Set(
				fragment.MergeKey,
				fragment.Kind.ContractAddress,
				fragment.Kind.VariableIndex.ToHash(),
				types.HashFromUint64(fragment.Amount),
			); err != nil {
				return err
			}
		}
		state.Assets.Add(fragment.Kind, fragment.Amount, fragment.MergeKey)
	}
	return nil
}
