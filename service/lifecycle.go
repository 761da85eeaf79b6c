package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/intmax-network/go-rollup-wallet/types"
	"github.com/intmax-network/go-rollup-wallet/wallet"
)

// ProposeBlock asks the aggregator to freeze pending transactions into a
// proposal and returns the proposed world-state root.
func (s *Service) ProposeBlock(ctx context.Context) (types.Hash, error) {
	root, err := s.client.ProposeBlock(ctx)
	if err != nil {
		return types.Hash{}, err
	}
	log.Info().Str("worldStateRoot", root.Hex()).Msg("Proposed block")
	return root, nil
}

// SignProposedBlock confirms every not-yet-proposed sent transaction: it
// fetches the transaction's inclusion witnesses, signs the proposed
// world-state root with the account key, posts the signature, and stamps
// the entry with the block number the proposal will approve into.
//
// A transaction left unsigned here is cancelled when the block approves.
func (s *Service) SignProposedBlock(ctx context.Context, state *wallet.UserState) error {
	latest, err := s.client.LatestBlock(ctx)
	if err != nil {
		return err
	}
	proposedNumber := latest.Header.BlockNumber + 1

	for _, txHash := range state.PendingTransactionHashes() {
		sent := state.SentTransactions[txHash]
		if sent.ProposedBlockNumber != nil {
			continue
		}

		receipt, err := s.client.TransactionReceipt(ctx, state.Account.Address, txHash)
		if err != nil {
			return err
		}

		signature, err := s.signer.Sign(state.Account.PrivateKey, receipt.UserAssetInclusionWitness.Root)
		if err != nil {
			return err
		}
		if err := s.client.SendReceivedSignature(ctx, txHash, signature); err != nil {
			return err
		}

		stamped := proposedNumber
		sent.ProposedBlockNumber = &stamped
		log.Info().
			Str("txHash", txHash.Hex()).
			Uint32("blockNumber", proposedNumber).
			Msg("Signed proposed block")
	}
	return nil
}

// ApproveBlock finalizes the current proposal and returns the approved
// block.
func (s *Service) ApproveBlock(ctx context.Context) (types.BlockInfo, error) {
	block, err := s.client.ApproveBlock(ctx)
	if err != nil {
		return types.BlockInfo{}, err
	}
	log.Info().Uint32("blockNumber", block.Header.BlockNumber).Msg("Approved block")
	return block, nil
}
