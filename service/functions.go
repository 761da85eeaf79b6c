package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/intmax-network/go-rollup-wallet/aggregator"
	"github.com/intmax-network/go-rollup-wallet/types"
	"github.com/intmax-network/go-rollup-wallet/wallet"
)

// Transfer runs the full send flow: sync pending state, fold the received
// queue down to circuit capacity, submit the transfer with broadcast, then
// drive one block cycle so the transaction finalizes.
func (s *Service) Transfer(ctx context.Context, state *wallet.UserState, purgeDiffs []types.ContributedAsset) (types.Hash, error) {
	if err := s.SyncSentTransactions(ctx, state); err != nil {
		return types.Hash{}, err
	}
	if err := s.MergeRecursively(ctx, state); err != nil {
		return types.Hash{}, err
	}

	txHash, err := s.MergeAndPurge(ctx, state, purgeDiffs, true)
	if err != nil {
		return types.Hash{}, err
	}

	if err := s.finishBlockCycle(ctx, state); err != nil {
		return types.Hash{}, err
	}
	return txHash, nil
}

// MergeRecursively folds the received-asset queue until at most NMerges
// entries remain, cycling a block after each merge-only transaction so the
// next round can observe it.
func (s *Service) MergeRecursively(ctx context.Context, state *wallet.UserState) error {
	for len(state.RestReceivedAssets) > s.consts.NMerges {
		log.Info().
			Int("pending", len(state.RestReceivedAssets)).
			Int("nMerges", s.consts.NMerges).
			Msg("Merging received assets")
		if _, err := s.MergeAndPurge(ctx, state, nil, false); err != nil {
			if errors.Is(err, ErrNothingToDo) {
				return nil
			}
			return err
		}
		if err := s.finishBlockCycle(ctx, state); err != nil {
			return err
		}
		if err := s.SyncSentTransactions(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) finishBlockCycle(ctx context.Context, state *wallet.UserState) error {
	if _, err := s.ProposeBlock(ctx); err != nil {
		return err
	}
	if err := s.SignProposedBlock(ctx, state); err != nil {
		return err
	}
	if _, err := s.ApproveBlock(ctx); err != nil {
		return err
	}
	return nil
}

// DepositAssets mints assets to the depositor through the faucet endpoint.
// Only the token whose contract address is the depositor's own account may
// be minted.
func (s *Service) DepositAssets(ctx context.Context, state *wallet.UserState, assets []types.ContributedAsset) error {
	deposits := make([]aggregator.DepositInfo, 0, len(assets))
	for _, asset := range assets {
		if asset.Kind.ContractAddress != state.Account.Address {
			return fmt.Errorf("cannot deposit another account's token %s", asset.Kind.ContractAddress.Hex())
		}
		if err := asset.Asset().Validate(); err != nil {
			return err
		}
		deposits = append(deposits, aggregator.DepositInfo{
			Receiver:      asset.ReceiverAddress,
			Contract:      asset.Kind.ContractAddress,
			VariableIndex: asset.Kind.VariableIndex,
			Amount:        asset.Amount,
		})
	}
	return s.client.AddDeposits(ctx, deposits)
}

// BulkMint mints the distribution's total supply to the minter and fans it
// out. Amounts are aggregated per (receiver, kind) first; entries whose
// receiver is the minter stay as minted balance and are not re-sent.
func (s *Service) BulkMint(ctx context.Context, state *wallet.UserState, distribution []types.ContributedAsset, deposit bool) error {
	aggregated := aggregateByReceiverAndKind(distribution)
	for _, entry := range aggregated {
		if entry.Kind.ContractAddress != state.Account.Address {
			return fmt.Errorf("cannot mint another account's token %s", entry.Kind.ContractAddress.Hex())
		}
		if err := entry.Asset().Validate(); err != nil {
			return err
		}
	}

	if deposit {
		var kinds []types.TokenKind
		supply := make(map[types.TokenKind]uint64)
		for _, entry := range aggregated {
			if _, seen := supply[entry.Kind]; !seen {
				kinds = append(kinds, entry.Kind)
			}
			supply[entry.Kind] += entry.Amount
		}
		mint := make([]types.ContributedAsset, 0, len(kinds))
		for _, kind := range kinds {
			mint = append(mint, types.ContributedAsset{
				ReceiverAddress: state.Account.Address,
				Kind:            kind,
				Amount:          supply[kind],
			})
		}
		if err := s.DepositAssets(ctx, state, mint); err != nil {
			return err
		}
		if _, err := s.ProposeBlock(ctx); err != nil {
			return err
		}
		if _, err := s.ApproveBlock(ctx); err != nil {
			return err
		}
	}

	outgoing := make([]types.ContributedAsset, 0, len(aggregated))
	for _, entry := range aggregated {
		if entry.ReceiverAddress == state.Account.Address {
			continue
		}
		outgoing = append(outgoing, entry)
	}
	if len(outgoing) == 0 {
		return nil
	}

	_, err := s.Transfer(ctx, state, outgoing)
	return err
}

func aggregateByReceiverAndKind(distribution []types.ContributedAsset) []types.ContributedAsset {
	type slot struct {
		receiver types.Address
		kind     types.TokenKind
	}
	var order []slot
	totals := make(map[slot]uint64)
	for _, entry := range distribution {
		key := slot{receiver: entry.ReceiverAddress, kind: entry.Kind}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += entry.Amount
	}

	aggregated := make([]types.ContributedAsset, 0, len(order))
	for _, key := range order {
		aggregated = append(aggregated, types.ContributedAsset{
			ReceiverAddress: key.receiver,
			Kind:            key.kind,
			Amount:          totals[key],
		})
	}
	return aggregated
}
