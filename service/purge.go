package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/intmax-network/go-rollup-wallet/aggregator"
	"github.com/intmax-network/go-rollup-wallet/db/memorydb"
	"github.com/intmax-network/go-rollup-wallet/prover"
	"github.com/intmax-network/go-rollup-wallet/smt"
	"github.com/intmax-network/go-rollup-wallet/types"
	"github.com/intmax-network/go-rollup-wallet/wallet"
)

// MergeAndPurge builds and submits one user transaction: it drains pending
// received assets into the asset tree (merge) and spends ledger fragments
// into a fresh transaction diff tree (purge). Returns the accepted
// transaction hash.
//
// Once the proof is submitted the local ledger is NOT rolled back on
// failure; the reconciler restores the spent fragments when it observes
// the transaction cancelled.
func (s *Service) MergeAndPurge(ctx context.Context, state *wallet.UserState, purgeDiffs []types.ContributedAsset, broadcast bool) (types.Hash, error) {
	for _, output := range purgeDiffs {
		if output.ReceiverAddress == state.Account.Address {
			return types.Hash{}, ErrSelfTransfer
		}
		if err := output.Asset().Validate(); err != nil {
			return types.Hash{}, err
		}
	}
	if len(state.RestReceivedAssets) == 0 && len(purgeDiffs) == 0 {
		return types.Hash{}, ErrNothingToDo
	}
	if len(purgeDiffs) > s.consts.NDiffs {
		return types.Hash{}, ErrTooManyDiffs
	}

	oldRoot := state.AssetTree.Root()

	drained := len(state.RestReceivedAssets)
	if nTxs := s.consts.NTxs(); drained > nTxs {
		drained = nTxs
	}
	batch := state.RestReceivedAssets[:drained]
	mergeWitnesses, err := s.calcMergeWitnesses(state, batch)
	if err != nil {
		return types.Hash{}, err
	}

	diffStore, err := smt.NewNodeStore(memorydb.NewDB())
	if err != nil {
		return types.Hash{}, err
	}
	diffTree := smt.NewLayeredTree(diffStore, nil)

	outputWitnesses := make([]types.ProcessProof3, 0, len(purgeDiffs))
	for _, output := range purgeDiffs {
		witness, err := diffTree.Set(
			output.ReceiverAddress,
			output.Kind.ContractAddress,
			output.Kind.VariableIndex.ToHash(),
			types.HashFromUint64(output.Amount),
		)
		if err != nil {
			return types.Hash{}, err
		}
		outputWitnesses = append(outputWitnesses, witness)
	}

	picks, err := selectInputs(state, purgeDiffs)
	if err != nil {
		return types.Hash{}, err
	}

	var inputWitnesses []types.ProcessProof3
	var removedFragments []types.AssetFragment
	for _, pick := range picks {
		for _, fragment := range pick.fragments {
			witness, err := state.AssetTree.Set(
				fragment.MergeKey,
				fragment.Kind.ContractAddress,
				fragment.Kind.VariableIndex.ToHash(),
				types.ZeroHash,
			)
			if err != nil {
				return types.Hash{}, err
			}
			if witness[2].OldValue.IsZero() {
				return types.Hash{}, fmt.Errorf("ledger fragment %s has no tree leaf", fragment.MergeKey.Hex())
			}
			inputWitnesses = append(inputWitnesses, witness)
		}
		state.Assets.Remove(pick.fragments)
		removedFragments = append(removedFragments, pick.fragments...)

		if pick.change > 0 {
			change := types.ContributedAsset{
				ReceiverAddress: state.Account.Address,
				Kind:            pick.kind,
				Amount:          pick.change,
			}
			witness, err := diffTree.Set(
				change.ReceiverAddress,
				change.Kind.ContractAddress,
				change.Kind.VariableIndex.ToHash(),
				types.HashFromUint64(change.Amount),
			)
			if err != nil {
				return types.Hash{}, err
			}
			outputWitnesses = append(outputWitnesses, witness)
		}
	}

	if len(inputWitnesses) > s.consts.NDiffs || len(outputWitnesses) > s.consts.NDiffs {
		return types.Hash{}, ErrTooManyDiffs
	}

	nonce, err := wallet.RandomHash()
	if err != nil {
		return types.Hash{}, err
	}

	proof, err := s.transition.Prove(prover.UserTransitionWitness{
		SenderAddress:        state.Account.Address,
		MergeWitnesses:       mergeWitnesses,
		PurgeInputWitnesses:  inputWitnesses,
		PurgeOutputWitnesses: outputWitnesses,
		Nonce:                nonce,
		OldUserAssetRoot:     oldRoot,
	})
	if err != nil {
		return types.Hash{}, err
	}

	log.Warn().Msg("Submitting transaction, do not interrupt")
	txHash, err := s.client.SendTransaction(ctx, proof)
	if err != nil {
		return types.Hash{}, err
	}

	state.RestReceivedAssets = state.RestReceivedAssets[drained:]

	if broadcast && len(purgeDiffs) > 0 {
		if err := s.broadcastDiffs(ctx, state, diffTree, txHash, nonce, purgeDiffs); err != nil {
			return types.Hash{}, err
		}
	}

	state.SentTransactions[txHash] = &wallet.SentTransaction{Fragments: removedFragments}
	return txHash, nil
}

type inputSelection struct {
	kind      types.TokenKind
	fragments []types.AssetFragment
	change    uint64
}

// selectInputs picks ledger fragments covering each output kind's total.
// An exact-amount fragment is preferred, then larger fragments first. The
// ledger is not touched; callers apply the selection afterwards so an
// insufficient balance leaves every kind unspent.
func selectInputs(state *wallet.UserState, purgeDiffs []types.ContributedAsset) ([]inputSelection, error) {
	var kinds []types.TokenKind
	totals := make(map[types.TokenKind]uint64)
	for _, output := range purgeDiffs {
		if _, seen := totals[output.Kind]; !seen {
			kinds = append(kinds, output.Kind)
		}
		totals[output.Kind] += output.Amount
	}

	selections := make([]inputSelection, 0, len(kinds))
	for _, kind := range kinds {
		outgoing := totals[kind]
		candidates := state.Assets.Filter(kind)
		sort.SliceStable(candidates, func(i, j int) bool {
			iExact := candidates[i].Amount == outgoing
			jExact := candidates[j].Amount == outgoing
			if iExact != jExact {
				return iExact
			}
			return candidates[i].Amount > candidates[j].Amount
		})

		var picked []types.AssetFragment
		var accumulated uint64
		for _, candidate := range candidates {
			if accumulated >= outgoing {
				break
			}
			picked = append(picked, candidate)
			accumulated += candidate.Amount
		}
		if accumulated < outgoing {
			return nil, ErrInsufficientBalance
		}
		selections = append(selections, inputSelection{
			kind:      kind,
			fragments: picked,
			change:    accumulated - outgoing,
		})
	}
	return selections, nil
}

// broadcastDiffs hands every receiver the outer inclusion witness and
// asset list it needs to merge this transaction later.
func (s *Service) broadcastDiffs(ctx context.Context, state *wallet.UserState, diffTree *smt.LayeredTree, txHash, nonce types.Hash, purgeDiffs []types.ContributedAsset) error {
	var receivers []types.Address
	assetsByReceiver := make(map[types.Address][]types.ContributedAsset)
	for _, output := range purgeDiffs {
		if _, seen := assetsByReceiver[output.ReceiverAddress]; !seen {
			receivers = append(receivers, output.ReceiverAddress)
		}
		assetsByReceiver[output.ReceiverAddress] = append(assetsByReceiver[output.ReceiverAddress], output)
	}

	witnesses := make([]types.InclusionProof, 0, len(receivers))
	assets := make([]types.ContributedAsset, 0, len(purgeDiffs))
	for _, receiver := range receivers {
		witness, err := diffTree.OuterFind(receiver)
		if err != nil {
			return err
		}
		witnesses = append(witnesses, witness)
		assets = append(assets, assetsByReceiver[receiver]...)
	}

	return s.client.BroadcastTransaction(ctx, aggregator.BroadcastTransactionRequest{
		SignerAddress:                 state.Account.Address,
		TxHash:                        txHash,
		Nonce:                         nonce,
		PurgeOutputInclusionWitnesses: witnesses,
		Assets:                        assets,
	})
}
