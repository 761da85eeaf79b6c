package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intmax-network/go-rollup-wallet/aggregator"
	"github.com/intmax-network/go-rollup-wallet/db/memorydb"
	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/prover"
	"github.com/intmax-network/go-rollup-wallet/smt"
	"github.com/intmax-network/go-rollup-wallet/types"
	"github.com/intmax-network/go-rollup-wallet/wallet"
)

// fakeAggregator is an in-process aggregator: it accepts proofs, cycles
// blocks, and serves whatever received-asset proofs a test queues up.
type fakeAggregator struct {
	t *testing.T

	blocks     []types.BlockInfo
	pending    []types.SenderWithValidity
	pendingTxs []types.Hash
	signed     map[types.Hash]bool
	received   map[types.Address][]*types.ReceivedAssetProof

	sentProofs []prover.UserTransitionProof
	broadcasts []aggregator.BroadcastTransactionRequest
	deposits   []aggregator.DepositInfo

	worldStateRoot types.Hash
	server         *httptest.Server
}

func newFakeAggregator(t *testing.T) *fakeAggregator {
	f := &fakeAggregator{
		t:              t,
		signed:         make(map[types.Hash]bool),
		received:       make(map[types.Address][]*types.ReceivedAssetProof),
		worldStateRoot: types.HashFromUint64(4242),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAggregator) latestBlockNumber() uint32 {
	if len(f.blocks) == 0 {
		return 0
	}
	return f.blocks[len(f.blocks)-1].Header.BlockNumber
}

func (f *fakeAggregator) respond(w http.ResponseWriter, body interface{}) {
	if err := json.NewEncoder(w).Encode(body); err != nil {
		f.t.Fatal(err)
	}
}

func parseBlockNumber(t *testing.T, s string) uint32 {
	var n types.BlockNumber
	if err := n.UnmarshalText([]byte(s)); err != nil {
		t.Fatalf("bad block number %q: %v", s, err)
	}
	return uint32(n)
}

func (f *fakeAggregator) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		f.respond(w, aggregator.InfoResponse{Name: types.AggregatorName, Version: "v0.4.1"})
	case "/tx/send":
		var req aggregator.SendTransactionRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.sentProofs = append(f.sentProofs, req.UserTxProof)
		inputs := req.UserTxProof.PublicInputs
		f.pendingTxs = append(f.pendingTxs, inputs.TxHash)
		f.pending = append(f.pending, types.SenderWithValidity{SenderAddress: inputs.SenderAddress})
		f.respond(w, aggregator.SendTransactionResponse{TxHash: inputs.TxHash})
	case "/tx/broadcast":
		var req aggregator.BroadcastTransactionRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.broadcasts = append(f.broadcasts, req)
		f.respond(w, aggregator.OkResponse{Ok: true})
	case "/tx/receipt":
		f.respond(w, aggregator.TransactionReceiptResponse{
			UserAssetInclusionWitness: types.InclusionProof{Root: f.worldStateRoot},
		})
	case "/signed-diff/send":
		var req aggregator.SendSignatureRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.signed[req.TxHash] = true
		f.respond(w, aggregator.OkResponse{Ok: true})
	case "/block/propose":
		f.respond(w, aggregator.ProposeBlockResponse{NewWorldStateRoot: f.worldStateRoot})
	case "/block/approve":
		header := types.BlockHeader{BlockNumber: f.latestBlockNumber() + 1}
		addressList := make([]types.SenderWithValidity, len(f.pending))
		for i, entry := range f.pending {
			addressList[i] = types.SenderWithValidity{
				SenderAddress: entry.SenderAddress,
				IsValid:       f.signed[f.pendingTxs[i]],
			}
		}
		block := types.BlockInfo{
			Header:       header,
			Transactions: f.pendingTxs,
			AddressList:  addressList,
		}
		f.blocks = append(f.blocks, block)
		f.pending = nil
		f.pendingTxs = nil
		f.respond(w, aggregator.ApproveBlockResponse{NewBlock: block})
	case "/block/latest":
		var latest types.BlockInfo
		if len(f.blocks) > 0 {
			latest = f.blocks[len(f.blocks)-1]
		}
		f.respond(w, aggregator.LatestBlockResponse{Block: latest})
	case "/block":
		since := parseBlockNumber(f.t, r.URL.Query().Get("since"))
		until := parseBlockNumber(f.t, r.URL.Query().Get("until"))
		var selected []types.BlockInfo
		for _, block := range f.blocks {
			if block.Header.BlockNumber > since && block.Header.BlockNumber <= until {
				selected = append(selected, block)
			}
		}
		f.respond(w, aggregator.BlocksResponse{
			Blocks:            selected,
			LatestBlockNumber: types.BlockNumber(f.latestBlockNumber()),
		})
	case "/asset/received":
		user, err := types.HexToAddress(r.URL.Query().Get("user_address"))
		require.NoError(f.t, err)
		proofs := f.received[user]
		delete(f.received, user)
		f.respond(w, aggregator.ReceivedAssetsResponse{
			Proofs:            proofs,
			LatestBlockNumber: types.BlockNumber(f.latestBlockNumber()),
		})
	case "/test/deposit/add":
		var req aggregator.AddDepositsRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.deposits = append(f.deposits, req.DepositInfo...)
		f.respond(w, aggregator.OkResponse{Ok: true})
	default:
		http.NotFound(w, r)
	}
}

func testConstants() types.RollupConstants {
	consts := types.DefaultRollupConstants()
	consts.LogNTxs = 1 // two slots per transaction batch
	consts.NDiffs = 4
	consts.NMerges = 1
	return consts
}

func newTestService(t *testing.T) (*Service, *fakeAggregator, *wallet.UserState) {
	fake := newFakeAggregator(t)
	svc := New(aggregator.NewClient(fake.server.URL), testConstants())
	w, err := wallet.New()
	require.NoError(t, err)
	state := w.AddAccount(wallet.AccountFromSeed("alice"))
	return svc, fake, state
}

// makeReceivedProof builds a proof the merge engine will accept: the diff
// tree is constructed for real so the asset root consistency check passes.
func makeReceivedProof(t *testing.T, isDeposit bool, blockNumber uint32, receiver types.Address, assets []types.Asset, txHash types.Hash) *types.ReceivedAssetProof {
	t.Helper()
	store, err := smt.NewNodeStore(memorydb.NewDB())
	require.NoError(t, err)
	diff := smt.NewLayeredTree(store, nil)
	for _, asset := range assets {
		_, err := diff.Set(receiver, asset.Kind.ContractAddress, asset.Kind.VariableIndex.ToHash(), types.HashFromUint64(asset.Amount))
		require.NoError(t, err)
	}
	outerProof, err := diff.OuterFind(receiver)
	require.NoError(t, err)

	diffRoot := smt.NormalizeRoot(diff.Root())
	if isDeposit {
		txHash = diffRoot
	}
	return &types.ReceivedAssetProof{
		IsDeposit: isDeposit,
		DiffTreeInclusionProof: types.DiffInclusionProof{
			BlockHeader: types.BlockHeader{BlockNumber: blockNumber},
			TxProof:     types.MerkleProof{Root: diffRoot, Value: txHash},
			AssetProof:  outerProof,
		},
		LatestAccountTreeInclusionProof: types.InclusionProof{Value: types.HashFromUint64(uint64(blockNumber))},
		Nonce:                           types.HashFromUint64(777),
		Assets:                          assets,
	}
}

func ownToken(state *wallet.UserState) types.TokenKind {
	return types.TokenKind{ContractAddress: state.Account.Address}
}

// seedFragment plants one fragment in the ledger and asset tree.
func seedFragment(t *testing.T, state *wallet.UserState, kind types.TokenKind, amount uint64, mergeKey types.Hash) {
	t.Helper()
	state.Assets.Add(kind, amount, mergeKey)
	_, err := state.AssetTree.Set(mergeKey, kind.ContractAddress, kind.VariableIndex.ToHash(), types.HashFromUint64(amount))
	require.NoError(t, err)
}

func requireLedgerMatchesTree(t *testing.T, state *wallet.UserState) {
	t.Helper()
	for _, fragment := range state.Assets.List() {
		balance, err := state.AssetTree.GetBalance(
			fragment.MergeKey,
			fragment.Kind.ContractAddress,
			fragment.Kind.VariableIndex.ToHash(),
		)
		require.NoError(t, err)
		require.Equal(t, types.HashFromUint64(fragment.Amount), balance)
	}
}

func TestDepositMerge(t *testing.T) {
	svc, fake, state := newTestService(t)
	ctx := context.Background()

	kind := ownToken(state)
	proof := makeReceivedProof(t, true, 1, state.Account.Address,
		[]types.Asset{{Kind: kind, Amount: 10}}, types.Hash{})
	fake.received[state.Account.Address] = []*types.ReceivedAssetProof{proof}

	require.NoError(t, svc.SyncSentTransactions(ctx, state))
	require.Len(t, state.RestReceivedAssets, 1)

	_, err := svc.MergeAndPurge(ctx, state, nil, false)
	require.NoError(t, err)
	require.Empty(t, state.RestReceivedAssets)

	expectedKey := types.Hash(poseidon.TwoToOne(
		proof.DiffTreeInclusionProof.TxHash(),
		proof.DiffTreeInclusionProof.BlockHeader.Hash(),
	))
	fragments := state.Assets.List()
	require.Len(t, fragments, 1)
	require.Equal(t, types.AssetFragment{Kind: kind, Amount: 10, MergeKey: expectedKey}, fragments[0])

	totals := state.Assets.TotalByKind()
	require.Equal(t, "10", totals[kind].String())
	requireLedgerMatchesTree(t, state)
}

func TestTransferWithChange(t *testing.T) {
	svc, fake, state := newTestService(t)
	ctx := context.Background()

	kind := ownToken(state)
	mergeKey := types.HashFromUint64(55)
	seedFragment(t, state, kind, 10, mergeKey)

	receiver := wallet.AccountFromSeed("bob").Address
	txHash, err := svc.MergeAndPurge(ctx, state, []types.ContributedAsset{
		{ReceiverAddress: receiver, Kind: kind, Amount: 8},
	}, true)
	require.NoError(t, err)

	// Input fragment is spent and the tree leaf cleared.
	require.Zero(t, state.Assets.Len())
	balance, err := state.AssetTree.GetBalance(mergeKey, kind.ContractAddress, kind.VariableIndex.ToHash())
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	// The diff tree carried the output and the self-change leaf.
	store, err := smt.NewNodeStore(memorydb.NewDB())
	require.NoError(t, err)
	expectedDiff := smt.NewLayeredTree(store, nil)
	_, err = expectedDiff.Set(receiver, kind.ContractAddress, kind.VariableIndex.ToHash(), types.HashFromUint64(8))
	require.NoError(t, err)
	_, err = expectedDiff.Set(state.Account.Address, kind.ContractAddress, kind.VariableIndex.ToHash(), types.HashFromUint64(2))
	require.NoError(t, err)

	require.Len(t, fake.sentProofs, 1)
	inputs := fake.sentProofs[0].PublicInputs
	require.Equal(t, smt.NormalizeRoot(expectedDiff.Root()), inputs.DiffRoot)
	require.Equal(t, txHash, inputs.TxHash)

	// Broadcast carries only the real receiver, not the change.
	require.Len(t, fake.broadcasts, 1)
	broadcast := fake.broadcasts[0]
	require.Equal(t, state.Account.Address, broadcast.SignerAddress)
	require.Len(t, broadcast.Assets, 1)
	require.Equal(t, receiver, broadcast.Assets[0].ReceiverAddress)
	require.Len(t, broadcast.PurgeOutputInclusionWitnesses, 1)

	sent, ok := state.SentTransactions[txHash]
	require.True(t, ok)
	require.Equal(t, []types.AssetFragment{{Kind: kind, Amount: 10, MergeKey: mergeKey}}, sent.Fragments)
	require.Nil(t, sent.ProposedBlockNumber)
}

func TestCancelledTransactionRestoration(t *testing.T) {
	svc, _, state := newTestService(t)
	ctx := context.Background()

	kind := ownToken(state)
	mergeKey := types.HashFromUint64(55)
	seedFragment(t, state, kind, 10, mergeKey)

	receiver := wallet.AccountFromSeed("bob").Address
	_, err := svc.MergeAndPurge(ctx, state, []types.ContributedAsset{
		{ReceiverAddress: receiver, Kind: kind, Amount: 8},
	}, false)
	require.NoError(t, err)
	require.Zero(t, state.Assets.Len())

	// Sender never signs; the approved block marks the tx invalid.
	_, err = svc.ProposeBlock(ctx)
	require.NoError(t, err)
	_, err = svc.ApproveBlock(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.SyncSentTransactions(ctx, state))

	fragments := state.Assets.List()
	require.Len(t, fragments, 1)
	require.Equal(t, types.AssetFragment{Kind: kind, Amount: 10, MergeKey: mergeKey}, fragments[0])
	require.Empty(t, state.SentTransactions)
	requireLedgerMatchesTree(t, state)

	// Restoring the same fragments again must not double-credit.
	require.NoError(t, svc.restoreFragments(state, fragments))
	require.Equal(t, 1, state.Assets.Len())
	requireLedgerMatchesTree(t, state)
}

func TestSignedTransactionFinalizes(t *testing.T) {
	svc, fake, state := newTestService(t)
	ctx := context.Background()

	kind := ownToken(state)
	seedFragment(t, state, kind, 10, types.HashFromUint64(55))

	receiver := wallet.AccountFromSeed("bob").Address
	txHash, err := svc.MergeAndPurge(ctx, state, []types.ContributedAsset{
		{ReceiverAddress: receiver, Kind: kind, Amount: 10},
	}, false)
	require.NoError(t, err)

	_, err = svc.ProposeBlock(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SignProposedBlock(ctx, state))

	sent := state.SentTransactions[txHash]
	require.NotNil(t, sent.ProposedBlockNumber)
	require.Equal(t, uint32(1), *sent.ProposedBlockNumber)
	require.True(t, fake.signed[txHash])

	_, err = svc.ApproveBlock(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SyncSentTransactions(ctx, state))

	// Finalized: the entry is gone and the spent fragment stays spent.
	require.Empty(t, state.SentTransactions)
	require.Zero(t, state.Assets.Len())
}

func TestInsufficientBalanceLeavesLedgerUntouched(t *testing.T) {
	svc, _, state := newTestService(t)

	kind := ownToken(state)
	seedFragment(t, state, kind, 10, types.HashFromUint64(55))
	rootBefore := state.AssetTree.Root()

	receiver := wallet.AccountFromSeed("bob").Address
	_, err := svc.MergeAndPurge(context.Background(), state, []types.ContributedAsset{
		{ReceiverAddress: receiver, Kind: kind, Amount: 11},
	}, false)
	require.True(t, errors.Is(err, ErrInsufficientBalance))
	require.Equal(t, 1, state.Assets.Len())
	require.Equal(t, rootBefore, state.AssetTree.Root())
}

func TestTooManyDiffs(t *testing.T) {
	svc, fake, state := newTestService(t)

	kind := ownToken(state)
	outputs := make([]types.ContributedAsset, svc.consts.NDiffs+1)
	for i := range outputs {
		outputs[i] = types.ContributedAsset{
			ReceiverAddress: types.HashFromUint64(uint64(1000 + i)),
			Kind:            kind,
			Amount:          1,
		}
	}
	_, err := svc.MergeAndPurge(context.Background(), state, outputs, false)
	require.True(t, errors.Is(err, ErrTooManyDiffs))
	require.Empty(t, fake.sentProofs)
}

func TestSelfTransferRejected(t *testing.T) {
	svc, _, state := newTestService(t)
	_, err := svc.MergeAndPurge(context.Background(), state, []types.ContributedAsset{
		{ReceiverAddress: state.Account.Address, Kind: ownToken(state), Amount: 1},
	}, false)
	require.True(t, errors.Is(err, ErrSelfTransfer))
}

func TestAmountBounds(t *testing.T) {
	svc, _, state := newTestService(t)
	receiver := wallet.AccountFromSeed("bob").Address
	kind := ownToken(state)

	for _, amount := range []uint64{0, types.MaxAmount, types.MaxAmount + 1} {
		_, err := svc.MergeAndPurge(context.Background(), state, []types.ContributedAsset{
			{ReceiverAddress: receiver, Kind: kind, Amount: amount},
		}, false)
		require.True(t, errors.Is(err, types.ErrInvalidAmount), "amount %d", amount)
	}
}

func TestNothingToDo(t *testing.T) {
	svc, _, state := newTestService(t)
	_, err := svc.MergeAndPurge(context.Background(), state, nil, false)
	require.True(t, errors.Is(err, ErrNothingToDo))
}

func TestMergeBatchLimit(t *testing.T) {
	svc, _, state := newTestService(t)
	ctx := context.Background()

	kind := ownToken(state)
	for i := 0; i < 3; i++ {
		proof := makeReceivedProof(t, true, uint32(i+1), state.Account.Address,
			[]types.Asset{{Kind: kind, Amount: uint64(10 + i)}}, types.Hash{})
		state.EnqueueReceivedAssets([]*types.ReceivedAssetProof{proof})
	}

	// NTxs is 2: one call drains two items and leaves the third queued.
	_, err := svc.MergeAndPurge(ctx, state, nil, false)
	require.NoError(t, err)
	require.Len(t, state.RestReceivedAssets, 1)
	require.Equal(t, 2, state.Assets.Len())
}

func TestDoubleMergeSkipped(t *testing.T) {
	svc, _, state := newTestService(t)

	kind := ownToken(state)
	proof := makeReceivedProof(t, true, 1, state.Account.Address,
		[]types.Asset{{Kind: kind, Amount: 10}}, types.Hash{})

	first, err := svc.calcMergeWitnesses(state, []*types.ReceivedAssetProof{proof})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, state.Assets.Len())

	second, err := svc.calcMergeWitnesses(state, []*types.ReceivedAssetProof{proof})
	require.NoError(t, err)
	require.Empty(t, second)
	require.Equal(t, 1, state.Assets.Len())
	requireLedgerMatchesTree(t, state)
}

func TestCancellationGuardSkipsUnsignedSender(t *testing.T) {
	svc, _, state := newTestService(t)

	kind := ownToken(state)
	proof := makeReceivedProof(t, false, 7, state.Account.Address,
		[]types.Asset{{Kind: kind, Amount: 10}}, types.HashFromUint64(123))
	// Sender's latest-account leaf points at an older block: cancelled.
	proof.LatestAccountTreeInclusionProof.Value = types.HashFromUint64(6)

	witnesses, err := svc.calcMergeWitnesses(state, []*types.ReceivedAssetProof{proof})
	require.NoError(t, err)
	require.Empty(t, witnesses)
	require.Zero(t, state.Assets.Len())
}

func TestInconsistentAssetRootRollsBack(t *testing.T) {
	svc, _, state := newTestService(t)

	kind := ownToken(state)
	proof := makeReceivedProof(t, true, 1, state.Account.Address,
		[]types.Asset{{Kind: kind, Amount: 10}}, types.Hash{})
	proof.DiffTreeInclusionProof.AssetProof.Value = types.HashFromUint64(666)

	rootBefore := state.AssetTree.Root()
	witnesses, err := svc.calcMergeWitnesses(state, []*types.ReceivedAssetProof{proof})
	require.NoError(t, err)
	require.Empty(t, witnesses)
	require.Zero(t, state.Assets.Len())
	require.Equal(t, rootBefore, state.AssetTree.Root())
}

func TestTransferEndToEnd(t *testing.T) {
	svc, fake, state := newTestService(t)
	ctx := context.Background()

	kind := ownToken(state)
	proof := makeReceivedProof(t, true, 1, state.Account.Address,
		[]types.Asset{{Kind: kind, Amount: 10}}, types.Hash{})
	fake.received[state.Account.Address] = []*types.ReceivedAssetProof{proof}

	receiver := wallet.AccountFromSeed("bob").Address
	txHash, err := svc.Transfer(ctx, state, []types.ContributedAsset{
		{ReceiverAddress: receiver, Kind: kind, Amount: 8},
	})
	require.NoError(t, err)
	require.NotEqual(t, types.Hash{}, txHash)

	// The block cycle signed and approved the transaction.
	require.True(t, fake.signed[txHash])
	require.Len(t, fake.blocks, 1)
	require.True(t, fake.blocks[0].AddressList[0].IsValid)
	require.Len(t, fake.broadcasts, 1)
}

func TestDepositAssetsValidation(t *testing.T) {
	svc, fake, state := newTestService(t)
	ctx := context.Background()

	other := wallet.AccountFromSeed("bob").Address
	err := svc.DepositAssets(ctx, state, []types.ContributedAsset{
		{ReceiverAddress: state.Account.Address, Kind: types.TokenKind{ContractAddress: other}, Amount: 5},
	})
	require.Error(t, err)
	require.Empty(t, fake.deposits)

	require.NoError(t, svc.DepositAssets(ctx, state, []types.ContributedAsset{
		{ReceiverAddress: state.Account.Address, Kind: ownToken(state), Amount: 5},
	}))
	require.Len(t, fake.deposits, 1)
	require.Equal(t, uint64(5), fake.deposits[0].Amount)
}

func TestBulkMintAggregates(t *testing.T) {
	svc, fake, state := newTestService(t)
	ctx := context.Background()

	kind := ownToken(state)
	bob := wallet.AccountFromSeed("bob").Address
	distribution := []types.ContributedAsset{
		{ReceiverAddress: bob, Kind: kind, Amount: 3},
		{ReceiverAddress: bob, Kind: kind, Amount: 4},
		{ReceiverAddress: state.Account.Address, Kind: kind, Amount: 2},
	}

	// Seed the minter's balance instead of running the deposit leg.
	seedFragment(t, state, kind, 9, types.HashFromUint64(55))

	require.NoError(t, svc.BulkMint(ctx, state, distribution, false))

	// Bob's two entries were folded into one 7-unit output.
	require.Len(t, fake.broadcasts, 1)
	require.Len(t, fake.broadcasts[0].Assets, 1)
	require.Equal(t, bob, fake.broadcasts[0].Assets[0].ReceiverAddress)
	require.Equal(t, uint64(7), fake.broadcasts[0].Assets[0].Amount)
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, DefaultAggregatorURL, config.AggregatorURL)

	config.AggregatorURL = "http://aggregator.example:9000"
	require.NoError(t, SaveConfig(path, config))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, config, loaded)

	walletPath, err := WalletPath(dir, loaded.AggregatorURL)
	require.NoError(t, err)
	require.Contains(t, walletPath, "aggregator.example:9000")
}
