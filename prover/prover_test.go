package prover

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intmax-network/go-rollup-wallet/db/memorydb"
	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/smt"
	"github.com/intmax-network/go-rollup-wallet/types"
)

func buildWitness(t *testing.T) UserTransitionWitness {
	t.Helper()
	store, err := smt.NewNodeStore(memorydb.NewDB())
	require.NoError(t, err)

	assetTree := smt.NewLayeredTree(store, nil)
	oldRoot := assetTree.Root()

	// A merge writes a received subtree root into the outer layer.
	mergeKey := types.HashFromUint64(7)
	subRoot := types.HashFromUint64(11)
	outerRoot := assetTree.Root()
	outer := smt.NewTree(store, &outerRoot)
	mergeProof, err := outer.Update(mergeKey, subRoot)
	require.NoError(t, err)
	assetTree.ChangeRoot(outer.Root())

	// A purge clears the spent slot through the layered tree.
	contract := types.HashFromUint64(3)
	index := types.HashFromUint64(0)
	inputProofs, err := assetTree.Set(mergeKey, contract, index, types.ZeroHash)
	require.NoError(t, err)

	// The outbound diff tree starts empty.
	diffTree := smt.NewLayeredTree(store, nil)
	receiver := types.HashFromUint64(21)
	outputProofs, err := diffTree.Set(receiver, contract, index, types.HashFromUint64(100))
	require.NoError(t, err)

	return UserTransitionWitness{
		SenderAddress:        types.HashFromUint64(42),
		MergeWitnesses:       []types.MergeProof{{MergeProcessProof: mergeProof}},
		PurgeInputWitnesses:  []types.ProcessProof3{inputProofs},
		PurgeOutputWitnesses: []types.ProcessProof3{outputProofs},
		Nonce:                types.HashFromUint64(99),
		OldUserAssetRoot:     oldRoot,
	}
}

func TestLocalProverProve(t *testing.T) {
	witness := buildWitness(t)
	proof, err := LocalProver{}.Prove(witness)
	require.NoError(t, err)

	inputs := proof.PublicInputs
	require.Equal(t, witness.SenderAddress, inputs.SenderAddress)
	require.Equal(t, witness.OldUserAssetRoot, inputs.OldUserAssetRoot)
	require.Equal(t, witness.MergeWitnesses[0].MergeProcessProof.NewRoot, inputs.MiddleUserAssetRoot)
	require.Equal(t, witness.PurgeInputWitnesses[0][0].NewRoot, inputs.NewUserAssetRoot)
	require.Equal(t, smt.NormalizeRoot(witness.PurgeOutputWitnesses[0][0].NewRoot), inputs.DiffRoot)
	require.Equal(t, types.Hash(poseidon.TwoToOne(inputs.DiffRoot, witness.Nonce)), inputs.TxHash)

	require.NoError(t, LocalProver{}.Verify(proof))
}

func TestLocalProverRejectsBrokenChain(t *testing.T) {
	witness := buildWitness(t)
	witness.OldUserAssetRoot = types.HashFromUint64(1)
	_, err := LocalProver{}.Prove(witness)
	require.True(t, errors.Is(err, ErrProofFailure))
}

func TestLocalProverRejectsTamperedWitness(t *testing.T) {
	witness := buildWitness(t)
	witness.PurgeOutputWitnesses[0][0].NewValue = types.HashFromUint64(12345)
	_, err := LocalProver{}.Prove(witness)
	require.True(t, errors.Is(err, ErrProofFailure))
}

func TestLocalProverVerifyRejectsTamperedTxHash(t *testing.T) {
	witness := buildWitness(t)
	proof, err := LocalProver{}.Prove(witness)
	require.NoError(t, err)
	proof.PublicInputs.TxHash = types.HashFromUint64(5)
	require.True(t, errors.Is(LocalProver{}.Verify(proof), ErrProofFailure))
}

func TestLocalSigner(t *testing.T) {
	privateKey := types.HashFromUint64(13)
	message := types.HashFromUint64(1000)

	proof, err := LocalSigner{}.Sign(privateKey, message)
	require.NoError(t, err)
	require.Equal(t, types.Hash(poseidon.TwoToOne(privateKey, types.ZeroHash)), proof.PublicInputs.PublicKey)
	require.Equal(t, message, proof.PublicInputs.Message)
	require.Equal(t, types.Hash(poseidon.TwoToOne(privateKey, message)), proof.PublicInputs.Signature)
	require.NoError(t, LocalSigner{}.Verify(proof))

	again, err := LocalSigner{}.Sign(privateKey, message)
	require.NoError(t, err)
	require.Equal(t, proof.PublicInputs, again.PublicInputs)

	require.True(t, errors.Is(LocalSigner{}.Verify(SignatureProof{}), ErrProofFailure))
}
