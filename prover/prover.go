// Package prover is the boundary to the zk circuits. The circuits
// themselves are opaque oracles; this package fixes their witness-setting
// and public-input contracts, and provides deterministic local
// implementations that replay witnesses without producing a SNARK.
package prover

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/smt"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// ErrProofFailure signals that the prover or verifier rejected a witness.
var ErrProofFailure = errors.New("prover: witness rejected")

// UserTransitionWitness is the private input of the merge-and-purge
// transition circuit.
type UserTransitionWitness struct {
	SenderAddress        types.Address
	MergeWitnesses       []types.MergeProof
	PurgeInputWitnesses  []types.ProcessProof3
	PurgeOutputWitnesses []types.ProcessProof3
	Nonce                types.Hash
	OldUserAssetRoot     types.Hash
}

// UserTransitionProof is a proof of one user transition together with its
// public inputs.
type UserTransitionProof struct {
	PublicInputs types.TransactionPublicInputs `json:"public_inputs"`
	Proof        json.RawMessage               `json:"proof"`
}

// UserTransitionProver proves and verifies merge-and-purge transitions.
type UserTransitionProver interface {
	Prove(witness UserTransitionWitness) (UserTransitionProof, error)
	Verify(proof UserTransitionProof) error
}

// SignatureProof is a proof of knowledge of the private key behind a
// public key, bound to a message.
type SignatureProof struct {
	PublicInputs SignaturePublicInputs `json:"public_inputs"`
	Proof        json.RawMessage       `json:"proof"`
}

// SignaturePublicInputs are the public inputs of the simple-signature
// circuit.
type SignaturePublicInputs struct {
	PublicKey types.Hash `json:"public_key"`
	Message   types.Hash `json:"message"`
	Signature types.Hash `json:"signature"`
}

// SignatureProver signs world-state roots with an account key.
type SignatureProver interface {
	Sign(privateKey types.Hash, message types.Hash) (SignatureProof, error)
	Verify(proof SignatureProof) error
}

// LocalProver replays the witness chain to derive the public inputs the
// real circuit would expose. It enforces the same root-chaining
// consistency the circuit constrains.
type LocalProver struct{}

var _ UserTransitionProver = LocalProver{}

// Prove derives the transition's public inputs from the witness.
//
// The merge witnesses chain the asset root from the old root to the middle
// root, the purge input witnesses from the middle root to the new root.
// The diff root is the final root of the purge output chain over an empty
// tree, and tx_hash = Poseidon(diff_root, nonce).
func (LocalProver) Prove(witness UserTransitionWitness) (UserTransitionProof, error) {
	middleRoot := witness.OldUserAssetRoot
	for i, merge := range witness.MergeWitnesses {
		p := merge.MergeProcessProof
		if p.OldRoot != middleRoot {
			return UserTransitionProof{}, fmt.Errorf("%w: merge witness %d does not chain", ErrProofFailure, i)
		}
		if !smt.VerifyProcessProof(p) {
			return UserTransitionProof{}, fmt.Errorf("%w: merge witness %d is inconsistent", ErrProofFailure, i)
		}
		middleRoot = p.NewRoot
	}

	newRoot := middleRoot
	for i, input := range witness.PurgeInputWitnesses {
		p := input[0]
		if p.OldRoot != newRoot {
			return UserTransitionProof{}, fmt.Errorf("%w: purge input witness %d does not chain", ErrProofFailure, i)
		}
		if !smt.VerifyProcessProof(p) {
			return UserTransitionProof{}, fmt.Errorf("%w: purge input witness %d is inconsistent", ErrProofFailure, i)
		}
		newRoot = p.NewRoot
	}

	diffRoot := types.ZeroHash
	for i, output := range witness.PurgeOutputWitnesses {
		p := output[0]
		if p.OldRoot != smt.DenormalizeRoot(diffRoot) {
			return UserTransitionProof{}, fmt.Errorf("%w: purge output witness %d does not chain", ErrProofFailure, i)
		}
		if !smt.VerifyProcessProof(p) {
			return UserTransitionProof{}, fmt.Errorf("%w: purge output witness %d is inconsistent", ErrProofFailure, i)
		}
		diffRoot = smt.NormalizeRoot(p.NewRoot)
	}

	publicInputs := types.TransactionPublicInputs{
		SenderAddress:       witness.SenderAddress,
		OldUserAssetRoot:    witness.OldUserAssetRoot,
		MiddleUserAssetRoot: middleRoot,
		NewUserAssetRoot:    newRoot,
		DiffRoot:            diffRoot,
		Nonce:               witness.Nonce,
		TxHash:              types.Hash(poseidon.TwoToOne(diffRoot, witness.Nonce)),
	}
	proofBytes, err := json.Marshal(publicInputs)
	if err != nil {
		return UserTransitionProof{}, err
	}
	return UserTransitionProof{PublicInputs: publicInputs, Proof: proofBytes}, nil
}

// Verify checks the proof against its public inputs.
func (LocalProver) Verify(proof UserTransitionProof) error {
	if proof.PublicInputs.TxHash != types.Hash(poseidon.TwoToOne(proof.PublicInputs.DiffRoot, proof.PublicInputs.Nonce)) {
		return fmt.Errorf("%w: tx hash does not match diff root and nonce", ErrProofFailure)
	}
	var replay types.TransactionPublicInputs
	if err := json.Unmarshal(proof.Proof, &replay); err != nil {
		return fmt.Errorf("%w: %v", ErrProofFailure, err)
	}
	if replay != proof.PublicInputs {
		return fmt.Errorf("%w: proof does not bind public inputs", ErrProofFailure)
	}
	return nil
}

// LocalSigner derives signatures by hashing the private key with the
// message, the same binding the simple-signature circuit proves in zero
// knowledge.
type LocalSigner struct{}

var _ SignatureProver = LocalSigner{}

// Sign binds message to the keypair.
func (LocalSigner) Sign(privateKey types.Hash, message types.Hash) (SignatureProof, error) {
	publicKey := types.Hash(poseidon.TwoToOne(privateKey, types.ZeroHash))
	inputs := SignaturePublicInputs{
		PublicKey: publicKey,
		Message:   message,
		Signature: types.Hash(poseidon.TwoToOne(privateKey, message)),
	}
	proofBytes, err := json.Marshal(inputs)
	if err != nil {
		return SignatureProof{}, err
	}
	return SignatureProof{PublicInputs: inputs, Proof: proofBytes}, nil
}

// Verify checks proof shape; the binding of signature to public key is the
// circuit's statement and is opaque here.
func (LocalSigner) Verify(proof SignatureProof) error {
	if proof.PublicInputs.PublicKey.IsZero() || proof.PublicInputs.Signature.IsZero() {
		return fmt.Errorf("%w: empty signature inputs", ErrProofFailure)
	}
	return nil
}
