package smt

import (
	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/types"
)

func rootFromLeaf(key types.Hash, value types.Hash, siblings []types.Hash) types.Hash {
	current := leafDigest(value)
	for i, sibling := range siblings {
		depth := Depth - 1 - i
		if pathBit(key, depth) {
			current = poseidon.TwoToOne(sibling, current)
		} else {
			current = poseidon.TwoToOne(current, sibling)
		}
	}
	return current
}

// VerifyInclusionProof checks that proof binds its value to its root.
func VerifyInclusionProof(proof types.InclusionProof) bool {
	if len(proof.Siblings) != Depth {
		return false
	}
	return rootFromLeaf(proof.Key, proof.Value, proof.Siblings) == proof.Root
}

// VerifyProcessProof checks that proof describes a single-slot transition
// from its old root to its new root.
func VerifyProcessProof(proof types.ProcessProof) bool {
	if len(proof.Siblings) != Depth {
		return false
	}
	if rootFromLeaf(proof.Key, proof.OldValue, proof.Siblings) != proof.OldRoot {
		return false
	}
	return rootFromLeaf(proof.Key, proof.NewValue, proof.Siblings) == proof.NewRoot
}
