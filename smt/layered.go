package smt

import (
	"github.com/intmax-network/go-rollup-wallet/types"
)

// LayeredTree is the three-level composition used for asset trees and
// per-transaction diff trees: an outer tree (merge key or receiver) whose
// values are the roots of middle trees (contract address) whose values are
// the roots of inner trees (variable index) holding embedded balances.
// Empty subtree roots are stored as the zero hash so that "slot is empty"
// reads uniformly as zero at every layer.
type LayeredTree struct {
	store *NodeStore
	root  types.Hash
}

// NewLayeredTree opens a layered tree at root, or empty if root is nil.
func NewLayeredTree(store *NodeStore, root *types.Hash) *LayeredTree {
	t := &LayeredTree{store: store}
	if root != nil {
		t.root = *root
	} else {
		t.root = DefaultRoot()
	}
	return t
}

// Store exposes the shared node store for forks and snapshots.
func (t *LayeredTree) Store() *NodeStore {
	return t.store
}

// Root returns the outer root.
func (t *LayeredTree) Root() types.Hash {
	return t.root
}

// ChangeRoot moves the view to another committed outer root.
func (t *LayeredTree) ChangeRoot(root types.Hash) {
	t.root = root
}

// Set writes value at (k1, k2, k3) and returns the per-layer process
// proofs, outermost first.
func (t *LayeredTree) Set(k1, k2, k3, value types.Hash) (types.ProcessProof3, error) {
	outer := NewTree(t.store, &t.root)

	midValue, err := outer.Get(k1)
	if err != nil {
		return types.ProcessProof3{}, err
	}
	midRoot := DenormalizeRoot(midValue)
	middle := NewTree(t.store, &midRoot)

	innValue, err := middle.Get(k2)
	if err != nil {
		return types.ProcessProof3{}, err
	}
	innRoot := DenormalizeRoot(innValue)
	inner := NewTree(t.store, &innRoot)

	innerProof, err := inner.Update(k3, value)
	if err != nil {
		return types.ProcessProof3{}, err
	}
	middleProof, err := middle.Update(k2, NormalizeRoot(inner.Root()))
	if err != nil {
		return types.ProcessProof3{}, err
	}
	outerProof, err := outer.Update(k1, NormalizeRoot(middle.Root()))
	if err != nil {
		return types.ProcessProof3{}, err
	}

	t.root = outer.Root()
	return types.ProcessProof3{outerProof, middleProof, innerProof}, nil
}

// Find returns per-layer inclusion proofs for (k1, k2, k3), outermost
// first. When an upper layer is empty the lower proofs witness empty
// subtrees.
func (t *LayeredTree) Find(k1, k2, k3 types.Hash) ([3]types.InclusionProof, error) {
	outer := NewTree(t.store, &t.root)
	outerProof, err := outer.Find(k1)
	if err != nil {
		return [3]types.InclusionProof{}, err
	}
	midRoot := DenormalizeRoot(outerProof.Value)
	middle := NewTree(t.store, &midRoot)
	middleProof, err := middle.Find(k2)
	if err != nil {
		return [3]types.InclusionProof{}, err
	}
	innRoot := DenormalizeRoot(middleProof.Value)
	inner := NewTree(t.store, &innRoot)
	innerProof, err := inner.Find(k3)
	if err != nil {
		return [3]types.InclusionProof{}, err
	}
	return [3]types.InclusionProof{outerProof, middleProof, innerProof}, nil
}

// GetBalance returns the embedded value stored at (k1, k2, k3); zero when
// absent.
func (t *LayeredTree) GetBalance(k1, k2, k3 types.Hash) (types.Hash, error) {
	proofs, err := t.Find(k1, k2, k3)
	if err != nil {
		return types.Hash{}, err
	}
	return proofs[2].Value, nil
}

// SubRoot returns the normalized root of the subtree under outer key k1:
// the zero hash when nothing was ever merged under k1. The merge engine's
// double-merge guard and asset-root comparison both read this.
func (t *LayeredTree) SubRoot(k1 types.Hash) (types.Hash, error) {
	outer := NewTree(t.store, &t.root)
	return outer.Get(k1)
}

// OuterFind proves the outer slot for k1, the per-receiver witness used
// when broadcasting a transaction diff.
func (t *LayeredTree) OuterFind(k1 types.Hash) (types.InclusionProof, error) {
	outer := NewTree(t.store, &t.root)
	return outer.Find(k1)
}
