package smt

import (
	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// Tree is a single-layer sparse Merkle tree view over a NodeStore: a root
// cell plus the shared node map. Opening a second Tree at any committed
// root forks the tree for free.
type Tree struct {
	store *NodeStore
	root  types.Hash
}

// NewTree opens a tree at root, or at the empty root if root is nil.
func NewTree(store *NodeStore, root *types.Hash) *Tree {
	t := &Tree{store: store}
	if root != nil {
		t.root = *root
	} else {
		t.root = DefaultRoot()
	}
	return t
}

// Root returns the current root.
func (t *Tree) Root() types.Hash {
	return t.root
}

// ChangeRoot rewinds or fast-forwards the view to another committed root.
func (t *Tree) ChangeRoot(root types.Hash) {
	t.root = root
}

func pathBit(key types.Hash, depth int) bool {
	return (key[0]>>uint(depth))&1 == 1
}

// walk descends from the root, returning the side nodes (top-down) and the
// value at the key's leaf.
func (t *Tree) walk(key types.Hash) (sideNodes [Depth]types.Hash, value types.Hash, err error) {
	current := t.root
	for d := 0; d < Depth; d++ {
		left, right, cerr := t.store.children(current)
		if cerr != nil {
			err = cerr
			return
		}
		if pathBit(key, d) {
			sideNodes[d] = left
			current = right
		} else {
			sideNodes[d] = right
			current = left
		}
	}
	value, err = t.store.leafValue(current)
	return
}

// Get returns the value stored at key; the zero hash for an empty slot.
func (t *Tree) Get(key types.Hash) (types.Hash, error) {
	_, value, err := t.walk(key)
	return value, err
}

// Find returns an inclusion (or non-membership) proof for key at the
// current root.
func (t *Tree) Find(key types.Hash) (types.InclusionProof, error) {
	sideNodes, value, err := t.walk(key)
	if err != nil {
		return types.InclusionProof{}, err
	}
	return types.InclusionProof{
		Found:    !value.IsZero(),
		Key:      key,
		Value:    value,
		Siblings: leafAdjacent(sideNodes),
		Root:     t.root,
	}, nil
}

// Update writes value at key, advances the root, and returns the process
// proof of the transition. Writing the zero hash clears the slot.
func (t *Tree) Update(key types.Hash, value types.Hash) (types.ProcessProof, error) {
	sideNodes, oldValue, err := t.walk(key)
	if err != nil {
		return types.ProcessProof{}, err
	}

	current := leafDigest(value)
	if err := t.store.putLeaf(current, value); err != nil {
		return types.ProcessProof{}, err
	}
	for d := Depth - 1; d >= 0; d-- {
		var left, right types.Hash
		if pathBit(key, d) {
			left, right = sideNodes[d], current
		} else {
			left, right = current, sideNodes[d]
		}
		parent := poseidon.TwoToOne(left, right)
		if err := t.store.putInternal(parent, left, right); err != nil {
			return types.ProcessProof{}, err
		}
		current = parent
	}

	proof := types.ProcessProof{
		Key:      key,
		OldValue: oldValue,
		NewValue: value,
		Siblings: leafAdjacent(sideNodes),
		OldRoot:  t.root,
		NewRoot:  current,
	}
	t.root = current
	return proof, nil
}

// leafAdjacent reorders top-down side nodes into the proof convention,
// deepest sibling first.
func leafAdjacent(sideNodes [Depth]types.Hash) []types.Hash {
	out := make([]types.Hash, Depth)
	for i := 0; i < Depth; i++ {
		out[i] = sideNodes[Depth-1-i]
	}
	return out
}
