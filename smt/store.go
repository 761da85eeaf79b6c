// Package smt implements the content-addressed sparse Merkle tree backing
// user asset trees and per-transaction diff trees: a fixed-depth tree of
// Poseidon node hashes whose nodes live in a shared key-value store, so
// any number of trees (committed or speculative) can hang off the same
// store and produce proofs without copying state.
package smt

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	walletdb "github.com/intmax-network/go-rollup-wallet/db"
	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// Depth is the number of branching levels; paths are the low 64 bits of a
// key's first element, least significant bit first.
const Depth = 64

var (
	errCorruptStore = errors.New("smt: node missing from store")

	// leafDomain separates leaf digests from internal nodes.
	leafDomain = types.Hash{1, 0, 0, 0}

	defaultNodes [Depth + 1]types.Hash
)

func init() {
	defaultNodes[Depth] = leafDigest(types.ZeroHash)
	for d := Depth - 1; d >= 0; d-- {
		defaultNodes[d] = poseidon.TwoToOne(defaultNodes[d+1], defaultNodes[d+1])
	}
}

func leafDigest(value types.Hash) types.Hash {
	return poseidon.TwoToOne(value, leafDomain)
}

// DefaultRoot is the root of an empty tree.
func DefaultRoot() types.Hash {
	return defaultNodes[0]
}

// NormalizeRoot maps the empty-tree root to the zero hash, the stored-value
// convention for layered subtree roots ("absent" reads as zero).
func NormalizeRoot(root types.Hash) types.Hash {
	if root == defaultNodes[0] {
		return types.ZeroHash
	}
	return root
}

// DenormalizeRoot is the inverse of NormalizeRoot.
func DenormalizeRoot(value types.Hash) types.Hash {
	if value.IsZero() {
		return defaultNodes[0]
	}
	return value
}

// NodeStore holds tree nodes keyed by node hash. Internal nodes map to
// left||right (64 bytes), leaf digests map to the leaf value (32 bytes).
// Nodes are immutable once written; forks never overwrite nodes they did
// not create because identical content hashes to the identical key.
type NodeStore struct {
	db walletdb.DB
}

// NewNodeStore wraps a DB and seeds the default-node table so that walks
// over untouched paths always resolve.
func NewNodeStore(database walletdb.DB) (*NodeStore, error) {
	s := &NodeStore{db: database}
	for d := 0; d < Depth; d++ {
		child := defaultNodes[d+1]
		if err := s.putInternal(defaultNodes[d], child, child); err != nil {
			return nil, err
		}
	}
	if err := s.putLeaf(defaultNodes[Depth], types.ZeroHash); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *NodeStore) putInternal(node, left, right types.Hash) error {
	l := left.Bytes()
	r := right.Bytes()
	key := node.Bytes()
	return s.db.Set(walletdb.NamespaceSMTNode, key[:], append(l[:], r[:]...))
}

func (s *NodeStore) putLeaf(node, value types.Hash) error {
	key := node.Bytes()
	v := value.Bytes()
	return s.db.Set(walletdb.NamespaceSMTNode, key[:], v[:])
}

func (s *NodeStore) children(node types.Hash) (types.Hash, types.Hash, error) {
	key := node.Bytes()
	raw, exists, err := s.db.Get(walletdb.NamespaceSMTNode, key[:])
	if err != nil {
		return types.Hash{}, types.Hash{}, err
	}
	if !exists || len(raw) != 2*types.HashLength {
		return types.Hash{}, types.Hash{}, fmt.Errorf("%w: internal %s", errCorruptStore, node)
	}
	left, err := types.HashFromBytes(raw[:types.HashLength])
	if err != nil {
		return types.Hash{}, types.Hash{}, err
	}
	right, err := types.HashFromBytes(raw[types.HashLength:])
	if err != nil {
		return types.Hash{}, types.Hash{}, err
	}
	return left, right, nil
}

func (s *NodeStore) leafValue(node types.Hash) (types.Hash, error) {
	key := node.Bytes()
	raw, exists, err := s.db.Get(walletdb.NamespaceSMTNode, key[:])
	if err != nil {
		return types.Hash{}, err
	}
	if !exists || len(raw) != types.HashLength {
		return types.Hash{}, fmt.Errorf("%w: leaf %s", errCorruptStore, node)
	}
	return types.HashFromBytes(raw)
}

// Dump exports every node entry, keyed by the node hash hex form. Used by
// the wallet snapshot.
func (s *NodeStore) Dump() (map[string]string, error) {
	out := make(map[string]string)
	iter := s.db.Iterator(walletdb.NamespaceSMTNode)
	for iter.Next() {
		node, err := types.HashFromBytes(iter.Key())
		if err != nil {
			return nil, err
		}
		out[node.Hex()] = hexutil.Encode(iter.Value())
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// Restore writes back entries produced by Dump.
func (s *NodeStore) Restore(nodes map[string]string) error {
	for nodeHex, valueHex := range nodes {
		node, err := types.HexToHash(nodeHex)
		if err != nil {
			return err
		}
		payload, err := hexutil.Decode(valueHex)
		if err != nil {
			return fmt.Errorf("smt: invalid node payload for %s: %w", nodeHex, err)
		}
		key := node.Bytes()
		if err := s.db.Set(walletdb.NamespaceSMTNode, key[:], payload); err != nil {
			return err
		}
	}
	return nil
}
