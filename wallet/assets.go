// Package wallet holds the per-account wallet state: the asset ledger,
// the layered asset tree, in-flight transactions, and the durable
// multi-account snapshot.
package wallet

import (
	"math/big"

	"github.com/intmax-network/go-rollup-wallet/types"
)

// Assets is the ledger of spendable fragments belonging to one account.
// At most one fragment exists per (kind, merge key) pair; iteration order
// is unspecified.
type Assets struct {
	fragments []types.AssetFragment
}

// NewAssets returns an empty ledger.
func NewAssets() *Assets {
	return &Assets{}
}

// Add inserts a fragment. A duplicate triple is a no-op.
func (a *Assets) Add(kind types.TokenKind, amount uint64, mergeKey types.Hash) {
	fragment := types.AssetFragment{Kind: kind, Amount: amount, MergeKey: mergeKey}
	for _, existing := range a.fragments {
		if existing == fragment {
			return
		}
	}
	a.fragments = append(a.fragments, fragment)
}

// Filter returns the fragments of one token kind.
func (a *Assets) Filter(kind types.TokenKind) []types.AssetFragment {
	var out []types.AssetFragment
	for _, fragment := range a.fragments {
		if fragment.Kind == kind {
			out = append(out, fragment)
		}
	}
	return out
}

// Remove deletes the given fragments from the ledger.
func (a *Assets) Remove(fragments []types.AssetFragment) {
	kept := a.fragments[:0]
	for _, fragment := range a.fragments {
		removed := false
		for _, target := range fragments {
			if fragment == target {
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, fragment)
		}
	}
	a.fragments = kept
}

// RemoveKind deletes every fragment of one token kind.
func (a *Assets) RemoveKind(kind types.TokenKind) {
	kept := a.fragments[:0]
	for _, fragment := range a.fragments {
		if fragment.Kind != kind {
			kept = append(kept, fragment)
		}
	}
	a.fragments = kept
}

// List returns a copy of all fragments.
func (a *Assets) List() []types.AssetFragment {
	out := make([]types.AssetFragment, len(a.fragments))
	copy(out, a.fragments)
	return out
}

// Len returns the number of fragments.
func (a *Assets) Len() int {
	return len(a.fragments)
}

// TotalByKind sums amounts per token kind. Totals may exceed a uint64.
func (a *Assets) TotalByKind() map[types.TokenKind]*big.Int {
	totals := make(map[types.TokenKind]*big.Int)
	for _, fragment := range a.fragments {
		total, ok := totals[fragment.Kind]
		if !ok {
			total = new(big.Int)
			totals[fragment.Kind] = total
		}
		total.Add(total, new(big.Int).SetUint64(fragment.Amount))
	}
	return totals
}
