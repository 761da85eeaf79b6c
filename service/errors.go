package service

import "errors"

var (
	// ErrNothingToDo means there are no pending received assets to merge
	// and no outputs to send.
	ErrNothingToDo = errors.New("service: no pending merges and no outputs")

	// ErrInsufficientBalance means the ledger cannot cover a requested
	// output amount for some token kind.
	ErrInsufficientBalance = errors.New("service: insufficient balance")

	// ErrTooManyDiffs means a transaction would carry more input or output
	// slots than the circuit supports.
	ErrTooManyDiffs = errors.New("service: too many diffs in one transaction")

	// ErrSelfTransfer means an output's receiver is the sender itself.
	ErrSelfTransfer = errors.New("service: receiver equals sender")

	// ErrInconsistentAssetRoot means a locally recomputed asset root
	// disagrees with the root the aggregator's proof commits to.
	ErrInconsistentAssetRoot = errors.New("service: asset root mismatch against received proof")
)
