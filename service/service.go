// Package service drives the wallet state machine: merging received
// assets, constructing and submitting transfers, the block lifecycle, and
// reconciliation of cancelled sends.
package service

import (
	"github.com/intmax-network/go-rollup-wallet/aggregator"
	"github.com/intmax-network/go-rollup-wallet/prover"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// Service couples an aggregator client with the zk oracles and the
// deployment's rollup constants. All operations on a single UserState must
// be serialized by the caller.
type Service struct {
	client     *aggregator.Client
	transition prover.UserTransitionProver
	signer     prover.SignatureProver
	consts     types.RollupConstants
}

// New builds a service with the local (non-SNARK) oracles.
func New(client *aggregator.Client, consts types.RollupConstants) *Service {
	return NewWithProvers(client, consts, prover.LocalProver{}, prover.LocalSigner{})
}

// NewWithProvers builds a service over explicit proving backends.
func NewWithProvers(client *aggregator.Client, consts types.RollupConstants, transition prover.UserTransitionProver, signer prover.SignatureProver) *Service {
	return &Service{
		client:     client,
		transition: transition,
		signer:     signer,
		consts:     consts,
	}
}

// Client exposes the underlying aggregator client.
func (s *Service) Client() *aggregator.Client {
	return s.client
}

// Constants returns the deployment's rollup constants.
func (s *Service) Constants() types.RollupConstants {
	return s.consts
}
