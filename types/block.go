package types

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/intmax-network/go-rollup-wallet/poseidon"
)

// BlockHeader is the aggregator's per-block commitment set: eight digests
// plus the block number.
type BlockHeader struct {
	BlockNumber              uint32
	PrevBlockHash            Hash
	BlockHeadersDigest       Hash
	TransactionsDigest       Hash
	DepositDigest            Hash
	ProposedWorldStateDigest Hash
	ApprovedWorldStateDigest Hash
	LatestAccountDigest      Hash
}

type blockHeaderJSON struct {
	BlockNumber              string `json:"block_number"`
	PrevBlockHash            Hash   `json:"prev_block_hash"`
	BlockHeadersDigest       Hash   `json:"block_headers_digest"`
	TransactionsDigest       Hash   `json:"transactions_digest"`
	DepositDigest            Hash   `json:"deposit_digest"`
	ProposedWorldStateDigest Hash   `json:"proposed_world_state_digest"`
	ApprovedWorldStateDigest Hash   `json:"approved_world_state_digest"`
	LatestAccountDigest      Hash   `json:"latest_account_digest"`
}

// MarshalJSON encodes the block number as a 4-byte big-endian hex string,
// the aggregator's wire convention.
func (h BlockHeader) MarshalJSON() ([]byte, error) {
	var numBytes [4]byte
	binary.BigEndian.PutUint32(numBytes[:], h.BlockNumber)
	return json.Marshal(blockHeaderJSON{
		BlockNumber:              hexutil.Encode(numBytes[:]),
		PrevBlockHash:            h.PrevBlockHash,
		BlockHeadersDigest:       h.BlockHeadersDigest,
		TransactionsDigest:       h.TransactionsDigest,
		DepositDigest:            h.DepositDigest,
		ProposedWorldStateDigest: h.ProposedWorldStateDigest,
		ApprovedWorldStateDigest: h.ApprovedWorldStateDigest,
		LatestAccountDigest:      h.LatestAccountDigest,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (h *BlockHeader) UnmarshalJSON(data []byte) error {
	var raw blockHeaderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	numBytes, err := hexutil.Decode(raw.BlockNumber)
	if err != nil {
		return fmt.Errorf("invalid block number %q: %w", raw.BlockNumber, err)
	}
	if len(numBytes) != 4 {
		return fmt.Errorf("invalid block number length %d", len(numBytes))
	}
	h.BlockNumber = binary.BigEndian.Uint32(numBytes)
	h.PrevBlockHash = raw.PrevBlockHash
	h.BlockHeadersDigest = raw.BlockHeadersDigest
	h.TransactionsDigest = raw.TransactionsDigest
	h.DepositDigest = raw.DepositDigest
	h.ProposedWorldStateDigest = raw.ProposedWorldStateDigest
	h.ApprovedWorldStateDigest = raw.ApprovedWorldStateDigest
	h.LatestAccountDigest = raw.LatestAccountDigest
	return nil
}

// Hash computes the block hash, a fixed Poseidon composition over the
// header fields. The shape must match the block circuit exactly.
func (h *BlockHeader) Hash() Hash {
	a := poseidon.TwoToOne(HashFromUint64(uint64(h.BlockNumber)), h.LatestAccountDigest)
	b := poseidon.TwoToOne(h.DepositDigest, h.TransactionsDigest)
	c := poseidon.TwoToOne(a, b)
	d := poseidon.TwoToOne(h.ProposedWorldStateDigest, h.ApprovedWorldStateDigest)
	e := poseidon.TwoToOne(c, d)
	return poseidon.TwoToOne(h.BlockHeadersDigest, e)
}

// BlockNumber is a block height in the aggregator's wire form: a 4-byte
// big-endian hex string.
type BlockNumber uint32

func (n BlockNumber) String() string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(n))
	return hexutil.Encode(buf[:])
}

func (n BlockNumber) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *BlockNumber) UnmarshalText(text []byte) error {
	raw, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid block number %q: %w", text, err)
	}
	if len(raw) != 4 {
		return fmt.Errorf("invalid block number length %d", len(raw))
	}
	*n = BlockNumber(binary.BigEndian.Uint32(raw))
	return nil
}

// SenderWithValidity marks one transaction slot of a block with its sender
// and whether the sender signed the proposal in time. An unsigned (invalid)
// entry means the sender cancelled the transaction.
type SenderWithValidity struct {
	SenderAddress Address `json:"sender_address"`
	IsValid       bool    `json:"is_valid"`
}

// BlockInfo is an approved block as reported by the aggregator.
type BlockInfo struct {
	Header       BlockHeader          `json:"header"`
	Transactions []Hash               `json:"transactions"`
	DepositList  []ContributedAsset   `json:"deposit_list"`
	AddressList  []SenderWithValidity `json:"address_list"`
}

// CancelledTransactions returns the hashes of transactions in the block
// that sender sent but did not sign.
func (b *BlockInfo) CancelledTransactions(sender Address) []Hash {
	var cancelled []Hash
	for i, entry := range b.AddressList {
		if i >= len(b.Transactions) {
			break
		}
		if entry.SenderAddress == sender && !entry.IsValid {
			cancelled = append(cancelled, b.Transactions[i])
		}
	}
	return cancelled
}
