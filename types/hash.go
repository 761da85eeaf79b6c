// Package types holds the wallet's domain types: field elements and hashes,
// token kinds and assets, block headers and the witness structures exchanged
// with the aggregator.
package types

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FieldOrder is the Goldilocks prime 2^64 - 2^32 + 1. Every element of a
// Hash is canonical, i.e. strictly less than FieldOrder.
const FieldOrder uint64 = 0xffffffff00000001

// HashLength is the serialized size of a Hash in bytes.
const HashLength = 32

var errElementTooLarge = errors.New("hash element exceeds field order")

// Hash is four Goldilocks field elements, the output domain of the Poseidon
// two-to-one hash. The canonical hex form is "0x" followed by 64 lowercase
// hex characters: element 3 first, element 0 last, each big-endian.
type Hash [4]uint64

// Address identifies an account or contract namespace.
type Address = Hash

// ZeroHash is the empty hash.
var ZeroHash = Hash{}

// HashFromUint64 embeds x into element 0 of a Hash, leaving the other
// elements zero. This mirrors the prover's from_partial embedding used for
// balances and block numbers.
func HashFromUint64(x uint64) Hash {
	return Hash{x % FieldOrder, 0, 0, 0}
}

// IsZero reports whether all four elements are zero.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Bytes returns the canonical big-endian 32-byte form.
func (h Hash) Bytes() [HashLength]byte {
	var out [HashLength]byte
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint64(out[i*8:], h[3-i])
	}
	return out
}

// BytesLE returns the byte-reversed form used when an intmax account
// crosses the EVM offer-manager boundary.
func (h Hash) BytesLE() [HashLength]byte {
	be := h.Bytes()
	var out [HashLength]byte
	for i := 0; i < HashLength; i++ {
		out[i] = be[HashLength-1-i]
	}
	return out
}

// Hex returns the 0x-prefixed canonical hex form.
func (h Hash) Hex() string {
	b := h.Bytes()
	return hexutil.Encode(b[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// HashFromBytes parses a canonical big-endian 32-byte form.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("invalid hash length %d", len(b))
	}
	var h Hash
	for i := 0; i < 4; i++ {
		v := binary.BigEndian.Uint64(b[i*8:])
		if v >= FieldOrder {
			return Hash{}, errElementTooLarge
		}
		h[3-i] = v
	}
	return h, nil
}

// HexToHash parses a 0x-prefixed hex string.
func HexToHash(s string) (Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(b)
}

// HexToAddress parses a 0x-prefixed hex string as an Address.
func HexToAddress(s string) (Address, error) {
	return HexToHash(s)
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HexToHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Uint64 returns element 0, the inverse of HashFromUint64 for embedded
// scalars.
func (h Hash) Uint64() uint64 {
	return h[0]
}

// Uint32 truncates element 0 to 32 bits. The latest-account tree stores
// confirmed block numbers this way.
func (h Hash) Uint32() uint32 {
	return uint32(h[0])
}
