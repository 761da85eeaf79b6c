// Package poseidon implements the wallet's hash oracle: a Poseidon-style
// sponge over the Goldilocks field with a width-12 permutation (rate 8,
// capacity 4). Round constants and the MDS row are derived at init from a
// SHA-256 expander, so every process computes the same function without a
// baked-in parameter table.
//
// The rest of the system treats this package as opaque; swapping in the
// circuit-native parameter set changes no call sites.
package poseidon

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/minio/sha256-simd"
)

const (
	width         = 12
	rate          = 8
	fullRounds    = 8
	partialRounds = 22
)

// Digest is four canonical Goldilocks elements.
type Digest = [4]uint64

var (
	roundConstants [fullRounds + partialRounds][width]goldilocks.Element
	mdsRow         [width]goldilocks.Element
)

const parameterSeed = "poseidon-goldilocks-w12-r8-c4"

func init() {
	stream := newElementStream(parameterSeed)
	for r := range roundConstants {
		for i := range roundConstants[r] {
			roundConstants[r][i] = stream.next()
		}
	}
	// A circulant MDS row with a nonzero diagonal; drawn from the same
	// expander as the constants.
	for i := range mdsRow {
		mdsRow[i] = stream.next()
	}
}

// elementStream rejection-samples field elements from a SHA-256 counter
// stream.
type elementStream struct {
	seed    []byte
	counter uint64
	buf     [32]byte
	offset  int
}

func newElementStream(seed string) *elementStream {
	s := &elementStream{seed: []byte(seed)}
	s.refill()
	return s
}

func (s *elementStream) refill() {
	var block [8]byte
	binary.BigEndian.PutUint64(block[:], s.counter)
	s.counter++
	s.buf = sha256.Sum256(append(s.seed, block[:]...))
	s.offset = 0
}

func (s *elementStream) next() goldilocks.Element {
	for {
		if s.offset+8 > len(s.buf) {
			s.refill()
		}
		candidate := binary.BigEndian.Uint64(s.buf[s.offset:])
		s.offset += 8
		if candidate < goldilocks.Modulus().Uint64() {
			var e goldilocks.Element
			e.SetUint64(candidate)
			return e
		}
	}
}

// sbox raises x to the 7th power, the Goldilocks Poseidon S-box.
func sbox(x *goldilocks.Element) {
	var x2, x4, x6 goldilocks.Element
	x2.Square(x)
	x4.Square(&x2)
	x6.Mul(&x4, &x2)
	x.Mul(&x6, x)
}

func addConstants(state *[width]goldilocks.Element, round int) {
	for i := range state {
		state[i].Add(&state[i], &roundConstants[round][i])
	}
}

// mix applies the circulant MDS matrix row-rotation product.
func mix(state *[width]goldilocks.Element) {
	var out [width]goldilocks.Element
	for i := 0; i < width; i++ {
		var acc, term goldilocks.Element
		for j := 0; j < width; j++ {
			term.Mul(&mdsRow[(j-i+width)%width], &state[j])
			acc.Add(&acc, &term)
		}
		out[i] = acc
	}
	*state = out
}

func permute(state *[width]goldilocks.Element) {
	round := 0
	for i := 0; i < fullRounds/2; i++ {
		addConstants(state, round)
		for j := range state {
			sbox(&state[j])
		}
		mix(state)
		round++
	}
	for i := 0; i < partialRounds; i++ {
		addConstants(state, round)
		sbox(&state[0])
		mix(state)
		round++
	}
	for i := 0; i < fullRounds/2; i++ {
		addConstants(state, round)
		for j := range state {
			sbox(&state[j])
		}
		mix(state)
		round++
	}
}

func canonical(e *goldilocks.Element) uint64 {
	return e.Bits()[0]
}

// TwoToOne compresses two digests into one, the node hash of every Merkle
// structure in the system.
func TwoToOne(left, right Digest) Digest {
	var state [width]goldilocks.Element
	for i := 0; i < 4; i++ {
		state[i].SetUint64(left[i])
		state[4+i].SetUint64(right[i])
	}
	permute(&state)
	var out Digest
	for i := 0; i < 4; i++ {
		out[i] = canonical(&state[i])
	}
	return out
}

// HashElements absorbs an arbitrary sequence of canonical elements and
// squeezes one digest.
func HashElements(values []uint64) Digest {
	var state [width]goldilocks.Element
	for start := 0; start < len(values) || start == 0; start += rate {
		for i := 0; i < rate; i++ {
			if start+i < len(values) {
				var e goldilocks.Element
				e.SetUint64(values[start+i])
				state[i].Add(&state[i], &e)
			}
		}
		permute(&state)
		if len(values) == 0 {
			break
		}
	}
	var out Digest
	for i := 0; i < 4; i++ {
		out[i] = canonical(&state[i])
	}
	return out
}
