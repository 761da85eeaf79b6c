package wallet

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// Account is a rollup keypair. The public key is the Poseidon image of the
// private key; the account address is the public key.
type Account struct {
	PrivateKey types.Hash    `json:"private_key"`
	PublicKey  types.Hash    `json:"public_key"`
	Address    types.Address `json:"address"`
}

func accountFromPrivateKey(privateKey types.Hash) Account {
	publicKey := types.Hash(poseidon.TwoToOne(privateKey, types.ZeroHash))
	return Account{
		PrivateKey: privateKey,
		PublicKey:  publicKey,
		Address:    publicKey,
	}
}

// NewAccount generates an account from the system CSPRNG.
func NewAccount() (Account, error) {
	privateKey, err := RandomHash()
	if err != nil {
		return Account{}, err
	}
	return accountFromPrivateKey(privateKey), nil
}

// RandomHash draws four field elements from the system CSPRNG, used for
// transaction nonces.
func RandomHash() (types.Hash, error) {
	var h types.Hash
	for i := range h {
		element, err := randomElement()
		if err != nil {
			return types.Hash{}, err
		}
		h[i] = element
	}
	return h, nil
}

func randomElement() (uint64, error) {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, err
		}
		candidate := binary.BigEndian.Uint64(buf[:])
		if candidate < types.FieldOrder {
			return candidate, nil
		}
	}
}

// AccountFromSeed derives an account deterministically from a seed string
// via SHAKE-256 expansion.
func AccountFromSeed(seed string) Account {
	shake := sha3.NewShake256()
	shake.Write([]byte(seed))
	var privateKey types.Hash
	var buf [8]byte
	for i := range privateKey {
		for {
			shake.Read(buf[:])
			candidate := binary.BigEndian.Uint64(buf[:])
			if candidate < types.FieldOrder {
				privateKey[i] = candidate
				break
			}
		}
	}
	return accountFromPrivateKey(privateKey)
}
