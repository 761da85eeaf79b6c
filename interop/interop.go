// Package interop is the boundary between the rollup wallet and EVM
// chains carrying the OfferManager contracts. Intmax accounts cross this
// boundary in little-endian byte order, the reverse of their canonical hex
// form; preserve that convention everywhere here.
package interop

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	solsha3 "github.com/miguelmota/go-solidity-sha3"
	"github.com/rs/zerolog/log"

	"github.com/intmax-network/go-rollup-wallet/interop/offermanager"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// NetworkConfig describes one EVM deployment of the offer managers.
type NetworkConfig struct {
	Name                       string
	RPCURL                     string
	ChainID                    int64
	OfferManagerAddress        common.Address
	ReverseOfferManagerAddress common.Address
}

var (
	// ScrollAlphaConfig targets the Scroll alpha testnet deployment.
	ScrollAlphaConfig = NetworkConfig{
		Name:                       "SCROLL_ALPHA",
		RPCURL:                     "https://alpha-rpc.scroll.io/l2",
		ChainID:                    534353,
		OfferManagerAddress:        common.HexToAddress("0xA3b4A6b48aFC5657fF0A48dFF39CfC2C87f0bE14"),
		ReverseOfferManagerAddress: common.HexToAddress("0x505Bc9112c1bDD230C63d94f0Fe0c6aBeF3a6941"),
	}

	// PolygonZkEVMTestConfig targets the Polygon zkEVM testnet deployment.
	PolygonZkEVMTestConfig = NetworkConfig{
		Name:                       "POLYGON_ZK_EVM_TEST",
		RPCURL:                     "https://rpc.public.zkevm-test.net",
		ChainID:                    1442,
		OfferManagerAddress:        common.HexToAddress("0xb1Dc36CC08a15AF16b1606b8E0d94EA51a7d1E34"),
		ReverseOfferManagerAddress: common.HexToAddress("0xA25dbbA27B7b2b1c0A21e2fB6f8F9eB86449fCE7"),
	}
)

// ParseNetworkName resolves a user-facing network alias.
func ParseNetworkName(name string) (NetworkConfig, error) {
	switch strings.ToLower(name) {
	case "scroll_alpha", "scroll", "scroll-alpha":
		return ScrollAlphaConfig, nil
	case "polygon_zk_evm_test", "polygon", "polygon-zk-evm":
		return PolygonZkEVMTestConfig, nil
	default:
		return NetworkConfig{}, fmt.Errorf("network name %q was not found", name)
	}
}

// MakerTransferInfo is the intmax side of a swap: the maker gives amount
// units of kind on the rollup.
type MakerTransferInfo struct {
	Address       common.Address
	IntmaxAccount types.Address
	Kind          types.TokenKind
	Amount        uint64
}

// IntmaxAccountLE returns the maker's rollup account in the boundary's
// little-endian byte order.
func (i MakerTransferInfo) IntmaxAccountLE() [32]byte {
	return i.IntmaxAccount.BytesLE()
}

// AssetID packs the token kind for the contract: the little-endian
// interpretation of the kind's byte encoding, which reduces to the
// contract address as a big-endian integer.
func (i MakerTransferInfo) AssetID() *big.Int {
	bytes := i.Kind.ContractAddress.Bytes()
	return new(big.Int).SetBytes(bytes[:])
}

// AmountWei returns the rollup amount as a contract integer.
func (i MakerTransferInfo) AmountWei() *big.Int {
	return new(big.Int).SetUint64(i.Amount)
}

// TakerTransferInfo is the EVM side of a swap: the taker pays Amount of
// the ERC20 at TokenAddress (the zero address means the native coin).
type TakerTransferInfo struct {
	Address       common.Address
	IntmaxAccount types.Address
	TokenAddress  common.Address
	Amount        *big.Int
}

// IntmaxAccountLE returns the taker's rollup account in the boundary's
// little-endian byte order.
func (i TakerTransferInfo) IntmaxAccountLE() [32]byte {
	return i.IntmaxAccount.BytesLE()
}

// Session is an authenticated connection to one network's offer managers.
type Session struct {
	config  NetworkConfig
	client  *ethclient.Client
	auth    *bind.TransactOpts
	direct  *offermanager.OfferManager
	reverse *offermanager.OfferManagerReverse
}

// Dial connects to the network and binds both offer manager contracts.
// secretKey is the hex-encoded EVM private key.
func Dial(ctx context.Context, config NetworkConfig, secretKey string) (*Session, error) {
	client, err := ethclient.DialContext(ctx, config.RPCURL)
	if err != nil {
		return nil, err
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(secretKey, "0x"))
	if err != nil {
		return nil, err
	}
	auth := bind.NewKeyedTransactor(privateKey)

	direct, err := offermanager.NewOfferManager(config.OfferManagerAddress, client)
	if err != nil {
		return nil, err
	}
	reverse, err := offermanager.NewOfferManagerReverse(config.ReverseOfferManagerAddress, client)
	if err != nil {
		return nil, err
	}
	return &Session{
		config:  config,
		client:  client,
		auth:    auth,
		direct:  direct,
		reverse: reverse,
	}, nil
}

// Close releases the RPC connection.
func (s *Session) Close() {
	s.client.Close()
}

// RegisterTransfer registers a maker offer: the maker promises intmax
// assets, the named taker activates by paying on this chain. Returns the
// new offer id.
func (s *Session) RegisterTransfer(ctx context.Context, maker MakerTransferInfo, taker TakerTransferInfo) (*big.Int, error) {
	opts := *s.auth
	opts.Context = ctx
	tx, err := s.direct.Register(
		&opts,
		maker.IntmaxAccountLE(),
		maker.AssetID(),
		maker.AmountWei(),
		taker.Address,
		taker.IntmaxAccountLE(),
		taker.TokenAddress,
		taker.Amount,
	)
	if err != nil {
		return nil, err
	}
	receipt, err := bind.WaitMined(ctx, s.client, tx)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("txHash", tx.Hash().Hex()).
		Uint64("blockNumber", receipt.BlockNumber.Uint64()).
		Msg("Registered offer")

	next, err := s.direct.NextOfferId(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, err
	}
	offerID := new(big.Int).Sub(next, big.NewInt(1))
	registered, err := s.direct.IsRegistered(&bind.CallOpts{Context: ctx}, offerID)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, fmt.Errorf("offer %s was not registered", offerID)
	}
	return offerID, nil
}

// ActivateOffer pays a maker offer's taker amount and flips its activated
// flag, releasing the intmax side to the taker. Idempotent.
func (s *Session) ActivateOffer(ctx context.Context, offerID *big.Int) (bool, error) {
	callOpts := &bind.CallOpts{Context: ctx}
	activated, err := s.direct.IsActivated(callOpts, offerID)
	if err != nil {
		return false, err
	}
	if activated {
		log.Info().Str("offerId", offerID.String()).Msg("Offer already activated")
		return true, nil
	}

	offer, err := s.direct.GetOffer(callOpts, offerID)
	if err != nil {
		return false, err
	}

	opts := *s.auth
	opts.Context = ctx
	opts.Value = offer.TakerAmount
	tx, err := s.direct.Activate(&opts, offerID)
	if err != nil {
		return false, err
	}
	if _, err := bind.WaitMined(ctx, s.client, tx); err != nil {
		return false, err
	}
	return s.direct.IsActivated(callOpts, offerID)
}

// GetOffer fetches an offer record; ok is false when no offer exists
// under the id.
func (s *Session) GetOffer(ctx context.Context, offerID *big.Int, isReverse bool) (offermanager.Offer, bool, error) {
	callOpts := &bind.CallOpts{Context: ctx}
	var offer offermanager.Offer
	var err error
	if isReverse {
		offer, err = s.reverse.GetOffer(callOpts, offerID)
	} else {
		offer, err = s.direct.GetOffer(callOpts, offerID)
	}
	if err != nil {
		return offermanager.Offer{}, false, err
	}
	if !isReverse && offer.Maker == (common.Address{}) {
		return offermanager.Offer{}, false, nil
	}
	if isReverse && offer.Taker == (common.Address{}) {
		return offermanager.Offer{}, false, nil
	}
	return offer, true, nil
}

// LockOffer escrows the taker's payment in the reverse offer manager. The
// named maker unlocks it by proving the intmax-side transfer.
func (s *Session) LockOffer(ctx context.Context, taker TakerTransferInfo, maker MakerTransferInfo) (*big.Int, error) {
	opts := *s.auth
	opts.Context = ctx
	opts.Value = taker.Amount
	tx, err := s.reverse.Register(
		&opts,
		taker.IntmaxAccountLE(),
		taker.TokenAddress,
		taker.Amount,
		maker.Address,
		maker.AssetID(),
		maker.AmountWei(),
	)
	if err != nil {
		return nil, err
	}
	if _, err := bind.WaitMined(ctx, s.client, tx); err != nil {
		return nil, err
	}

	next, err := s.reverse.NextOfferId(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, err
	}
	offerID := new(big.Int).Sub(next, big.NewInt(1))
	locked, err := s.reverse.IsRegistered(&bind.CallOpts{Context: ctx}, offerID)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, fmt.Errorf("offer %s was not locked", offerID)
	}
	return offerID, nil
}

// UnlockOffer releases a locked payment with an intmax inclusion witness.
// Idempotent.
func (s *Session) UnlockOffer(ctx context.Context, offerID *big.Int, witness []byte) (bool, error) {
	offer, ok, err := s.GetOffer(ctx, offerID, true)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("offer %s is not registered", offerID)
	}
	if offer.Activated {
		log.Info().Str("offerId", offerID.String()).Msg("Offer already unlocked")
		return true, nil
	}

	opts := *s.auth
	opts.Context = ctx
	tx, err := s.reverse.Activate(&opts, offerID, witness)
	if err != nil {
		return false, err
	}
	if _, err := bind.WaitMined(ctx, s.client, tx); err != nil {
		return false, err
	}
	return s.reverse.IsActivated(&bind.CallOpts{Context: ctx}, offerID)
}

// AssetDigest is the packed digest the inclusion verifier computes over
// one transferred asset and its rollup recipient.
func AssetDigest(recipient types.Address, kind types.TokenKind, amount uint64) []byte {
	recipientBytes := recipient.Bytes()
	tokenBytes := kind.ContractAddress.Bytes()
	return solsha3.SoliditySHA3(
		[]string{"bytes32", "bytes32", "uint256", "uint256"},
		[]interface{}{
			recipientBytes[:],
			tokenBytes[:],
			new(big.Int).SetUint64(uint64(kind.VariableIndex)),
			new(big.Int).SetUint64(amount),
		},
	)
}
