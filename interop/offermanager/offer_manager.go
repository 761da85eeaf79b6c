// Package offermanager contains bindings for the OfferManager contracts,
// the EVM side of intmax atomic swaps. The direct contract escrows an
// intmax-side offer activated by an on-chain payment; the reverse contract
// escrows an on-chain payment unlocked by an intmax inclusion witness.
package offermanager

import (
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// Reference imports to suppress errors if they are not otherwise used.
var (
	_ = big.NewInt
	_ = strings.NewReader
	_ = ethereum.NotFound
	_ = abi.U256
	_ = bind.Bind
	_ = common.Big1
	_ = types.BloomLookup
	_ = event.NewSubscription
)

// OfferManagerABI is the input ABI used to generate the binding from.
const OfferManagerABI = "[{\"inputs\":[{\"internalType\":\"bytes32\",\"name\":\"makerIntmaxAddress\",\"type\":\"bytes32\"},{\"internalType\":\"uint256\",\"name\":\"makerAssetId\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"makerAmount\",\"type\":\"uint256\"},{\"internalType\":\"address\",\"name\":\"taker\",\"type\":\"address\"},{\"internalType\":\"bytes32\",\"name\":\"takerIntmaxAddress\",\"type\":\"bytes32\"},{\"internalType\":\"address\",\"name\":\"takerTokenAddress\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"takerAmount\",\"type\":\"uint256\"}],\"name\":\"register\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"name\":\"activate\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"ok\",\"type\":\"bool\"}],\"stateMutability\":\"payable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"name\":\"getOffer\",\"outputs\":[{\"internalType\":\"address\",\"name\":\"maker\",\"type\":\"address\"},{\"internalType\":\"bytes32\",\"name\":\"makerIntmaxAddress\",\"type\":\"bytes32\"},{\"internalType\":\"uint256\",\"name\":\"makerAssetId\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"makerAmount\",\"type\":\"uint256\"},{\"internalType\":\"address\",\"name\":\"taker\",\"type\":\"address\"},{\"internalType\":\"bytes32\",\"name\":\"takerIntmaxAddress\",\"type\":\"bytes32\"},{\"internalType\":\"address\",\"name\":\"takerTokenAddress\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"takerAmount\",\"type\":\"uint256\"},{\"internalType\":\"bool\",\"name\":\"activated\",\"type\":\"bool\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"name\":\"isRegistered\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"name\":\"isActivated\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"nextOfferId\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"},{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"takerAmount\",\"type\":\"uint256\"}],\"name\":\"OfferRegistered\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"name\":\"OfferActivated\",\"type\":\"event\"}]"

// Offer mirrors the contract's offer record.
type Offer struct {
	Maker              common.Address
	MakerIntmaxAddress [32]byte
	MakerAssetId       *big.Int
	MakerAmount        *big.Int
	Taker              common.Address
	TakerIntmaxAddress [32]byte
	TakerTokenAddress  common.Address
	TakerAmount        *big.Int
	Activated          bool
}

// OfferManager is an auto generated Go binding around an Ethereum contract.
type OfferManager struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

// NewOfferManager creates a new instance of OfferManager, bound to a
// specific deployed contract.
func NewOfferManager(address common.Address, backend bind.ContractBackend) (*OfferManager, error) {
	parsed, err := abi.JSON(strings.NewReader(OfferManagerABI))
	if err != nil {
		return nil, err
	}
	return &OfferManager{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Register is a paid mutator transaction binding the contract method 0x.
//
// Solidity: function register(bytes32 makerIntmaxAddress, uint256 makerAssetId, uint256 makerAmount, address taker, bytes32 takerIntmaxAddress, address takerTokenAddress, uint256 takerAmount) returns(uint256 offerId)
func (m *OfferManager) Register(opts *bind.TransactOpts, makerIntmaxAddress [32]byte, makerAssetId *big.Int, makerAmount *big.Int, taker common.Address, takerIntmaxAddress [32]byte, takerTokenAddress common.Address, takerAmount *big.Int) (*types.Transaction, error) {
	return m.contract.Transact(opts, "register", makerIntmaxAddress, makerAssetId, makerAmount, taker, takerIntmaxAddress, takerTokenAddress, takerAmount)
}

// Activate is a paid mutator transaction binding the contract method 0x.
//
// Solidity: function activate(uint256 offerId) payable returns(bool ok)
func (m *OfferManager) Activate(opts *bind.TransactOpts, offerId *big.Int) (*types.Transaction, error) {
	return m.contract.Transact(opts, "activate", offerId)
}

// GetOffer is a free data retrieval call binding the contract method 0x.
//
// Solidity: function getOffer(uint256 offerId) view returns(address maker, bytes32 makerIntmaxAddress, uint256 makerAssetId, uint256 makerAmount, address taker, bytes32 takerIntmaxAddress, address takerTokenAddress, uint256 takerAmount, bool activated)
func (m *OfferManager) GetOffer(opts *bind.CallOpts, offerId *big.Int) (Offer, error) {
	ret := new(Offer)
	out := &[]interface{}{
		&ret.Maker,
		&ret.MakerIntmaxAddress,
		&ret.MakerAssetId,
		&ret.MakerAmount,
		&ret.Taker,
		&ret.TakerIntmaxAddress,
		&ret.TakerTokenAddress,
		&ret.TakerAmount,
		&ret.Activated,
	}
	err := m.contract.Call(opts, out, "getOffer", offerId)
	return *ret, err
}

// IsRegistered is a free data retrieval call binding the contract method 0x.
//
// Solidity: function isRegistered(uint256 offerId) view returns(bool)
func (m *OfferManager) IsRegistered(opts *bind.CallOpts, offerId *big.Int) (bool, error) {
	out := new(bool)
	err := m.contract.Call(opts, out, "isRegistered", offerId)
	return *out, err
}

// IsActivated is a free data retrieval call binding the contract method 0x.
//
// Solidity: function isActivated(uint256 offerId) view returns(bool)
func (m *OfferManager) IsActivated(opts *bind.CallOpts, offerId *big.Int) (bool, error) {
	out := new(bool)
	err := m.contract.Call(opts, out, "isActivated", offerId)
	return *out, err
}

// NextOfferId is a free data retrieval call binding the contract method 0x.
//
// Solidity: function nextOfferId() view returns(uint256)
func (m *OfferManager) NextOfferId(opts *bind.CallOpts) (*big.Int, error) {
	out := new(*big.Int)
	err := m.contract.Call(opts, out, "nextOfferId")
	return *out, err
}

// Address returns the contract's deployed address.
func (m *OfferManager) Address() common.Address {
	return m.address
}

// OfferManagerOfferActivated represents a OfferActivated event raised by
// the OfferManager contract.
type OfferManagerOfferActivated struct {
	OfferId *big.Int
	Raw     types.Log
}

// WatchOfferActivated subscribes to the OfferActivated event, optionally
// filtered by offer id.
func (m *OfferManager) WatchOfferActivated(opts *bind.WatchOpts, sink chan<- *OfferManagerOfferActivated, offerId []*big.Int) (event.Subscription, error) {
	var offerIdRule []interface{}
	for _, id := range offerId {
		offerIdRule = append(offerIdRule, id)
	}
	logs, sub, err := m.contract.WatchLogs(opts, "OfferActivated", offerIdRule)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev := new(OfferManagerOfferActivated)
				if err := m.contract.UnpackLog(ev, "OfferActivated", log); err != nil {
					return err
				}
				ev.Raw = log
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}
