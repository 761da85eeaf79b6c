package offermanager

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// OfferManagerReverseABI is the input ABI used to generate the binding from.
const OfferManagerReverseABI = "[{\"inputs\":[{\"internalType\":\"bytes32\",\"name\":\"takerIntmaxAddress\",\"type\":\"bytes32\"},{\"internalType\":\"address\",\"name\":\"takerTokenAddress\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"takerAmount\",\"type\":\"uint256\"},{\"internalType\":\"address\",\"name\":\"maker\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"makerAssetId\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"makerAmount\",\"type\":\"uint256\"}],\"name\":\"register\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"stateMutability\":\"payable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"},{\"internalType\":\"bytes\",\"name\":\"witness\",\"type\":\"bytes\"}],\"name\":\"activate\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"ok\",\"type\":\"bool\"}],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"},{\"internalType\":\"bytes\",\"name\":\"witness\",\"type\":\"bytes\"}],\"name\":\"checkWitness\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"name\":\"getOffer\",\"outputs\":[{\"internalType\":\"address\",\"name\":\"maker\",\"type\":\"address\"},{\"internalType\":\"bytes32\",\"name\":\"makerIntmaxAddress\",\"type\":\"bytes32\"},{\"internalType\":\"uint256\",\"name\":\"makerAssetId\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"makerAmount\",\"type\":\"uint256\"},{\"internalType\":\"address\",\"name\":\"taker\",\"type\":\"address\"},{\"internalType\":\"bytes32\",\"name\":\"takerIntmaxAddress\",\"type\":\"bytes32\"},{\"internalType\":\"address\",\"name\":\"takerTokenAddress\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"takerAmount\",\"type\":\"uint256\"},{\"internalType\":\"bool\",\"name\":\"activated\",\"type\":\"bool\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"name\":\"isRegistered\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"offerId\",\"type\":\"uint256\"}],\"name\":\"isActivated\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"nextOfferId\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"}]"

// OfferManagerReverse is an auto generated Go binding around an Ethereum
// contract.
type OfferManagerReverse struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewOfferManagerReverse creates a new instance of OfferManagerReverse,
// bound to a specific deployed contract.
func NewOfferManagerReverse(address common.Address, backend bind.ContractBackend) (*OfferManagerReverse, error) {
	parsed, err := abi.JSON(strings.NewReader(OfferManagerReverseABI))
	if err != nil {
		return nil, err
	}
	return &OfferManagerReverse{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Register is a paid mutator transaction binding the contract method 0x.
//
// Solidity: function register(bytes32 takerIntmaxAddress, address takerTokenAddress, uint256 takerAmount, address maker, uint256 makerAssetId, uint256 makerAmount) payable returns(uint256 offerId)
func (m *OfferManagerReverse) Register(opts *bind.TransactOpts, takerIntmaxAddress [32]byte, takerTokenAddress common.Address, takerAmount *big.Int, maker common.Address, makerAssetId *big.Int, makerAmount *big.Int) (*types.Transaction, error) {
	return m.contract.Transact(opts, "register", takerIntmaxAddress, takerTokenAddress, takerAmount, maker, makerAssetId, makerAmount)
}

// Activate is a paid mutator transaction binding the contract method 0x.
//
// Solidity: function activate(uint256 offerId, bytes witness) returns(bool ok)
func (m *OfferManagerReverse) Activate(opts *bind.TransactOpts, offerId *big.Int, witness []byte) (*types.Transaction, error) {
	return m.contract.Transact(opts, "activate", offerId, witness)
}

// CheckWitness is a free data retrieval call binding the contract method 0x.
//
// Solidity: function checkWitness(uint256 offerId, bytes witness) view returns(bool)
func (m *OfferManagerReverse) CheckWitness(opts *bind.CallOpts, offerId *big.Int, witness []byte) (bool, error) {
	out := new(bool)
	err := m.contract.Call(opts, out, "checkWitness", offerId, witness)
	return *out, err
}

// GetOffer is a free data retrieval call binding the contract method 0x.
//
// Solidity: function getOffer(uint256 offerId) view returns(address maker, bytes32 makerIntmaxAddress, uint256 makerAssetId, uint256 makerAmount, address taker, bytes32 takerIntmaxAddress, address takerTokenAddress, uint256 takerAmount, bool activated)
func (m *OfferManagerReverse) GetOffer(opts *bind.CallOpts, offerId *big.Int) (Offer, error) {
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
func (m *OfferManagerReverse) IsRegistered(opts *bind.CallOpts, offerId *big.Int) (bool, error) {
	out := new(bool)
	err := m.contract.Call(opts, out, "isRegistered", offerId)
	return *out, err
}

// IsActivated is a free data retrieval call binding the contract method 0x.
//
// Solidity: function isActivated(uint256 offerId) view returns(bool)
func (m *OfferManagerReverse) IsActivated(opts *bind.CallOpts, offerId *big.Int) (bool, error) {
	out := new(bool)
	err := m.contract.Call(opts, out, "isActivated", offerId)
	return *out, err
}

// NextOfferId is a free data retrieval call binding the contract method 0x.
//
// Solidity: function nextOfferId() view returns(uint256)
func (m *OfferManagerReverse) NextOfferId(opts *bind.CallOpts) (*big.Int, error) {
	out := new(*big.Int)
	err := m.contract.Call(opts, out, "nextOfferId")
	return *out, err
}

// Address returns the contract's deployed address.
func (m *OfferManagerReverse) Address() common.Address {
	return m.address
}
