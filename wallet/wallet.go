package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/intmax-network/go-rollup-wallet/db/memorydb"
	"github.com/intmax-network/go-rollup-wallet/smt"
	"github.com/intmax-network/go-rollup-wallet/types"
)

// ErrAccountUnknown signals that no address was given and no default
// account is set.
var ErrAccountUnknown = errors.New("wallet: no account given and no default account set")

// Wallet maps account addresses to user states over one shared asset-tree
// node store, with an optional default account.
type Wallet struct {
	Data           map[types.Address]*UserState
	DefaultAccount *types.Address

	store *smt.NodeStore
}

// New creates an empty wallet with an in-memory node store.
func New() (*Wallet, error) {
	store, err := smt.NewNodeStore(memorydb.NewDB())
	if err != nil {
		return nil, err
	}
	return NewWithStore(store), nil
}

// NewWithStore creates an empty wallet over an existing node store.
func NewWithStore(store *smt.NodeStore) *Wallet {
	return &Wallet{
		Data:  make(map[types.Address]*UserState),
		store: store,
	}
}

// Store exposes the shared node store.
func (w *Wallet) Store() *smt.NodeStore {
	return w.store
}

// AddAccount registers a new account. Panics if the address is already
// used: key generation must never collide, so an attempt to reuse an
// address is a programming error.
func (w *Wallet) AddAccount(account Account) *UserState {
	if _, exists := w.Data[account.Address]; exists {
		panic("designated address was already used")
	}
	state := NewUserState(account, w.store)
	w.Data[account.Address] = state
	return state
}

// SetDefaultAccount sets or clears the default account.
func (w *Wallet) SetDefaultAccount(address *types.Address) {
	w.DefaultAccount = address
}

// ResolveAccount returns the state for address, or the default account's
// state when address is nil.
func (w *Wallet) ResolveAccount(address *types.Address) (*UserState, error) {
	if address == nil {
		if w.DefaultAccount == nil {
			return nil, ErrAccountUnknown
		}
		address = w.DefaultAccount
	}
	state, ok := w.Data[*address]
	if !ok {
		return nil, fmt.Errorf("wallet: account %s not found", *address)
	}
	return state, nil
}

type userStateJSON struct {
	Account             Account                     `json:"account"`
	AssetTreeRoot       types.Hash                  `json:"asset_tree_root"`
	Assets              []types.AssetFragment       `json:"assets"`
	LastSeenBlockNumber uint32                      `json:"last_seen_block_number"`
	SentTransactions    []sentTransactionJSON       `json:"sent_transactions"`
	RestReceivedAssets  []*types.ReceivedAssetProof `json:"rest_received_assets"`
}

type sentTransactionJSON struct {
	TxHash              types.Hash            `json:"tx_hash"`
	Fragments           []types.AssetFragment `json:"fragments"`
	ProposedBlockNumber *uint32               `json:"proposed_block_number"`
}

type walletJSON struct {
	Users          []userStateJSON   `json:"users"`
	Nodes          map[string]string `json:"asset_tree_nodes"`
	DefaultAccount *types.Address    `json:"default_account"`
}

// Save writes the wallet snapshot: all user states plus the asset-tree
// nodes keyed by node hash, replaced atomically via a temp file so a crash
// loses at most the current mutation.
func (w *Wallet) Save(path string) error {
	nodes, err := w.store.Dump()
	if err != nil {
		return err
	}
	snapshot := walletJSON{
		Nodes:          nodes,
		DefaultAccount: w.DefaultAccount,
	}
	for _, state := range w.Data {
		entry := userStateJSON{
			Account:             state.Account,
			AssetTreeRoot:       state.AssetTree.Root(),
			Assets:              state.Assets.List(),
			LastSeenBlockNumber: state.LastSeenBlockNumber,
			RestReceivedAssets:  state.RestReceivedAssets,
		}
		for txHash, sent := range state.SentTransactions {
			entry.SentTransactions = append(entry.SentTransactions, sentTransactionJSON{
				TxHash:              txHash,
				Fragments:           sent.Fragments,
				ProposedBlockNumber: sent.ProposedBlockNumber,
			})
		}
		snapshot.Users = append(snapshot.Users, entry)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := ioutil.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load restores a wallet snapshot into a fresh in-memory node store.
func Load(path string) (*Wallet, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot walletJSON
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}

	w, err := New()
	if err != nil {
		return nil, err
	}
	if err := w.store.Restore(snapshot.Nodes); err != nil {
		return nil, err
	}
	for _, entry := range snapshot.Users {
		root := entry.AssetTreeRoot
		state := &UserState{
			Account:             entry.Account,
			Assets:              NewAssets(),
			AssetTree:           smt.NewLayeredTree(w.store, &root),
			RestReceivedAssets:  entry.RestReceivedAssets,
			SentTransactions:    make(map[types.Hash]*SentTransaction),
			LastSeenBlockNumber: entry.LastSeenBlockNumber,
		}
		for _, fragment := range entry.Assets {
			state.Assets.Add(fragment.Kind, fragment.Amount, fragment.MergeKey)
		}
		for _, sent := range entry.SentTransactions {
			state.SentTransactions[sent.TxHash] = &SentTransaction{
				Fragments:           sent.Fragments,
				ProposedBlockNumber: sent.ProposedBlockNumber,
			}
		}
		w.Data[entry.Account.Address] = state
	}
	w.DefaultAccount = snapshot.DefaultAccount
	return w, nil
}
