// Package badgerdb is the badger-backed db.DB backend, used when the
// asset-tree node store should outlive the wallet snapshot file.
package badgerdb

import (
	"github.com/dgraph-io/badger/v2"

	walletdb "github.com/intmax-network/go-rollup-wallet/db"
)

// NewDB opens (or creates) a badger store at dir.
func NewDB(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	inner, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &DB{db: inner}, nil
}

var _ walletdb.DB = (*DB)(nil)

type DB struct {
	db *badger.DB
}

func (db *DB) Type() string {
	return "badgerdb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	key = walletdb.PrependNamespace(namespace, key)
	value = walletdb.ConvNilToBytes(value)
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	key = walletdb.PrependNamespace(namespace, key)
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	key = walletdb.PrependNamespace(namespace, key)
	var value []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (db *DB) Exist(namespace []byte, key []byte) (bool, error) {
	_, exists, err := db.Get(namespace, key)
	return exists, err
}

func (db *DB) Iterator(namespace []byte) walletdb.Iterator {
	prefix := walletdb.PrependNamespace(namespace, nil)
	txn := db.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := txn.NewIterator(opts)
	iter.Rewind()
	return &iterator{txn: txn, iter: iter, prefix: prefix, first: true}
}

func (db *DB) Close() error {
	return db.db.Close()
}

type iterator struct {
	txn    *badger.Txn
	iter   *badger.Iterator
	prefix []byte
	first  bool
	err    error
}

func (it *iterator) Next() bool {
	if !it.first {
		it.iter.Next()
	}
	it.first = false
	if !it.iter.ValidForPrefix(it.prefix) {
		it.iter.Close()
		it.txn.Discard()
		return false
	}
	return true
}

func (it *iterator) Key() []byte {
	return it.iter.Item().Key()[len(it.prefix):]
}

func (it *iterator) Value() []byte {
	value, err := it.iter.Item().ValueCopy(nil)
	if err != nil {
		it.err = err
	}
	return value
}

func (it *iterator) Error() error {
	return it.err
}
