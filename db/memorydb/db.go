// Package memorydb is the in-memory db.DB backend. It is the default
// store for wallet asset trees, whose durable form is the wallet snapshot
// rather than the store itself.
package memorydb

import (
	"bytes"
	"sync"

	walletdb "github.com/intmax-network/go-rollup-wallet/db"
)

func NewDB() *DB {
	return &DB{
		db: make(map[string][]byte),
	}
}

// Enforce database implements the interface
var _ walletdb.DB = (*DB)(nil)

type DB struct {
	lock sync.Mutex
	db   map[string][]byte
}

func (db *DB) Type() string {
	return "memorydb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = walletdb.PrependNamespace(namespace, key)
	value = walletdb.ConvNilToBytes(value)

	db.db[string(key)] = value
	return nil
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = walletdb.PrependNamespace(namespace, key)
	delete(db.db, string(key))
	return nil
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = walletdb.PrependNamespace(namespace, key)
	value, exists := db.db[string(key)]
	return value, exists, nil
}

func (db *DB) Exist(namespace []byte, key []byte) (bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = walletdb.PrependNamespace(namespace, key)
	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *DB) Iterator(namespace []byte) walletdb.Iterator {
	db.lock.Lock()
	defer db.lock.Unlock()

	prefix := walletdb.PrependNamespace(namespace, nil)
	var entries []entry
	for key, value := range db.db {
		if bytes.HasPrefix([]byte(key), prefix) {
			entries = append(entries, entry{
				key:   []byte(key)[len(prefix):],
				value: value,
			})
		}
	}
	return &iterator{entries: entries, position: -1}
}

func (db *DB) Close() error {
	return nil
}

type entry struct {
	key   []byte
	value []byte
}

type iterator struct {
	entries  []entry
	position int
}

func (it *iterator) Next() bool {
	it.position++
	return it.position < len(it.entries)
}

func (it *iterator) Key() []byte {
	return it.entries[it.position].key
}

func (it *iterator) Value() []byte {
	return it.entries[it.position].value
}

func (it *iterator) Error() error {
	return nil
}
