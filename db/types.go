// Package db defines the namespaced key-value store backing the asset
// tree's content-addressed node storage and the wallet snapshot.
package db

// Namespaces partition one store between consumers.
var (
	NamespaceSMTNode = []byte("smtNode")
	NamespaceWallet  = []byte("wallet")
)

// DB is a general interface to access storage data.
type DB interface {
	Type() string
	Set(namespace []byte, key []byte, value []byte) error
	Delete(namespace []byte, key []byte) error
	Get(namespace []byte, key []byte) ([]byte, bool, error)
	Exist(namespace []byte, key []byte) (bool, error)
	// Iterator walks every key of the namespace in unspecified order.
	Iterator(namespace []byte) Iterator
	Close() error
}

// Iterator is used to navigate the keys of one namespace.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
}

// PrependNamespace builds the physical key of a namespaced entry.
func PrependNamespace(namespace []byte, key []byte) []byte {
	out := make([]byte, 0, len(namespace)+1+len(key))
	out = append(out, namespace...)
	out = append(out, '/')
	out = append(out, key...)
	return out
}

// ConvNilToBytes normalizes nil to an empty slice.
func ConvNilToBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
