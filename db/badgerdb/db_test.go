package badgerdb

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	walletdb "github.com/intmax-network/go-rollup-wallet/db"
)

func newTestDB(t *testing.T) (*DB, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "badgerdb-test")
	require.NoError(t, err)
	db, err := NewDB(dir)
	require.NoError(t, err)
	return db, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func TestBasicOperations(t *testing.T) {
	db, cleanup := newTestDB(t)
	defer cleanup()

	require.Equal(t, "badgerdb", db.Type())

	ns := []byte("ns")
	_, exists, err := db.Get(ns, []byte("missing"))
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, db.Set(ns, []byte("k"), []byte("v")))

	value, exists, err := db.Get(ns, []byte("k"))
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, []byte("v"), value)

	ok, err := db.Exist(ns, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, db.Delete(ns, []byte("k")))
	ok, err = db.Exist(ns, []byte("k"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir, err := ioutil.TempDir("", "badgerdb-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	db, err := NewDB(dir)
	require.NoError(t, err)
	require.NoError(t, db.Set([]byte("ns"), []byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = NewDB(dir)
	require.NoError(t, err)
	defer db.Close()

	value, exists, err := db.Get([]byte("ns"), []byte("k"))
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, []byte("v"), value)
}

func TestIterator(t *testing.T) {
	db, cleanup := newTestDB(t)
	defer cleanup()

	want := map[string]string{
		"one":   "1",
		"two":   "2",
		"three": "3",
	}
	for k, v := range want {
		require.NoError(t, db.Set(walletdb.NamespaceSMTNode, []byte(k), []byte(v)))
	}
	require.NoError(t, db.Set(walletdb.NamespaceWallet, []byte("other"), []byte("x")))

	got := make(map[string]string)
	iter := db.Iterator(walletdb.NamespaceSMTNode)
	for iter.Next() {
		got[string(iter.Key())] = string(iter.Value())
	}
	require.NoError(t, iter.Error())
	require.Equal(t, want, got)
}
