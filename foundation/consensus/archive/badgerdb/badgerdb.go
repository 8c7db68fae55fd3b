// Package badgerdb implements the ability to read and write round data to a
// Badger key-value database on disk.
package badgerdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
	"github.com/dgraph-io/badger/v2"
)

// keyFormat lays round keys out so they sort in round order.
const keyFormat = "round:%08d"

// BadgerDB represents the storage implementation for reading and storing
// rounds in a Badger database. This implements the archive.Storage
// interface.
type BadgerDB struct {
	db *badger.DB
}

// New constructs a Badger backed archive at the specified directory,
// creating it when missing.
func New(dbPath string) (*BadgerDB, error) {
	return open(dbPath, false)
}

// NewReadOnly opens an existing Badger backed archive for reading. Tooling
// uses this so an archive can be inspected without taking the write lock
// away from a running simulation.
func NewReadOnly(dbPath string) (*BadgerDB, error) {
	return open(dbPath, true)
}

func open(dbPath string, readOnly bool) (*BadgerDB, error) {

	// Badger does not create parent directories on its own.
	if !readOnly {
		if err := os.MkdirAll(dbPath, 0755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	opts := badger.DefaultOptions(dbPath).WithLogger(nil).WithReadOnly(readOnly)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger archive: %w", err)
	}

	return &BadgerDB{db: db}, nil
}

// Close releases the database and its directory lock.
func (b *BadgerDB) Close() error {
	return b.db.Close()
}

// Write takes the specified round data and stores it in the database. An
// existing entry for the round is replaced wholesale.
func (b *BadgerDB) Write(data archive.RoundData) error {
	value, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(data.Round), value)
	})
}

// GetRound retrieves the specified round from the database.
func (b *BadgerDB) GetRound(num int) (archive.RoundData, error) {
	var data archive.RoundData

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(num))
		if err != nil {
			return err
		}

		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &data)
		})
	})
	if err != nil {
		return archive.RoundData{}, err
	}

	return data, nil
}

// ForEach returns an iterator to walk through all the rounds in the
// database starting with round 0.
func (b *BadgerDB) ForEach() archive.Iterator {
	return &badgerIterator{db: b}
}

// Reset drops every round from the database.
func (b *BadgerDB) Reset() error {
	return b.db.DropAll()
}

// key forms the database key for the specified round.
func key(num int) []byte {
	return []byte(fmt.Sprintf(keyFormat, num))
}

// =============================================================================

// badgerIterator represents the iteration implementation for walking
// through and reading rounds in the database. This implements the
// archive.Iterator interface.
type badgerIterator struct {
	db      *BadgerDB // Access to the badger storage API.
	current int       // Current round number being iterated over.
	eoc     bool      // Represents the iterator is at the end of the archive.
}

// Next retrieves the next round from the database.
func (bi *badgerIterator) Next() (archive.RoundData, error) {
	if bi.eoc {
		return archive.RoundData{}, errors.New("end of rounds")
	}

	data, err := bi.db.GetRound(bi.current)
	if errors.Is(err, badger.ErrKeyNotFound) {
		bi.eoc = true
	}

	bi.current++

	return data, err
}

// Done returns the end of rounds value.
func (bi *badgerIterator) Done() bool {
	return bi.eoc
}
