// Package disk implements the ability to read and write round data to disk
// as one JSON document per round.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
)

// Disk represents the storage implementation for reading and storing rounds
// in their own separate files on disk. This implements the archive.Storage
// interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written for each round and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified round data and stores it on disk in a file
// labeled with the round number.
func (d *Disk) Write(data archive.RoundData) error {

	// Marshal the round for writing to disk in a more human readable format.
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this round and name it based on the round
	// number. An existing file for the round is replaced wholesale.
	f, err := os.OpenFile(d.getPath(data.Round), os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	// Write the new round to disk.
	if _, err := f.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// GetRound searches the archive on disk to locate and return the contents
// of the specified round file.
func (d *Disk) GetRound(num int) (archive.RoundData, error) {
	f, err := os.OpenFile(d.getPath(num), os.O_RDONLY, 0600)
	if err != nil {
		return archive.RoundData{}, err
	}
	defer f.Close()

	// Decode the contents of the round file.
	var data archive.RoundData
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return archive.RoundData{}, err
	}

	return data, nil
}

// ForEach returns an iterator to walk through all the rounds on disk
// starting with round 0.
func (d *Disk) ForEach() archive.Iterator {
	return &diskIterator{disk: d}
}

// Reset clears out the archive on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}

	return os.MkdirAll(d.dbPath, 0755)
}

// getPath forms the path to the specified round file.
func (d *Disk) getPath(num int) string {
	name := strconv.Itoa(num)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// diskIterator represents the iteration implementation for walking through
// and reading rounds on disk. This implements the archive.Iterator
// interface.
type diskIterator struct {
	disk    *Disk // Access to the disk storage API.
	current int   // Current round number being iterated over.
	eoc     bool  // Represents the iterator is at the end of the archive.
}

// Next retrieves the next round from disk.
func (di *diskIterator) Next() (archive.RoundData, error) {
	if di.eoc {
		return archive.RoundData{}, errors.New("end of rounds")
	}

	data, err := di.disk.GetRound(di.current)
	if errors.Is(err, fs.ErrNotExist) {
		di.eoc = true
	}

	di.current++

	return data, err
}

// Done returns the end of rounds value.
func (di *diskIterator) Done() bool {
	return di.eoc
}
