// Package memory implements the ability to read and write round data to
// memory using a slice.
package memory

import (
	"errors"
	"sync"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
)

// Memory represents the storage implementation for reading and storing
// rounds in memory using a slice. This implements the archive.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	rounds []archive.RoundData
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything is in
// memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified round data and stores it in memory. Rounds must
// arrive in order without gaps.
func (m *Memory) Write(data archive.RoundData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rounds) != data.Round {
		return errors.New("round is out of order")
	}

	m.rounds = append(m.rounds, data)

	return nil
}

// GetRound retrieves the specified round from memory.
func (m *Memory) GetRound(num int) (archive.RoundData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num < 0 || num >= len(m.rounds) {
		return archive.RoundData{}, errors.New("round does not exist")
	}

	return m.rounds[num], nil
}

// ForEach returns an iterator to walk through all the rounds in memory
// starting with round 0.
func (m *Memory) ForEach() archive.Iterator {
	return &memoryIterator{storage: m}
}

// Reset clears out the archive in memory.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rounds = []archive.RoundData{}

	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading rounds in memory. This implements the
// archive.Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the memory storage API.
	current int     // Current round number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the archive.
}

// Next retrieves the next round from memory.
func (mi *memoryIterator) Next() (archive.RoundData, error) {
	if mi.eoc {
		return archive.RoundData{}, errors.New("end of rounds")
	}

	data, err := mi.storage.GetRound(mi.current)
	if err != nil {
		mi.eoc = true
	}

	mi.current++

	return data, err
}

// Done returns the end of rounds value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
