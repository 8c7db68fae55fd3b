// Package archive defines the records kept for every simulation round and
// the storage contract the different backends implement.
package archive

// Record represents one node's observable state at the end of a round.
type Record struct {
	Round  int    `json:"round"`
	NodeID int    `json:"node_id"`
	Height uint64 `json:"height"`
	Hash   string `json:"hash"`
}

// RoundData represents what is written to storage for one round: one record
// per node, in node order.
type RoundData struct {
	Round   int      `json:"round"`
	Records []Record `json:"records"`
}

// Storage interface represents the behavior required to be implemented by
// any package providing support for storing and retrieving archived rounds.
type Storage interface {
	Write(data RoundData) error
	GetRound(num int) (RoundData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the archived rounds.
type Iterator interface {
	Next() (RoundData, error)
	Done() bool
}
