// Package block defines the block value stored on every node's chain and
// the fixed genesis block all chains grow from.
package block

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// GenesisID is the well-known identifier shared by every node's genesis
// block. A fixed identifier lets every chain in a simulation start from a
// byte-identical root.
const GenesisID = "00000000-0000-0000-0000-000000000000"

// shortIDLen is the number of identifier characters shown for display.
const shortIDLen = 6

// =============================================================================

// Block represents a single entry on a node's chain. A block never changes
// after construction and carries no validation of its own; whether its
// height and parentage line up with a chain is the chain owner's concern.
type Block struct {
	Height   uint64 `json:"height"`
	ParentID string `json:"parent_id,omitempty"`
	ID       string `json:"id"`
}

// Genesis returns a copy of the shared genesis block. Every node clones
// this value as the first entry of its chain.
func Genesis() Block {
	return Block{
		Height:   0,
		ParentID: "",
		ID:       GenesisID,
	}
}

// Adopted constructs the block a node splices onto its chain when it
// accepts the majority tip during reconciliation. The height and identifier
// are copied from the reference block while the parent is pointed at the
// adopting node's own tip, so the adopting node's append check accepts it.
// The recorded parentage may not match the reference chain's true lineage;
// only height and tip identifier are guaranteed to line up across nodes
// afterwards.
func Adopted(ref Block, parentID string) Block {
	return Block{
		Height:   ref.Height,
		ParentID: parentID,
		ID:       ref.ID,
	}
}

// String implements the fmt.Stringer interface with shortened identifiers
// for readability.
func (b Block) String() string {
	parent := "none"
	if b.ParentID != "" {
		parent = ShortID(b.ParentID)
	}

	return fmt.Sprintf("Block(h=%d, id=%s, parent=%s)", b.Height, ShortID(b.ID), parent)
}

// =============================================================================

// Generator produces blocks with fresh unique identifiers. The entropy
// source is injectable so simulations can be replayed from a seed; the zero
// value draws identifiers from crypto/rand.
type Generator struct {
	rnd io.Reader
}

// NewGenerator constructs a Generator that draws identifier entropy from
// the specified reader. A *rand.Rand seeded by the caller satisfies the
// io.Reader interface and makes every identifier reproducible.
func NewGenerator(rnd io.Reader) Generator {
	return Generator{
		rnd: rnd,
	}
}

// New constructs a block at the specified height extending the specified
// parent. Identifier collisions are treated as negligible.
func (g Generator) New(height uint64, parentID string) Block {
	return Block{
		Height:   height,
		ParentID: parentID,
		ID:       g.newID(),
	}
}

// newID generates a fresh identifier, falling back to crypto/rand when no
// entropy source was injected.
func (g Generator) newID() string {
	if g.rnd == nil {
		return uuid.NewString()
	}

	id, err := uuid.NewRandomFromReader(g.rnd)
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// =============================================================================

// ShortID truncates an identifier to a fixed prefix for display.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}

	return id[:shortIDLen]
}
