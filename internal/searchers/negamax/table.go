package negamax

import (
	. "github.com/janpfeifer/fourGo/internal/state"
	"math/bits"
)

const (
	// tableSize is the number of slots of the transposition table: a prime.
	tableSize = 100_003

	// tableMultiplier is coprime with tableSize.
	tableMultiplier = 2_654_435_761
)

// tableEntry holds an upper bound of the negamax value of the board with the given uid, searched with
// the given remaining depth. Entries of previous searches (other generation) are ignored.
type tableEntry struct {
	uid        Bitboard
	generation uint32
	depth      int32
	bound      float64
}

// transpositionTable is a fixed size open-addressed table: colliding entries simply overwrite each other.
//
// The uid is checked on lookup, so collisions only make the pruning weaker.
type transpositionTable struct {
	entries    []tableEntry
	generation uint32
}

func newTranspositionTable() *transpositionTable {
	return &transpositionTable{entries: make([]tableEntry, tableSize), generation: 1}
}

// reset invalidates all entries: it is called at the start of every search.
func (t *transpositionTable) reset() {
	t.generation++
	if t.generation == 0 {
		// Wrapped around: clear the stale entries for real.
		clear(t.entries)
		t.generation = 1
	}
}

// index of the slot for uid: uid * tableMultiplier mod tableSize.
func (t *transpositionTable) index(uid Bitboard) int {
	rem := bits.Rem64(uid.Hi%tableSize, uid.Lo, tableSize)
	return int((rem * tableMultiplier) % tableSize)
}

func (t *transpositionTable) lookup(uid Bitboard, depth int) (bound float64, found bool) {
	entry := &t.entries[t.index(uid)]
	if entry.generation != t.generation || entry.uid != uid || entry.depth != int32(depth) {
		return 0, false
	}
	return entry.bound, true
}

func (t *transpositionTable) store(uid Bitboard, depth int, bound float64) {
	t.entries[t.index(uid)] = tableEntry{uid: uid, generation: t.generation, depth: int32(depth), bound: bound}
}
