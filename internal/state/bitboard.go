package state

import "fmt"

// Bitboard is a 128-bit unsigned word, split in its low and high 64 bits.
// It holds 64 cells of 2 bits each. It is comparable, so it can be used as a map key.
type Bitboard struct {
	Lo, Hi uint64
}

const (
	// evenBits selects the lower bit of every 2-bit cell.
	evenBits uint64 = 0x5555_5555_5555_5555

	// oddBits selects the higher bit of every 2-bit cell.
	oddBits uint64 = 0xAAAA_AAAA_AAAA_AAAA
)

// cellOffset returns the bit offset of cell (x, y) for a board of the given width.
func cellOffset(width, x, y int) int {
	return 2 * (x + y*width)
}

// Get returns the 2-bit code stored at the given (even) bit offset.
func (b Bitboard) Get(offset int) uint8 {
	if offset < 64 {
		return uint8(b.Lo>>offset) & 3
	}
	return uint8(b.Hi>>(offset-64)) & 3
}

// Set stores the 2-bit code at the given (even) bit offset.
func (b *Bitboard) Set(offset int, code uint8) {
	if offset < 64 {
		b.Lo = b.Lo&^(3<<offset) | uint64(code&3)<<offset
		return
	}
	offset -= 64
	b.Hi = b.Hi&^(3<<offset) | uint64(code&3)<<offset
}

// And returns the bitwise and of b and other.
func (b Bitboard) And(other Bitboard) Bitboard {
	return Bitboard{Lo: b.Lo & other.Lo, Hi: b.Hi & other.Hi}
}

// Or returns the bitwise or of b and other.
func (b Bitboard) Or(other Bitboard) Bitboard {
	return Bitboard{Lo: b.Lo | other.Lo, Hi: b.Hi | other.Hi}
}

// Lsh returns b shifted left by n bits, 0 <= n < 128.
func (b Bitboard) Lsh(n int) Bitboard {
	switch {
	case n == 0:
		return b
	case n >= 64:
		return Bitboard{Hi: b.Lo << (n - 64)}
	}
	return Bitboard{Lo: b.Lo << n, Hi: b.Hi<<n | b.Lo>>(64-n)}
}

// Rsh returns b shifted right by n bits, 0 <= n < 128.
func (b Bitboard) Rsh(n int) Bitboard {
	switch {
	case n == 0:
		return b
	case n >= 64:
		return Bitboard{Lo: b.Hi >> (n - 64)}
	}
	return Bitboard{Lo: b.Lo>>n | b.Hi<<(64-n), Hi: b.Hi >> n}
}

// IsZero returns whether all bits are 0, that is, all cells are empty.
func (b Bitboard) IsZero() bool {
	return b.Lo == 0 && b.Hi == 0
}

// allOccupied returns whether every one of the 64 2-bit cells is non-zero.
// An empty cell has both of its bits set to 0, so folding the odd bits over the even bits
// marks the occupied cells.
func (b Bitboard) allOccupied() bool {
	return (b.Lo&evenBits)|(b.Lo&oddBits)>>1 == evenBits &&
		(b.Hi&evenBits)|(b.Hi&oddBits)>>1 == evenBits
}

// String implements fmt.Stringer.
func (b Bitboard) String() string {
	return fmt.Sprintf("%016x%016x", b.Hi, b.Lo)
}
