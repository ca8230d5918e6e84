package application

import "math/bits"

// bitset tracks per-slot availability, one bit per candidate slot.
// Intersection over word-sized chunks keeps multi-party resolution cheap
// when the window holds hundreds of slots.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << uint(i%64)
}

func (b bitset) get(i int) bool {
	return b[i/64]&(1<<uint(i%64)) != 0
}

// and intersects other into b in place.
func (b bitset) and(other bitset) {
	for i := range b {
		b[i] &= other[i]
	}
}

// fill sets the first n bits.
func (b bitset) fill(n int) {
	for i := 0; i < n; i++ {
		b.set(i)
	}
}

// nextSet returns the index of the first set bit at or after from, or -1
// when no bit is set. It skips whole zero words between set bits.
func (b bitset) nextSet(from int) int {
	if from < 0 {
		from = 0
	}
	for w := from / 64; w < len(b); w++ {
		word := b[w]
		if w == from/64 {
			word &= ^uint64(0) << uint(from%64)
		}
		if word != 0 {
			return w*64 + bits.TrailingZeros64(word)
		}
	}
	return -1
}
