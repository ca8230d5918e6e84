package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitset_SetGet(t *testing.T) {
	b := newBitset(130)

	assert.Len(t, b, 3)

	// Word boundaries are the interesting positions.
	for _, i := range []int{0, 1, 63, 64, 65, 127, 128, 129} {
		assert.False(t, b.get(i))
		b.set(i)
		assert.True(t, b.get(i))
	}
	assert.False(t, b.get(2))
	assert.False(t, b.get(126))
}

func TestBitset_Fill(t *testing.T) {
	b := newBitset(100)
	b.fill(70)

	for i := 0; i < 70; i++ {
		assert.True(t, b.get(i), "bit %d should be set", i)
	}
	for i := 70; i < 100; i++ {
		assert.False(t, b.get(i), "bit %d should be clear", i)
	}
}

func TestBitset_NextSet(t *testing.T) {
	b := newBitset(200)
	for _, i := range []int{3, 63, 64, 130, 199} {
		b.set(i)
	}

	assert.Equal(t, 3, b.nextSet(0))
	assert.Equal(t, 3, b.nextSet(3))
	assert.Equal(t, 63, b.nextSet(4))
	assert.Equal(t, 64, b.nextSet(64))
	assert.Equal(t, 130, b.nextSet(65))
	assert.Equal(t, 199, b.nextSet(131))
	assert.Equal(t, -1, b.nextSet(200))
	assert.Equal(t, -1, newBitset(100).nextSet(0))

	// Walking nextSet visits exactly the set bits in order.
	got := make([]int, 0, 5)
	for i := b.nextSet(0); i >= 0; i = b.nextSet(i + 1) {
		got = append(got, i)
	}
	assert.Equal(t, []int{3, 63, 64, 130, 199}, got)
}

func TestBitset_And(t *testing.T) {
	const n = 200

	a := newBitset(n)
	b := newBitset(n)
	for i := 0; i < n; i += 3 {
		a.set(i)
	}
	for i := 0; i < n; i += 5 {
		b.set(i)
	}

	// Word-wise intersection must agree with intersecting slot by slot.
	want := make([]bool, n)
	for i := 0; i < n; i++ {
		want[i] = a.get(i) && b.get(i)
	}

	a.and(b)

	for i := 0; i < n; i++ {
		assert.Equal(t, want[i], a.get(i), "bit %d", i)
	}
}
