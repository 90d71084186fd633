// Package replay stores past transitions for experience-replay training.
package replay

import (
	"math/rand"

	"alphachip/internal/model"
)

const DefaultCapacity = 10000

// Buffer is a fixed-capacity transition store with strict FIFO eviction.
// Eviction is O(1): entries live in a ring indexed by head and size.
// Bounded memory deliberately biases training toward recent dynamics, since
// the state distribution drifts as the design evolves.
type Buffer struct {
	entries []model.Transition
	head    int
	size    int
	rng     *rand.Rand
}

func New(capacity int) *Buffer {
	return NewWithSeed(capacity, 1)
}

func NewWithSeed(capacity int, seed int64) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries: make([]model.Transition, capacity),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *Buffer) Cap() int {
	return len(b.entries)
}

func (b *Buffer) Len() int {
	return b.size
}

// Add appends a transition, evicting the oldest entry when full.
func (b *Buffer) Add(t model.Transition) {
	if b.size == len(b.entries) {
		b.entries[b.head] = t
		b.head = (b.head + 1) % len(b.entries)
		return
	}
	b.entries[(b.head+b.size)%len(b.entries)] = t
	b.size++
}

// Sample draws n transitions independently and uniformly at random with
// replacement. Callers must not assume the entries are distinct.
func (b *Buffer) Sample(n int) []model.Transition {
	if b.size == 0 || n <= 0 {
		return nil
	}
	out := make([]model.Transition, n)
	for i := range out {
		out[i] = b.entries[(b.head+b.rng.Intn(b.size))%len(b.entries)]
	}
	return out
}

// Snapshot returns the current contents in insertion order.
func (b *Buffer) Snapshot() []model.Transition {
	out := make([]model.Transition, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.entries[(b.head+i)%len(b.entries)]
	}
	return out
}
