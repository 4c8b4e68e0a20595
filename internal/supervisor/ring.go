package supervisor

import "sync"

// DefaultBufferCap is the per-stream line buffer capacity used when no
// capacity is configured.
const DefaultBufferCap = 1000

// RingBuffer is a fixed-capacity, insertion-ordered line buffer. Once full,
// appending evicts the oldest line. It is safe for one writer (the pump) and
// concurrent snapshot readers.
type RingBuffer struct {
	mu    sync.Mutex
	lines []string
	start int
	count int
}

// NewRingBuffer creates a ring buffer holding up to capacity lines.
// Non-positive capacities fall back to DefaultBufferCap.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = DefaultBufferCap
	}
	return &RingBuffer{lines: make([]string, capacity)}
}

// Append adds a line, evicting the oldest if the buffer is full.
func (b *RingBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count < len(b.lines) {
		b.lines[(b.start+b.count)%len(b.lines)] = line
		b.count++
		return
	}
	b.lines[b.start] = line
	b.start = (b.start + 1) % len(b.lines)
}

// Lines returns a copy of the buffered lines in production order.
func (b *RingBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.lines[(b.start+i)%len(b.lines)]
	}
	return out
}

// Len returns the number of buffered lines.
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
