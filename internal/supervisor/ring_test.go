package supervisor

import (
	"fmt"
	"testing"
)

func TestRingBufferUnderCapacity(t *testing.T) {
	b := NewRingBuffer(5)
	b.Append("one")
	b.Append("two")

	if got := b.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	lines := b.Lines()
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("Lines() = %q, want [one two]", lines)
	}
}

func TestRingBufferEvictsOldest(t *testing.T) {
	b := NewRingBuffer(3)
	for i := 1; i <= 10; i++ {
		b.Append(fmt.Sprintf("line%d", i))
	}

	lines := b.Lines()
	want := []string{"line8", "line9", "line10"}
	if len(lines) != len(want) {
		t.Fatalf("Lines() = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Lines()[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
	if got := b.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestRingBufferSnapshotIsIndependent(t *testing.T) {
	b := NewRingBuffer(3)
	b.Append("first")

	snap := b.Lines()
	b.Append("second")

	if len(snap) != 1 || snap[0] != "first" {
		t.Errorf("snapshot changed after Append: %q", snap)
	}
}

func TestRingBufferDefaultCapacity(t *testing.T) {
	b := NewRingBuffer(0)
	for i := 0; i < DefaultBufferCap+10; i++ {
		b.Append("x")
	}
	if got := b.Len(); got != DefaultBufferCap {
		t.Errorf("Len() = %d, want %d", got, DefaultBufferCap)
	}
}
