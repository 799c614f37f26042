package vm

import (
	"bytes"
	"math"
	"testing"

	"github.com/holiman/uint256"
)

func TestMemoryResize(t *testing.T) {
	m := newMemory()
	if m.len() != 0 {
		t.Fatalf("initial len() = %d, want 0", m.len())
	}

	m.resize(64)
	if m.len() != 64 {
		t.Fatalf("after resize(64), len() = %d, want 64", m.len())
	}

	// resize to smaller should not shrink.
	m.resize(32)
	if m.len() != 64 {
		t.Fatalf("after resize(32), len() = %d, want 64", m.len())
	}
}

func TestMemorySetGet(t *testing.T) {
	m := newMemory()
	m.resize(64)

	data := []byte{0xde, 0xad, 0xbe, 0xef}
	m.set(10, uint64(len(data)), data)

	got := m.get(10, uint64(len(data)))
	if !bytes.Equal(got, data) {
		t.Errorf("get() = %x, want %x", got, data)
	}
}

func TestMemorySet32(t *testing.T) {
	m := newMemory()
	m.resize(32)

	m.set32(0, uint256.NewInt(0xff))

	got := m.get(0, 32)
	expected := make([]byte, 32)
	expected[31] = 0xff
	if !bytes.Equal(got, expected) {
		t.Errorf("set32 result = %x, want %x", got, expected)
	}
}

func TestMemoryGetPtr(t *testing.T) {
	m := newMemory()
	m.resize(32)

	data := []byte{1, 2, 3, 4}
	m.set(0, 4, data)

	ptr := m.getPtr(0, 4)
	if !bytes.Equal(ptr, data) {
		t.Errorf("getPtr() = %x, want %x", ptr, data)
	}

	ptr[0] = 0xff
	if m.data()[0] != 0xff {
		t.Error("getPtr should return a direct reference into memory")
	}
}

func TestMemoryGetZeroSize(t *testing.T) {
	m := newMemory()
	m.resize(32)

	if got := m.get(0, 0); got != nil {
		t.Errorf("get(0, 0) = %v, want nil", got)
	}
	if got := m.getPtr(0, 0); got != nil {
		t.Errorf("getPtr(0, 0) = %v, want nil", got)
	}
}

func TestToWordSize(t *testing.T) {
	tests := []struct {
		size uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{32, 1},
		{33, 2},
		{64, 2},
	}
	for _, tt := range tests {
		if got := toWordSize(tt.size); got != tt.want {
			t.Errorf("toWordSize(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestMemoryExpansionCostNoExpansion(t *testing.T) {
	m := newMemory()
	m.resize(64)

	cost, newSize, ok := m.memoryExpansionCost(0, 32)
	if !ok {
		t.Fatal("memoryExpansionCost(0, 32) returned ok=false")
	}
	if cost != 0 {
		t.Errorf("cost = %d, want 0", cost)
	}
	if newSize != 64 {
		t.Errorf("newSize = %d, want 64", newSize)
	}
}

func TestMemoryExpansionCostFromZero(t *testing.T) {
	tests := []struct {
		size uint64
		want uint64
	}{
		// 1 word: 1*3 + 1/512 = 3
		{32, 3},
		// 2 words: 2*3 + 4/512 = 6
		{64, 6},
		// 32 words: 32*3 + 1024/512 = 96 + 2 = 98
		{1024, 98},
		// 1024 words: 1024*3 + 1048576/512 = 3072 + 2048 = 5120
		{32768, 5120},
	}
	for _, tt := range tests {
		m := newMemory()
		cost, _, ok := m.memoryExpansionCost(0, tt.size)
		if !ok {
			t.Fatalf("memoryExpansionCost(0, %d) returned ok=false", tt.size)
		}
		if cost != tt.want {
			t.Errorf("memoryExpansionCost(0, %d) = %d, want %d", tt.size, cost, tt.want)
		}
	}
}

func TestMemoryExpansionCostDelta(t *testing.T) {
	m := newMemory()
	m.resize(32)
	// Expanding from 32 to 64 bytes (1 word to 2 words): 6 - 3 = 3.
	cost, _, ok := m.memoryExpansionCost(0, 64)
	if !ok {
		t.Fatal("memoryExpansionCost returned ok=false")
	}
	if cost != 3 {
		t.Errorf("cost = %d, want 3", cost)
	}
}

func TestMemoryExpansionCostOverflow(t *testing.T) {
	m := newMemory()
	_, _, ok := m.memoryExpansionCost(math.MaxUint64, 1)
	if ok {
		t.Error("memoryExpansionCost at MaxUint64 offset should return ok=false")
	}
}

func TestMemoryGasCostQuadraticGrowth(t *testing.T) {
	small := memoryGasCost(32)  // 1024 bytes worth of words
	large := memoryGasCost(1024)
	ratio := float64(large) / float64(small)
	if ratio <= 32.0 {
		t.Errorf("large/small cost ratio = %f, expected > 32 (quadratic growth)", ratio)
	}
}
