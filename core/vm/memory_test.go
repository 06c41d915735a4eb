package vm

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
)

func TestMemoryResizeGrowsOnly(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	if m.Len() != 64 {
		t.Fatalf("Len() = %d, want 64", m.Len())
	}
	m.Resize(32)
	if m.Len() != 64 {
		t.Fatalf("Resize to a smaller size should not shrink memory; Len() = %d, want 64", m.Len())
	}
}

func TestMemorySetAndGet(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(0, 5, []byte("hello"))
	if got := m.Get(0, 5); !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("Get(0,5) = %q, want %q", got, "hello")
	}
}

func TestMemorySet32(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set32(0, uint256.NewInt(1))
	got := m.Get(0, 32)
	want := uint256.NewInt(1).Bytes32()
	if !bytes.Equal(got, want[:]) {
		t.Fatalf("Set32 then Get mismatch: %x vs %x", got, want)
	}
}

func TestMemoryGetPtrAliasesBackingStore(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(0, 5, []byte("hello"))
	ptr := m.GetPtr(0, 5)
	ptr[0] = 'H'
	if m.Get(0, 1)[0] != 'H' {
		t.Fatal("GetPtr should alias the backing store, not copy it")
	}
}

func TestMemoryGetZeroSizeReturnsNil(t *testing.T) {
	m := NewMemory()
	if got := m.Get(0, 0); got != nil {
		t.Fatalf("Get(0,0) = %v, want nil", got)
	}
}
