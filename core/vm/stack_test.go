package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestStackPushPop(t *testing.T) {
	st := NewStack()
	if err := st.Push(uint256.NewInt(42)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	got, err := st.Pop()
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if got.Cmp(uint256.NewInt(42)) != 0 {
		t.Fatalf("Pop() = %s, want 42", &got)
	}
}

func TestStackPopEmptyUnderflows(t *testing.T) {
	st := NewStack()
	if _, err := st.Pop(); err != ErrStackUnderflow {
		t.Fatalf("error = %v, want ErrStackUnderflow", err)
	}
}

func TestStackOverflow(t *testing.T) {
	st := NewStack()
	for i := 0; i < 1024; i++ {
		if err := st.Push(uint256.NewInt(uint64(i))); err != nil {
			t.Fatalf("Push %d failed: %v", i, err)
		}
	}
	if err := st.Push(uint256.NewInt(1)); err != ErrStackOverflow {
		t.Fatalf("error = %v, want ErrStackOverflow", err)
	}
}

func TestStackPeek(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(1))
	st.Push(uint256.NewInt(2))
	top, err := st.Peek()
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if top.Cmp(uint256.NewInt(2)) != 0 {
		t.Fatalf("Peek() = %s, want 2", top)
	}
	if st.Len() != 2 {
		t.Fatalf("Peek should not remove the element; Len() = %d, want 2", st.Len())
	}
}

func TestStackBack(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(1))
	st.Push(uint256.NewInt(2))
	st.Push(uint256.NewInt(3))
	second, err := st.Back(1)
	if err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	if second.Cmp(uint256.NewInt(2)) != 0 {
		t.Fatalf("Back(1) = %s, want 2", second)
	}
}

func TestStackSwap(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(1))
	st.Push(uint256.NewInt(2))
	if err := st.Swap(1); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	top, _ := st.Peek()
	if top.Cmp(uint256.NewInt(1)) != 0 {
		t.Fatalf("after Swap(1), top = %s, want 1", top)
	}
}

func TestStackDup(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(5))
	if err := st.Dup(1); err != nil {
		t.Fatalf("Dup failed: %v", err)
	}
	if st.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", st.Len())
	}
	top, _ := st.Peek()
	if top.Cmp(uint256.NewInt(5)) != 0 {
		t.Fatalf("duplicated top = %s, want 5", top)
	}
}

func TestStackDupUnderflow(t *testing.T) {
	st := NewStack()
	if err := st.Dup(1); err != ErrStackUnderflow {
		t.Fatalf("error = %v, want ErrStackUnderflow", err)
	}
}
