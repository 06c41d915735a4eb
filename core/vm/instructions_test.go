package vm

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/types"
)

func newScope(code []byte) *ScopeContext {
	return &ScopeContext{
		Memory:   NewMemory(),
		Stack:    NewStack(),
		Contract: NewContract(types.Address{}, types.Address{}, uint256.NewInt(0), 1_000_000),
	}
}

func TestOpAdd(t *testing.T) {
	sc := newScope(nil)
	sc.Stack.Push(uint256.NewInt(2))
	sc.Stack.Push(uint256.NewInt(3))
	if _, err := opAdd(new(uint64), nil, sc); err != nil {
		t.Fatalf("opAdd failed: %v", err)
	}
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(5)) != 0 {
		t.Fatalf("ADD result = %s, want 5", top)
	}
}

func TestOpSubUnderOrder(t *testing.T) {
	sc := newScope(nil)
	// SUB computes top - second-from-top, so push the subtrahend first.
	sc.Stack.Push(uint256.NewInt(3))
	sc.Stack.Push(uint256.NewInt(10))
	opSub(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(7)) != 0 {
		t.Fatalf("SUB result = %s, want 7", top)
	}
}

func TestOpDivByZeroIsZero(t *testing.T) {
	sc := newScope(nil)
	// DIV computes top / second-from-top, so push the divisor first.
	sc.Stack.Push(uint256.NewInt(0))
	sc.Stack.Push(uint256.NewInt(5))
	opDiv(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if !top.IsZero() {
		t.Fatalf("DIV by zero = %s, want 0", top)
	}
}

func TestOpLt(t *testing.T) {
	sc := newScope(nil)
	// LT compares top against second-from-top, so push the rhs first.
	sc.Stack.Push(uint256.NewInt(2))
	sc.Stack.Push(uint256.NewInt(1))
	opLt(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(1)) != 0 {
		t.Fatalf("1 < 2 should push 1, got %s", top)
	}
}

func TestOpIszero(t *testing.T) {
	sc := newScope(nil)
	sc.Stack.Push(uint256.NewInt(0))
	opIszero(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(1)) != 0 {
		t.Fatalf("ISZERO(0) = %s, want 1", top)
	}
}

func TestOpAndOr(t *testing.T) {
	sc := newScope(nil)
	sc.Stack.Push(uint256.NewInt(0xF0))
	sc.Stack.Push(uint256.NewInt(0x0F))
	opAnd(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if !top.IsZero() {
		t.Fatalf("0xF0 & 0x0F = %s, want 0", top)
	}

	sc2 := newScope(nil)
	sc2.Stack.Push(uint256.NewInt(0xF0))
	sc2.Stack.Push(uint256.NewInt(0x0F))
	opOr(new(uint64), nil, sc2)
	top2, _ := sc2.Stack.Peek()
	if top2.Cmp(uint256.NewInt(0xFF)) != 0 {
		t.Fatalf("0xF0 | 0x0F = %s, want 0xFF", top2)
	}
}

func TestOpByteExtractsMostSignificantFirst(t *testing.T) {
	sc := newScope(nil)
	val := uint256.NewInt(0x1234)
	sc.Stack.Push(val)
	sc.Stack.Push(uint256.NewInt(31)) // least significant byte index
	opByte(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(0x34)) != 0 {
		t.Fatalf("BYTE(31, 0x1234) = %s, want 0x34", top)
	}
}

func TestOpPopRemovesTop(t *testing.T) {
	sc := newScope(nil)
	sc.Stack.Push(uint256.NewInt(1))
	if _, err := opPop(new(uint64), nil, sc); err != nil {
		t.Fatalf("opPop failed: %v", err)
	}
	if sc.Stack.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", sc.Stack.Len())
	}
}

func TestOpMstoreThenMload(t *testing.T) {
	sc := newScope(nil)
	sc.Memory.Resize(32)
	sc.Stack.Push(uint256.NewInt(0x42))
	sc.Stack.Push(uint256.NewInt(0)) // offset
	opMstore(new(uint64), nil, sc)

	sc.Stack.Push(uint256.NewInt(0)) // offset to load
	opMload(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(0x42)) != 0 {
		t.Fatalf("MLOAD after MSTORE = %s, want 0x42", top)
	}
}

func TestOpMstore8WritesSingleByte(t *testing.T) {
	sc := newScope(nil)
	sc.Memory.Resize(32)
	sc.Stack.Push(uint256.NewInt(0xFF))
	sc.Stack.Push(uint256.NewInt(0))
	opMstore8(new(uint64), nil, sc)
	if sc.Memory.Get(0, 1)[0] != 0xFF {
		t.Fatal("MSTORE8 should write exactly one byte")
	}
}

func TestOpJumpToValidDest(t *testing.T) {
	code := []byte{byte(PUSH1), 0x00, byte(JUMPDEST)}
	sc := newScope(nil)
	sc.Contract.Code = code
	sc.Stack.Push(uint256.NewInt(2))
	pc := uint64(0)
	if _, err := opJump(&pc, nil, sc); err != nil {
		t.Fatalf("opJump failed: %v", err)
	}
	if pc != 2 {
		t.Fatalf("pc = %d, want 2", pc)
	}
}

func TestOpJumpToInvalidDest(t *testing.T) {
	code := []byte{byte(STOP)}
	sc := newScope(nil)
	sc.Contract.Code = code
	sc.Stack.Push(uint256.NewInt(0))
	pc := uint64(0)
	if _, err := opJump(&pc, nil, sc); err != ErrInvalidJump {
		t.Fatalf("error = %v, want ErrInvalidJump", err)
	}
}

func TestOpJumpiFallsThroughWhenFalse(t *testing.T) {
	sc := newScope(nil)
	sc.Contract.Code = []byte{byte(STOP)}
	// JUMPI pops dest (top) and cond (second-from-top), so push cond first.
	sc.Stack.Push(uint256.NewInt(0)) // condition false
	sc.Stack.Push(uint256.NewInt(5)) // dest
	pc := uint64(0)
	opJumpi(&pc, nil, sc)
	if pc != 1 {
		t.Fatalf("pc = %d, want 1 (fall through)", pc)
	}
}

func TestMakePushReadsImmediateData(t *testing.T) {
	code := []byte{byte(PUSH2), 0x01, 0x02, byte(STOP)}
	sc := newScope(nil)
	sc.Contract.Code = code
	pc := uint64(0)
	push2 := makePush(2)
	push2(&pc, nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(0x0102)) != 0 {
		t.Fatalf("PUSH2 result = %s, want 0x0102", top)
	}
	if pc != 3 {
		t.Fatalf("pc = %d, want 3", pc)
	}
}

func TestMakeDupDuplicatesNthElement(t *testing.T) {
	sc := newScope(nil)
	sc.Stack.Push(uint256.NewInt(1))
	sc.Stack.Push(uint256.NewInt(2))
	dup2 := makeDup(2)
	dup2(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(1)) != 0 {
		t.Fatalf("DUP2 top = %s, want 1", top)
	}
}

func TestMakeSwapExchangesElements(t *testing.T) {
	sc := newScope(nil)
	sc.Stack.Push(uint256.NewInt(1))
	sc.Stack.Push(uint256.NewInt(2))
	swap1 := makeSwap(1)
	swap1(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(1)) != 0 {
		t.Fatalf("after SWAP1, top = %s, want 1", top)
	}
}

func TestOpPcPushesCurrentCounter(t *testing.T) {
	sc := newScope(nil)
	pc := uint64(7)
	opPc(&pc, nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(7)) != 0 {
		t.Fatalf("PC result = %s, want 7", top)
	}
}

func TestOpMsizeReportsMemoryLength(t *testing.T) {
	sc := newScope(nil)
	sc.Memory.Resize(64)
	opMsize(new(uint64), nil, sc)
	top, _ := sc.Stack.Peek()
	if top.Cmp(uint256.NewInt(64)) != 0 {
		t.Fatalf("MSIZE result = %s, want 64", top)
	}
}
