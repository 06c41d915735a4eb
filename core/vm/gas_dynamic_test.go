package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestMemoryMloadRequiresOffsetPlusWord(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(10))
	size, overflow := memoryMload(st)
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if size != 42 {
		t.Fatalf("size = %d, want 42", size)
	}
}

func TestMemoryMstore8RequiresOffsetPlusOne(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(10))
	size, overflow := memoryMstore8(st)
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if size != 11 {
		t.Fatalf("size = %d, want 11", size)
	}
}

func TestMemSize2ZeroLengthNeedsNoMemory(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(0)) // length
	st.Push(uint256.NewInt(5)) // offset
	size, overflow := memSize2(st, 0, 1)
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if size != 0 {
		t.Fatalf("zero-length read should need 0 bytes, got %d", size)
	}
}

func TestMemSize2ComputesEnd(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(10)) // length, Back(1)
	st.Push(uint256.NewInt(5))  // offset, Back(0)
	size, overflow := memSize2(st, 0, 1)
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if size != 15 {
		t.Fatalf("size = %d, want 15", size)
	}
}

func TestMemoryCallTakesLargerOfArgsAndRet(t *testing.T) {
	st := NewStack()
	// push order matches Back(n) = nth from top, so push from the
	// highest index down to 0.
	st.Push(uint256.NewInt(0))  // Back(6) retSize
	st.Push(uint256.NewInt(100)) // Back(5) retOffset
	st.Push(uint256.NewInt(10))  // Back(4) argsSize
	st.Push(uint256.NewInt(0))   // Back(3) argsOffset
	st.Push(uint256.NewInt(0))   // Back(2) value
	st.Push(uint256.NewInt(0))   // Back(1) addr
	st.Push(uint256.NewInt(0))   // Back(0) gas
	size, overflow := memoryCall(st)
	if overflow {
		t.Fatal("unexpected overflow")
	}
	// argsEnd = 0+10 = 10, retEnd = 100+0 = 0 (zero length -> 0), larger is 10.
	if size != 10 {
		t.Fatalf("size = %d, want 10", size)
	}
}

func TestAddUint64OverflowDetected(t *testing.T) {
	_, overflow := addUint64Overflow(^uint64(0), 1)
	if !overflow {
		t.Fatal("expected overflow when adding 1 to MaxUint64")
	}
}

func TestGasMemoryExpansionChargesOnlyDelta(t *testing.T) {
	mem := NewMemory()
	mem.Resize(32)
	gas, err := gasMemoryExpansion(nil, nil, nil, mem, 64)
	if err != nil {
		t.Fatalf("gasMemoryExpansion failed: %v", err)
	}
	want := MemoryExpansionGas(32, 64)
	if gas != want {
		t.Fatalf("gas = %d, want %d", gas, want)
	}
}

func TestGasExpChargesPerExponentByte(t *testing.T) {
	evm := &EVM{Config: Config{EIP160: false}}
	st := NewStack()
	st.Push(uint256.NewInt(0x0102)) // exponent, Back(1)
	st.Push(uint256.NewInt(0))      // base, Back(0)
	gas, err := gasExp(evm, nil, st, NewMemory(), 0)
	if err != nil {
		t.Fatalf("gasExp failed: %v", err)
	}
	if gas != 2*10 {
		t.Fatalf("gas = %d, want %d", gas, 2*10)
	}
}

func TestGasExpEIP160RaisesPerByteCost(t *testing.T) {
	evm := &EVM{Config: Config{EIP160: true}}
	st := NewStack()
	st.Push(uint256.NewInt(0x0102))
	st.Push(uint256.NewInt(0))
	gas, _ := gasExp(evm, nil, st, NewMemory(), 0)
	if gas != 2*50 {
		t.Fatalf("gas = %d, want %d", gas, 2*50)
	}
}

func TestGasSha3ChargesPerWordPlusMemory(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(64)) // size, Back(1)
	st.Push(uint256.NewInt(0))  // offset, Back(0)
	gas, err := gasSha3(nil, nil, st, NewMemory(), 64)
	if err != nil {
		t.Fatalf("gasSha3 failed: %v", err)
	}
	want := wordCount(64)*GasSha3Word + MemoryExpansionGas(0, 64)
	if gas != want {
		t.Fatalf("gas = %d, want %d", gas, want)
	}
}

func TestGasCopyChargesPerWordPlusMemory(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(96)) // size, Back(2)
	st.Push(uint256.NewInt(0))  // Back(1)
	st.Push(uint256.NewInt(0))  // Back(0)
	gas, err := gasCopy(nil, nil, st, NewMemory(), 96)
	if err != nil {
		t.Fatalf("gasCopy failed: %v", err)
	}
	want := wordCount(96)*GasCopy + MemoryExpansionGas(0, 96)
	if gas != want {
		t.Fatalf("gas = %d, want %d", gas, want)
	}
}

func TestMakeGasLogChargesPerTopicAndByte(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(10)) // size, Back(1)
	st.Push(uint256.NewInt(0))  // offset, Back(0)
	fn := makeGasLog(2)
	gas, err := fn(nil, nil, st, NewMemory(), 10)
	if err != nil {
		t.Fatalf("makeGasLog(2) failed: %v", err)
	}
	want := GasLog + 2*GasLogTopic + 10*GasLogData + MemoryExpansionGas(0, 10)
	if gas != want {
		t.Fatalf("gas = %d, want %d", gas, want)
	}
}
