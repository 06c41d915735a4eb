package vm

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/state"
	"github.com/eth2030/execengine/core/types"
)

func TestCreateAddressDeterministic(t *testing.T) {
	sender := types.BytesToAddress([]byte{0x01})
	a := createAddress(sender, 0)
	b := createAddress(sender, 0)
	if a != b {
		t.Fatal("createAddress should be deterministic for the same inputs")
	}
}

func TestCreateAddressVariesWithNonce(t *testing.T) {
	sender := types.BytesToAddress([]byte{0x01})
	a := createAddress(sender, 0)
	b := createAddress(sender, 1)
	if a == b {
		t.Fatal("createAddress should differ across nonces")
	}
}

func TestCreateAddressVariesWithSender(t *testing.T) {
	a := createAddress(types.BytesToAddress([]byte{0x01}), 0)
	b := createAddress(types.BytesToAddress([]byte{0x02}), 0)
	if a == b {
		t.Fatal("createAddress should differ across senders")
	}
}

func newTestEVM() (*EVM, *state.MemoryStateDB) {
	sdb := state.NewMemoryStateDB()
	evm := NewEVM(BlockContext{GasLimit: 5_000_000}, TxContext{}, sdb, Config{EIP160: true, EIP158: true})
	return evm, sdb
}

func TestInterpreterRunSimpleAdditionReturn(t *testing.T) {
	evm, _ := newTestEVM()
	in := NewInterpreter(evm)

	// PUSH1 2, PUSH1 3, ADD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code := []byte{
		byte(PUSH1), 2,
		byte(PUSH1), 3,
		byte(ADD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	contract := NewContract(types.Address{}, types.Address{}, uint256.NewInt(0), 1_000_000)
	contract.Code = code

	out, err := in.Run(contract, nil, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := new(uint256.Int).SetBytes(out)
	if got.Cmp(uint256.NewInt(5)) != 0 {
		t.Fatalf("returned value = %s, want 5", got)
	}
}

func TestInterpreterRunInvalidOpcode(t *testing.T) {
	evm, _ := newTestEVM()
	in := NewInterpreter(evm)

	contract := NewContract(types.Address{}, types.Address{}, uint256.NewInt(0), 1_000_000)
	contract.Code = []byte{0x0c} // unassigned opcode

	if _, err := in.Run(contract, nil, false); err != ErrInvalidOpCode {
		t.Fatalf("error = %v, want ErrInvalidOpCode", err)
	}
}

func TestInterpreterRunOutOfGas(t *testing.T) {
	evm, _ := newTestEVM()
	in := NewInterpreter(evm)

	contract := NewContract(types.Address{}, types.Address{}, uint256.NewInt(0), 1) // not enough for PUSH1
	contract.Code = []byte{byte(PUSH1), 1, byte(STOP)}

	if _, err := in.Run(contract, nil, false); err != ErrOutOfGas {
		t.Fatalf("error = %v, want ErrOutOfGas", err)
	}
}

func TestInterpreterRunWriteProtectionBlocksSstore(t *testing.T) {
	evm, _ := newTestEVM()
	in := NewInterpreter(evm)

	contract := NewContract(types.Address{}, types.Address{}, uint256.NewInt(0), 1_000_000)
	contract.Code = []byte{
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(SSTORE),
	}

	if _, err := in.Run(contract, nil, true); err != ErrWriteProtection {
		t.Fatalf("error = %v, want ErrWriteProtection", err)
	}
}

func TestInterpreterRunStackUnderflow(t *testing.T) {
	evm, _ := newTestEVM()
	in := NewInterpreter(evm)

	contract := NewContract(types.Address{}, types.Address{}, uint256.NewInt(0), 1_000_000)
	contract.Code = []byte{byte(ADD)} // needs 2 stack items, has 0

	if _, err := in.Run(contract, nil, false); err != ErrStackUnderflow {
		t.Fatalf("error = %v, want ErrStackUnderflow", err)
	}
}

func TestInterpreterRunJumpToInvalidDestination(t *testing.T) {
	evm, _ := newTestEVM()
	in := NewInterpreter(evm)

	contract := NewContract(types.Address{}, types.Address{}, uint256.NewInt(0), 1_000_000)
	contract.Code = []byte{
		byte(PUSH1), 10,
		byte(JUMP),
	}

	if _, err := in.Run(contract, nil, false); err != ErrInvalidJump {
		t.Fatalf("error = %v, want ErrInvalidJump", err)
	}
}
