package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/types"
	"github.com/eth2030/execengine/crypto"
)

func opStop(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) { return nil, nil }

func opAdd(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.Add(x, y)
	return nil, nil
}

func opMul(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.Mul(x, y)
	return nil, nil
}

func opSub(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.Sub(x, y)
	return nil, nil
}

func opDiv(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.Div(x, y)
	return nil, nil
}

func opSdiv(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.SDiv(x, y)
	return nil, nil
}

func opMod(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.Mod(x, y)
	return nil, nil
}

func opSmod(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.SMod(x, y)
	return nil, nil
}

func opAddmod(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y, z := sc.Stack.pop3()
	z.AddMod(x, y, z)
	return nil, nil
}

func opMulmod(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y, z := sc.Stack.pop3()
	z.MulMod(x, y, z)
	return nil, nil
}

func opExp(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	base, exponent := sc.Stack.pop2()
	exponent.Exp(base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	back, num := sc.Stack.pop2()
	num.ExtendSign(num, back)
	return nil, nil
}

func opLt(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.Peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.And(x, y)
	return nil, nil
}

func opOr(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.Or(x, y)
	return nil, nil
}

func opXor(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, y := sc.Stack.pop2()
	y.Xor(x, y)
	return nil, nil
}

func opNot(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.Peek()
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	th, val := sc.Stack.pop2()
	val.Byte(th)
	return nil, nil
}

func opShl(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	shift, value := sc.Stack.pop2()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opShr(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	shift, value := sc.Stack.pop2()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSar(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	shift, value := sc.Stack.pop2()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

func opSha3(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	offset, size := sc.Stack.pop2()
	data := sc.Memory.GetPtr(offset.Uint64(), size.Uint64())
	hash := crypto.Keccak256(data)
	size.SetBytes(hash)
	return nil, nil
}

func opAddress(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(addressToUint256(sc.Contract.Address))
	return nil, nil
}

func opBalance(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	slot, _ := sc.Stack.Peek()
	addr := types.BytesToAddress(slot.Bytes())
	slot.Set(in.evm.StateDB.GetBalance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(addressToUint256(in.evm.Origin))
	return nil, nil
}

func opCaller(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(addressToUint256(sc.Contract.CallerAddress))
	return nil, nil
}

func opCallValue(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	v := new(uint256.Int)
	if sc.Contract.Value != nil {
		v.Set(sc.Contract.Value)
	}
	sc.Stack.Push(v)
	return nil, nil
}

func opCallDataLoad(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.Peek()
	data := getData(sc.Contract.Input, x.Uint64(), 32)
	x.SetBytes(data)
	return nil, nil
}

func opCallDataSize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(uint256.NewInt(uint64(len(sc.Contract.Input))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	memOffset, dataOffset, length := sc.Stack.pop3()
	data := getData(sc.Contract.Input, dataOffset.Uint64(), length.Uint64())
	sc.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opCodeSize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(uint256.NewInt(uint64(len(sc.Contract.Code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	memOffset, codeOffset, length := sc.Stack.pop3()
	data := getData(sc.Contract.Code, codeOffset.Uint64(), length.Uint64())
	sc.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opGasprice(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(in.evm.GasPrice)
	sc.Stack.Push(v)
	return nil, nil
}

func opExtCodeSize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	slot, _ := sc.Stack.Peek()
	addr := types.BytesToAddress(slot.Bytes())
	slot.SetUint64(uint64(in.evm.StateDB.GetCodeSize(addr)))
	return nil, nil
}

func opExtCodeCopy(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	stack := sc.Stack
	addrVal, _ := stack.Pop()
	memOffset, codeOffset, length := sc.Stack.pop3()
	addr := types.BytesToAddress(addrVal.Bytes())
	code := in.evm.StateDB.GetCode(addr)
	data := getData(code, codeOffset.Uint64(), length.Uint64())
	sc.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opBlockhash(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	num, _ := sc.Stack.Peek()
	if in.evm.GetHash == nil || !num.IsUint64() {
		num.Clear()
		return nil, nil
	}
	hash := in.evm.GetHash(num.Uint64())
	num.SetBytes(hash.Bytes())
	return nil, nil
}

func opCoinbase(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(addressToUint256(in.evm.Coinbase))
	return nil, nil
}

func opTimestamp(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(uint256.NewInt(in.evm.Time))
	return nil, nil
}

func opNumber(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(in.evm.BlockNumber)
	sc.Stack.Push(v)
	return nil, nil
}

func opDifficulty(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(in.evm.Difficulty)
	sc.Stack.Push(v)
	return nil, nil
}

func opGasLimit(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(uint256.NewInt(in.evm.GasLimit))
	return nil, nil
}

func opPop(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	_, err := sc.Stack.Pop()
	return nil, err
}

func opMload(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	v, _ := sc.Stack.Peek()
	offset := v.Uint64()
	v.SetBytes(sc.Memory.GetPtr(offset, 32))
	return nil, nil
}

func opMstore(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	offset, val := sc.Stack.pop2()
	sc.Memory.Set32(offset.Uint64(), val)
	return nil, nil
}

func opMstore8(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	offset, val := sc.Stack.pop2()
	sc.Memory.store[offset.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	loc, _ := sc.Stack.Peek()
	key := types.BytesToHash(loc.Bytes())
	val := in.evm.StateDB.GetState(sc.Contract.Address, key)
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opSstore(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	loc, val := sc.Stack.pop2()
	key := types.BytesToHash(loc.Bytes())
	value := types.BytesToHash(val.Bytes())
	in.evm.StateDB.SetState(sc.Contract.Address, key, value)
	return nil, nil
}

func opJump(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	dest, err := sc.Stack.Pop()
	if err != nil {
		return nil, err
	}
	if !sc.Contract.validJumpdest(&dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	dest, cond := sc.Stack.pop2()
	if !cond.IsZero() {
		if !sc.Contract.validJumpdest(dest) {
			return nil, ErrInvalidJump
		}
		*pc = dest.Uint64()
		return nil, nil
	}
	*pc++
	return nil, nil
}

func opPc(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(uint256.NewInt(*pc))
	return nil, nil
}

func opMsize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(uint256.NewInt(uint64(sc.Memory.Len())))
	return nil, nil
}

func opGas(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.Push(uint256.NewInt(sc.Contract.Gas))
	return nil, nil
}

func opJumpdest(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) { return nil, nil }

func makePush(size int) executionFunc {
	return func(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
		codeLen := uint64(len(sc.Contract.Code))
		start := *pc + 1
		n := uint256.NewInt(0).SetBytes(getData(sc.Contract.Code, start, uint64(size)))
		_ = codeLen
		if err := sc.Stack.Push(n); err != nil {
			return nil, err
		}
		*pc += uint64(size)
		*pc++
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
		return nil, sc.Stack.Dup(n)
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
		return nil, sc.Stack.Swap(n)
	}
}

func makeLog(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
		if in.evm.readOnly {
			return nil, ErrWriteProtection
		}
		offset, size := sc.Stack.pop2()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			t, err := sc.Stack.Pop()
			if err != nil {
				return nil, err
			}
			topics[i] = types.BytesToHash(t.Bytes())
		}
		data := sc.Memory.Get(offset.Uint64(), size.Uint64())
		in.evm.StateDB.AddLog(&types.Log{
			Address: sc.Contract.Address,
			Topics:  topics,
			Data:    data,
		})
		return nil, nil
	}
}

func opCreate(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	value, offset, size := sc.Stack.pop3()
	input := sc.Memory.Get(offset.Uint64(), size.Uint64())

	forwarded := forwardGas(sc.Contract, in.evm.Config.EIP150, sc.Contract.Gas, 0)

	addr, returnData, remainingGas, err := in.evm.Create(sc.Contract.Address, input, forwarded, value)
	sc.Contract.Gas += remainingGas
	if err != nil {
		sc.Stack.Push(new(uint256.Int))
	} else {
		sc.Stack.Push(addressToUint256(addr))
	}
	_ = returnData
	return nil, nil
}

func opReturn(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	offset, size := sc.Stack.pop2()
	return sc.Memory.Get(offset.Uint64(), size.Uint64()), nil
}

// forwardGas applies EIP-150's 63/64 rule (pre-EIP-150,
// the entire requested amount is forwarded, capped only by what remains)
// and deducts the forwarded portion from the caller's contract up front;
// remaining gas is credited back by the caller after the child returns.
func forwardGas(contract *Contract, eip150 bool, requested uint64, stipend uint64) uint64 {
	var forwarded uint64
	if eip150 {
		forwarded = CallGas(contract.Gas, requested)
	} else {
		forwarded = requested
		if forwarded > contract.Gas {
			forwarded = contract.Gas
		}
	}
	contract.Gas -= forwarded
	return forwarded + stipend
}

func opCall(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	stack := sc.Stack
	gas, _ := stack.Pop()
	addrVal, _ := stack.Pop()
	value, _ := stack.Pop()
	inOffset, _ := stack.Pop()
	inSize, _ := stack.Pop()
	retOffset, _ := stack.Pop()
	retSize, _ := stack.Pop()

	addr := types.BytesToAddress(addrVal.Bytes())
	args := sc.Memory.Get(inOffset.Uint64(), inSize.Uint64())

	var stipend uint64
	if !value.IsZero() {
		stipend = GasCallStipend
	}
	forwarded := forwardGas(sc.Contract, in.evm.Config.EIP150, gas.Uint64(), stipend)

	ret, remainingGas, err := in.evm.Call(sc.Contract.Address, addr, args, forwarded, &value)
	sc.Contract.Gas += remainingGas
	if err != nil {
		stack.Push(new(uint256.Int))
	} else {
		stack.Push(uint256.NewInt(1))
	}
	if err == nil || err == ErrExecutionReverted {
		sc.Memory.Set(retOffset.Uint64(), minUint64(retSize.Uint64(), uint64(len(ret))), ret)
	}
	return nil, nil
}

func opCallCode(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	stack := sc.Stack
	gas, _ := stack.Pop()
	addrVal, _ := stack.Pop()
	value, _ := stack.Pop()
	inOffset, _ := stack.Pop()
	inSize, _ := stack.Pop()
	retOffset, _ := stack.Pop()
	retSize, _ := stack.Pop()

	addr := types.BytesToAddress(addrVal.Bytes())
	args := sc.Memory.Get(inOffset.Uint64(), inSize.Uint64())

	var stipend uint64
	if !value.IsZero() {
		stipend = GasCallStipend
	}
	forwarded := forwardGas(sc.Contract, in.evm.Config.EIP150, gas.Uint64(), stipend)

	ret, remainingGas, err := in.evm.CallCode(sc.Contract.Address, addr, args, forwarded, &value)
	sc.Contract.Gas += remainingGas
	if err != nil {
		stack.Push(new(uint256.Int))
	} else {
		stack.Push(uint256.NewInt(1))
	}
	if err == nil || err == ErrExecutionReverted {
		sc.Memory.Set(retOffset.Uint64(), minUint64(retSize.Uint64(), uint64(len(ret))), ret)
	}
	return nil, nil
}

func opDelegateCall(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	stack := sc.Stack
	gas, _ := stack.Pop()
	addrVal, _ := stack.Pop()
	inOffset, _ := stack.Pop()
	inSize, _ := stack.Pop()
	retOffset, _ := stack.Pop()
	retSize, _ := stack.Pop()

	addr := types.BytesToAddress(addrVal.Bytes())
	args := sc.Memory.Get(inOffset.Uint64(), inSize.Uint64())

	forwarded := forwardGas(sc.Contract, in.evm.Config.EIP150, gas.Uint64(), 0)

	ret, remainingGas, err := in.evm.DelegateCall(sc.Contract, addr, args, forwarded)
	sc.Contract.Gas += remainingGas
	if err != nil {
		stack.Push(new(uint256.Int))
	} else {
		stack.Push(uint256.NewInt(1))
	}
	if err == nil || err == ErrExecutionReverted {
		sc.Memory.Set(retOffset.Uint64(), minUint64(retSize.Uint64(), uint64(len(ret))), ret)
	}
	return nil, nil
}

func opInvalid(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	return nil, ErrInvalidOpCode
}

func opSuicide(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	beneficiaryVal, err := sc.Stack.Pop()
	if err != nil {
		return nil, err
	}
	beneficiary := types.BytesToAddress(beneficiaryVal.Bytes())
	balance := in.evm.StateDB.GetBalance(sc.Contract.Address)
	in.evm.StateDB.AddBalance(beneficiary, balance)
	in.evm.StateDB.SelfDestruct(sc.Contract.Address)
	return nil, nil
}

// --- stack helpers and small utilities ---

// pop2 removes the top stack element (x, the first operand per the Yellow
// Paper's μs[0]) and returns it alongside a pointer to the new top (y,
// μs[1]) which the caller overwrites in place with the result.
func (st *Stack) pop2() (*uint256.Int, *uint256.Int) {
	top := len(st.data) - 1
	x, y := &st.data[top], &st.data[top-1]
	st.data = st.data[:top]
	return x, y
}

// pop3 removes the top two elements (x=μs[0], y=μs[1]) and returns them
// alongside a pointer to the new top (z=μs[2]), overwritten in place.
func (st *Stack) pop3() (*uint256.Int, *uint256.Int, *uint256.Int) {
	top := len(st.data) - 1
	x, y, z := &st.data[top], &st.data[top-1], &st.data[top-2]
	st.data = st.data[:top-1]
	return x, y, z
}

func addressToUint256(addr types.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(addr.Bytes())
}

// getData returns size bytes of data starting at offset, zero-padded past
// the end (used for CALLDATACOPY/CODECOPY/EXTCODECOPY/PUSH immediates).
func getData(data []byte, offset, size uint64) []byte {
	if offset > uint64(len(data)) {
		offset = uint64(len(data))
	}
	end := offset + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	out := make([]byte, size)
	copy(out, data[offset:end])
	return out
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
