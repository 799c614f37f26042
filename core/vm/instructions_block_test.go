package vm

import (
	"testing"

	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

func TestOpBlockhashReturnsHostHash(t *testing.T) {
	f, h := newSystemFrame(1000)
	h.blockHash = types.Hash{0xab}
	f.stack.push(uint256.NewInt(42))
	if err := opBlockhash(f, nil); err != nil {
		t.Fatalf("opBlockhash: %v", err)
	}
	want := hashToWord(h.blockHash)
	if got := f.stack.peek(); !got.Eq(&want) {
		t.Errorf("BLOCKHASH = %s, want %s", got.Hex(), want.Hex())
	}
}

func TestOpCoinbaseNumberTimestampGasLimit(t *testing.T) {
	h := newStubHost()
	h.blockCtx = BlockContext{
		Coinbase:  addr(9),
		Number:    100,
		Timestamp: 200,
		GasLimit:  300,
	}
	f := &Frame{stack: newStack(), memory: newMemory(), host: h, address: addr(1)}

	if err := opCoinbase(f, nil); err != nil {
		t.Fatalf("opCoinbase: %v", err)
	}
	want := addressToWord(addr(9))
	if got := f.stack.peek(); !got.Eq(&want) {
		t.Errorf("COINBASE = %s, want %s", got.Hex(), want.Hex())
	}

	if err := opNumber(f, nil); err != nil {
		t.Fatalf("opNumber: %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(100)) {
		t.Errorf("NUMBER = %s, want 100", got.Hex())
	}

	if err := opTimestamp(f, nil); err != nil {
		t.Fatalf("opTimestamp: %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(200)) {
		t.Errorf("TIMESTAMP = %s, want 200", got.Hex())
	}

	if err := opGasLimit(f, nil); err != nil {
		t.Fatalf("opGasLimit: %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(300)) {
		t.Errorf("GASLIMIT = %s, want 300", got.Hex())
	}
}

func TestOpPrevRandaoReadsBlockContext(t *testing.T) {
	h := newStubHost()
	h.blockCtx = BlockContext{PrevRandao: types.Hash{1, 2, 3}}
	f := &Frame{stack: newStack(), memory: newMemory(), host: h, address: addr(1)}

	if err := opPrevRandao(f, nil); err != nil {
		t.Fatalf("opPrevRandao: %v", err)
	}
	want := hashToWord(h.blockCtx.PrevRandao)
	if got := f.stack.peek(); !got.Eq(&want) {
		t.Errorf("PREVRANDAO = %s, want %s", got.Hex(), want.Hex())
	}
}
