package runtime

import (
	"testing"

	"github.com/coreexec/evmcore/core/types"
	"github.com/coreexec/evmcore/core/vm"
	"github.com/holiman/uint256"
)

func testAddr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

func testBlock() vm.BlockContext {
	return vm.BlockContext{
		ChainID:  1,
		Number:   100,
		GasLimit: 30_000_000,
		GetHash:  func(uint64) types.Hash { return types.Hash{} },
	}
}

// TestApplyMessageReturnsOutput runs a contract that MSTOREs a constant and
// RETURNs it: PUSH1 0x2a PUSH1 0x00 MSTORE PUSH1 0x20 PUSH1 0x00 RETURN.
func TestApplyMessageReturnsOutput(t *testing.T) {
	db := NewStateDB()
	target := testAddr(2)
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	hash, err := db.SetCode(code)
	if err != nil {
		t.Fatalf("SetCode: %v", err)
	}
	db.SetAccount(target, types.Account{Balance: uint256.NewInt(0), CodeHash: hash})
	db.SetAccount(testAddr(1), types.Account{Balance: uint256.NewInt(1_000_000)})

	res := ApplyMessage(db, testBlock(), vm.TxContext{Origin: testAddr(1)}, vm.CancunRules(), vm.Config{}, Message{
		From:     testAddr(1),
		To:       &target,
		Value:    uint256.NewInt(0),
		GasLimit: 100_000,
	})

	if !res.Success {
		t.Fatalf("ApplyMessage failed, want success")
	}
	want := make([]byte, 32)
	want[31] = 0x2a
	if len(res.ReturnData) != 32 || res.ReturnData[31] != 0x2a {
		t.Errorf("ReturnData = %x, want 32 bytes ending in 0x2a", res.ReturnData)
	}
}

// TestApplyMessageRevertUndoesStorage runs a contract that writes storage
// then reverts: PUSH1 0x01 PUSH1 0x00 SSTORE PUSH1 0x00 PUSH1 0x00 REVERT.
// The write must never be observable afterward.
func TestApplyMessageRevertUndoesStorage(t *testing.T) {
	db := NewStateDB()
	target := testAddr(2)
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x60, 0x00, 0x60, 0x00, 0xfd}
	hash, _ := db.SetCode(code)
	db.SetAccount(target, types.Account{Balance: uint256.NewInt(0), CodeHash: hash})
	db.SetAccount(testAddr(1), types.Account{Balance: uint256.NewInt(1_000_000)})

	res := ApplyMessage(db, testBlock(), vm.TxContext{Origin: testAddr(1)}, vm.CancunRules(), vm.Config{}, Message{
		From:     testAddr(1),
		To:       &target,
		Value:    uint256.NewInt(0),
		GasLimit: 100_000,
	})

	if res.Success {
		t.Fatal("ApplyMessage succeeded, want failure (REVERT)")
	}
	var key uint256.Int
	if got := db.GetStorage(target, &key); !got.IsZero() {
		t.Errorf("storage slot 0 = %s, want 0 (SSTORE must be undone by REVERT)", got.Hex())
	}
}

// TestApplyMessageValueTransfer moves value to a plain (code-less) account.
func TestApplyMessageValueTransfer(t *testing.T) {
	db := NewStateDB()
	from, to := testAddr(1), testAddr(2)
	db.SetAccount(from, types.Account{Balance: uint256.NewInt(1000)})
	db.SetAccount(to, types.Account{Balance: uint256.NewInt(0)})

	res := ApplyMessage(db, testBlock(), vm.TxContext{Origin: from}, vm.CancunRules(), vm.Config{}, Message{
		From:     from,
		To:       &to,
		Value:    uint256.NewInt(300),
		GasLimit: 100_000,
	})

	if !res.Success {
		t.Fatal("value transfer to a plain account should succeed")
	}
	fromAcct, _ := db.GetAccount(from)
	toAcct, _ := db.GetAccount(to)
	if !fromAcct.Balance.Eq(uint256.NewInt(700)) {
		t.Errorf("sender balance = %s, want 700", fromAcct.Balance.Hex())
	}
	if !toAcct.Balance.Eq(uint256.NewInt(300)) {
		t.Errorf("recipient balance = %s, want 300", toAcct.Balance.Hex())
	}
}

// TestApplyMessageCreateDeploysCode runs a creation transaction whose
// initcode returns a single-byte runtime body (STOP): PUSH1 0x01 PUSH1 0x00
// RETURN, returning memory[0:1], which is zero-filled -- STOP's opcode byte.
func TestApplyMessageCreateDeploysCode(t *testing.T) {
	db := NewStateDB()
	from := testAddr(1)
	db.SetAccount(from, types.Account{Balance: uint256.NewInt(1_000_000)})

	initcode := []byte{0x60, 0x01, 0x60, 0x00, 0xf3}
	res := ApplyMessage(db, testBlock(), vm.TxContext{Origin: from}, vm.CancunRules(), vm.Config{}, Message{
		From:     from,
		To:       nil,
		Value:    uint256.NewInt(0),
		Input:    initcode,
		GasLimit: 200_000,
	})

	if !res.Success {
		t.Fatalf("CREATE should succeed")
	}
	code := db.GetCodeByAddress(res.CreatedAddress)
	if len(code) != 1 || code[0] != 0x00 {
		t.Errorf("deployed code = %x, want [0x00] (STOP)", code)
	}
}

// TestApplyMessageOutOfGasFails exercises a gas limit too small to cover
// even the cheapest opcode.
func TestApplyMessageOutOfGasFails(t *testing.T) {
	db := NewStateDB()
	target := testAddr(2)
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	hash, _ := db.SetCode(code)
	db.SetAccount(target, types.Account{Balance: uint256.NewInt(0), CodeHash: hash})
	db.SetAccount(testAddr(1), types.Account{Balance: uint256.NewInt(1_000_000)})

	res := ApplyMessage(db, testBlock(), vm.TxContext{Origin: testAddr(1)}, vm.CancunRules(), vm.Config{}, Message{
		From:     testAddr(1),
		To:       &target,
		Value:    uint256.NewInt(0),
		GasLimit: 1,
	})

	if res.Success {
		t.Fatal("1 gas should not be enough to run any opcode, want failure")
	}
}

func TestApplyRefundCapLondon(t *testing.T) {
	// London+: refund capped at gasUsed/5.
	got := ApplyRefundCap(1000, 10000, true)
	// capped refund = min(10000, 1000/5=200) = 200; final = 1000-200=800.
	if got != 800 {
		t.Errorf("ApplyRefundCap(1000, 10000, true) = %d, want 800", got)
	}
}

func TestApplyRefundCapPreLondon(t *testing.T) {
	// Pre-London: refund capped at gasUsed/2.
	got := ApplyRefundCap(1000, 10000, false)
	// capped refund = min(10000, 1000/2=500) = 500; final = 1000-500=500.
	if got != 500 {
		t.Errorf("ApplyRefundCap(1000, 10000, false) = %d, want 500", got)
	}
}

func TestApplyRefundCapBelowRefund(t *testing.T) {
	got := ApplyRefundCap(100, 20, true)
	// capped refund = min(20, 100/5=20) = 20; final = 100-20=80.
	if got != 80 {
		t.Errorf("ApplyRefundCap(100, 20, true) = %d, want 80", got)
	}
}
