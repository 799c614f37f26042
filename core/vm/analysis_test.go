package vm

import "testing"

func TestAnalyzeJumpdests(t *testing.T) {
	// PUSH1 0x5b JUMPDEST JUMPDEST
	// byte 1 (0x5b) is a PUSH1 immediate, not a real JUMPDEST; byte 2 is.
	code := []byte{byte(PUSH1), byte(JUMPDEST), byte(JUMPDEST)}
	a, err := analyze(code, 24576, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.validJumpdest(1) {
		t.Error("pc 1 is inside a PUSH1 immediate, should not be a valid jumpdest")
	}
	if !a.validJumpdest(2) {
		t.Error("pc 2 is a real JUMPDEST, should be valid")
	}
}

func TestAnalyzeJumpdestOutOfRange(t *testing.T) {
	code := []byte{byte(STOP)}
	a, err := analyze(code, 24576, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.validJumpdest(100) {
		t.Error("pc past code length should never be a valid jumpdest")
	}
}

func TestAnalyzeCodeTooLarge(t *testing.T) {
	code := make([]byte, 10)
	if _, err := analyze(code, 5, false); err != ErrCodeTooLarge {
		t.Errorf("analyze over maxSize = %v, want ErrCodeTooLarge", err)
	}
}

func TestAnalyzePushValue(t *testing.T) {
	// PUSH2 0x01 0x02
	code := []byte{byte(PUSH2), 0x01, 0x02}
	a, err := analyze(code, 24576, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(a.schedule) < 1 {
		t.Fatal("expected at least one schedule item")
	}
	item := a.schedule[0]
	if item.op != PUSH2 {
		t.Errorf("schedule[0].op = %s, want PUSH2", item.op)
	}
	if item.value.Uint64() != 0x0102 {
		t.Errorf("schedule[0].value = %d, want 0x0102", item.value.Uint64())
	}
}

func TestAnalyzePushValueTruncatedAtCodeEnd(t *testing.T) {
	// PUSH2 with only one immediate byte present: the missing byte is
	// implicitly zero-padded, matching the real protocol's behavior for a
	// PUSH whose immediate runs off the end of the code.
	code := []byte{byte(PUSH2), 0xff}
	a, err := analyze(code, 24576, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := a.schedule[0].value.Uint64(); got != 0xff00 {
		t.Errorf("truncated PUSH2 value = %#x, want 0xff00", got)
	}
}

func TestAnalyzeFusion(t *testing.T) {
	// PUSH1 0x02 ADD
	code := []byte{byte(PUSH1), 0x02, byte(ADD)}
	a, err := analyze(code, 24576, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(a.schedule) < 1 {
		t.Fatal("expected at least one schedule item")
	}
	item := a.schedule[0]
	if item.fusedWith != ADD {
		t.Errorf("fusedWith = %s, want ADD", item.fusedWith)
	}
	if item.value.Uint64() != 2 {
		t.Errorf("fused value = %d, want 2", item.value.Uint64())
	}
}

func TestAnalyzeNoFusionWhenDisabled(t *testing.T) {
	code := []byte{byte(PUSH1), 0x02, byte(ADD)}
	a, err := analyze(code, 24576, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, item := range a.schedule {
		if item.fusedWith != 0 {
			t.Error("fusion must not happen when fuse=false")
		}
	}
}

func TestAnalyzeNoFusionForNonFusableConsumer(t *testing.T) {
	// PUSH1 0x02 SLOAD -- SLOAD is not in the fusable set.
	code := []byte{byte(PUSH1), 0x02, byte(SLOAD)}
	a, err := analyze(code, 24576, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.schedule[0].fusedWith != 0 {
		t.Error("SLOAD must not be fused into the preceding PUSH1")
	}
}

func TestAnalyzeTrailingStopSentinels(t *testing.T) {
	code := []byte{byte(PUSH1), 0x01}
	a, err := analyze(code, 24576, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	n := len(a.schedule)
	if n < 3 {
		t.Fatalf("expected at least 3 schedule items (1 real + 2 sentinels), got %d", n)
	}
	if a.schedule[n-1].op != STOP || a.schedule[n-2].op != STOP {
		t.Error("schedule must end with two STOP sentinels")
	}
}

func TestScheduleIndexForPC(t *testing.T) {
	// PUSH1 0x01 JUMPDEST STOP
	code := []byte{byte(PUSH1), 0x01, byte(JUMPDEST), byte(STOP)}
	a, err := analyze(code, 24576, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	idx, ok := a.scheduleIndexForPC(2)
	if !ok {
		t.Fatal("expected pc 2 (JUMPDEST) to resolve to a schedule index")
	}
	if a.schedule[idx].op != JUMPDEST {
		t.Errorf("schedule[%d].op = %s, want JUMPDEST", idx, a.schedule[idx].op)
	}

	// pc 1 is inside the PUSH1 immediate -- not a valid dispatch target.
	if _, ok := a.scheduleIndexForPC(1); ok {
		t.Error("pc inside a PUSH immediate should not resolve to a schedule index")
	}
}
