package vm

import "github.com/holiman/uint256"

// Analyzed is the immutable, cacheable result of analyzing one code blob
// (spec.md §3 "Analyzed bytecode", §4.1). It holds the valid-jump-destination
// bitmap and the dispatch schedule; it is fork-independent (the same
// Analyzed value is reused regardless of which ForkRules an interpreter run
// uses -- fork-gating of individual opcodes, e.g. PUSH0 pre-Shanghai, is
// resolved by the active JumpTable at dispatch time, not baked in here) so
// it can be shared across concurrently executing frames keyed by code hash.
type Analyzed struct {
	code      []byte
	jumpdests bitvec
	schedule  []scheduleItem
	pcToIndex map[uint64]int
}

// scheduleItem is one dispatch unit produced by the analyzer (spec.md §3:
// "an ordered sequence of dispatch items, one per executable instruction").
type scheduleItem struct {
	op    OpCode
	pc    uint64
	value *uint256.Int // immediate for PUSH1..PUSH32 and the fused-push case

	// fusedWith is non-zero when this item represents a PUSHn immediately
	// followed by a single-consumer opcode recorded as one synthetic item
	// (spec.md §3 "fused" instructions, §4.1 item 6). When set, `value` is
	// the pushed constant and `op` is still the PUSHn opcode (used by
	// interpreter bookkeeping); fusedWith names the consumer.
	fusedWith OpCode
}

// bitvec is a packed bitmap over code positions, used for the
// valid-jump-destination set.
type bitvec []byte

func newBitvec(size int) bitvec {
	return make(bitvec, (size+7)/8)
}

func (b bitvec) set(pos uint64) {
	b[pos/8] |= 1 << (pos % 8)
}

func (b bitvec) isSet(pos uint64) bool {
	if pos/8 >= uint64(len(b)) {
		return false
	}
	return b[pos/8]&(1<<(pos%8)) != 0
}

// analyze validates the length bound and builds the Analyzed structure for
// code (spec.md §4.1). fuse enables the optional PUSHn+opcode fusion pass.
func analyze(code []byte, maxSize int, fuse bool) (*Analyzed, error) {
	if len(code) > maxSize {
		return nil, ErrCodeTooLarge
	}

	a := &Analyzed{
		code:      code,
		jumpdests: newBitvec(len(code)),
		pcToIndex: make(map[uint64]int, len(code)),
	}

	// Pass 1: classify bytes, mark jumpdests, skip PUSH immediates.
	for i := 0; i < len(code); {
		op := OpCode(code[i])
		if op == JUMPDEST {
			a.jumpdests.set(uint64(i))
		}
		if op.IsPush() {
			i += 1 + op.PushSize()
			continue
		}
		i++
	}

	// Pass 2: build the schedule, with optional fusion.
	for i := 0; i < len(code); {
		pc := uint64(i)
		op := OpCode(code[i])
		a.pcToIndex[pc] = len(a.schedule)

		if op.IsPush() {
			n := op.PushSize()
			val := readPushValue(code, i+1, n)
			item := scheduleItem{op: op, pc: pc, value: val}

			if fuse {
				consumerIdx := i + 1 + n
				if consumerIdx < len(code) {
					consumer := OpCode(code[consumerIdx])
					if isFusable(consumer) {
						item.fusedWith = consumer
						a.schedule = append(a.schedule, item)
						i = consumerIdx + 1
						continue
					}
				}
			}
			a.schedule = append(a.schedule, item)
			i += 1 + n
			continue
		}

		a.schedule = append(a.schedule, scheduleItem{op: op, pc: pc})
		i++
	}

	// Two trailing stop sentinels so the interpreter can safely read one
	// item past any valid terminator (spec.md §4.1 item 5).
	a.schedule = append(a.schedule, scheduleItem{op: STOP, pc: uint64(len(code))})
	a.schedule = append(a.schedule, scheduleItem{op: STOP, pc: uint64(len(code))})

	return a, nil
}

// readPushValue reads n bytes (n in [0,32]) starting at offset as a
// big-endian constant, zero-extending if the code ends early (matching the
// real protocol's implicit zero-padding of a PUSH whose immediate runs off
// the end of the code).
func readPushValue(code []byte, offset, n int) *uint256.Int {
	var buf [32]byte
	avail := len(code) - offset
	if avail < 0 {
		avail = 0
	}
	if avail > n {
		avail = n
	}
	copy(buf[32-n:32-n+avail], code[offset:offset+avail])
	v := new(uint256.Int)
	v.SetBytes(buf[:])
	return v
}

// validJumpdest reports whether pc is a JUMPDEST byte not inside a push
// immediate (spec.md §8 property 6).
func (a *Analyzed) validJumpdest(pc uint64) bool {
	if pc >= uint64(len(a.code)) {
		return false
	}
	return a.jumpdests.isSet(pc)
}

// scheduleIndexForPC returns the schedule index for a jump target PC, or
// (0, false) if pc is not the start of an instruction.
func (a *Analyzed) scheduleIndexForPC(pc uint64) (int, bool) {
	idx, ok := a.pcToIndex[pc]
	return idx, ok
}
