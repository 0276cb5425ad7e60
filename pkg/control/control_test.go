package control

import (
	"testing"

	"github.com/arnevogel/bb8cpu/pkg/alu"
	"github.com/arnevogel/bb8cpu/pkg/opcode"
)

// TestRegSPLMatchesAluOpDecLS pins the load-bearing coincidence that lets
// pop/ret/call reuse the same control-register value to both select SP
// and arm a decrement on the ALU.
func TestRegSPLMatchesAluOpDecLS(t *testing.T) {
	if uint8(RegSPL) != uint8(alu.OpDecLS) {
		t.Fatalf("RegSPL = %d, alu.OpDecLS = %d; these must be numerically equal", RegSPL, alu.OpDecLS)
	}
}

// TestStepZeroAlwaysFetches verifies every defined opcode's step-0 control
// word, once masked, asserts FetchOpcode's LD_O and CE_M with ZF both clear
// and set (the other flags clear).
func TestStepZeroAlwaysFetches(t *testing.T) {
	for _, op8 := range opcode.AllDefined() {
		for _, zf := range []bool{false, true} {
			addr := Addr(0, zf, false, false, false, op8, false)
			low := LowSignals(Eval(addr))
			if !low.LD_O() || !low.CE_M() {
				t.Errorf("opcode %#02x step 0: low = %#02x, want FetchOpcode pattern", byte(op8), byte(low))
			}
		}
	}
}

// TestHaltAssertsHaltSignal verifies opcode 0xFF asserts the dual-use HALT
// bit at step 1, not the C-field meaning of that bit.
func TestHaltAssertsHaltSignal(t *testing.T) {
	addr := Addr(1, false, false, false, false, opcode.HALT, false)
	low := LowSignals(Eval(addr))
	if low.LD_C() {
		t.Fatalf("halt step 1: LD_C unexpectedly asserted, HALT bit would be misread as C field")
	}
	if !low.HaltSignal() {
		t.Errorf("halt step 1: HaltSignal() = false, want true")
	}
}

// TestUndefinedOpcodeHaltsAfterFetch verifies any byte with no registered
// opcode halts rather than running off into garbage microcode.
func TestUndefinedOpcodeHaltsAfterFetch(t *testing.T) {
	undefined := opcode.Opcode(0x74)
	if opcode.Defined(undefined) {
		t.Fatalf("test fixture opcode %#02x is unexpectedly defined", byte(undefined))
	}
	addr := Addr(1, false, false, false, false, undefined, false)
	low := LowSignals(Eval(addr))
	if low.LD_C() || !low.HaltSignal() {
		t.Errorf("undefined opcode step 1: low = %#02x, want HALT asserted", byte(low))
	}
}

// TestPortFamiliesShareMicrocode verifies the three port-indexed families
// emit identical microcode across all 8 ports (the port number itself is
// wired straight to the I/O latch, not decoded by the control ROM).
func TestPortFamiliesShareMicrocode(t *testing.T) {
	families := []opcode.Opcode{opcode.OUT_PORT0_IMM8, opcode.IN_A_PORT0, opcode.OUT_PORT0_A}
	for _, base := range families {
		var want [16]Signals
		for step := uint8(0); step < 16; step++ {
			want[step] = signalsFromInput(step, false, false, false, false, base)
		}
		for i := 1; i < 8; i++ {
			op8 := base + opcode.Opcode(i)
			for step := uint8(0); step < 16; step++ {
				got := signalsFromInput(step, false, false, false, false, op8)
				if got != want[step] {
					t.Errorf("port family base %#02x port %d step %d: signals = %#04x, want %#04x", byte(base), i, step, uint16(got), uint16(want[step]))
				}
			}
		}
	}
}

// TestConditionalJumpsRespectFlags spot-checks that each conditional jump
// only takes the jump microcode path when its flag condition holds.
func TestConditionalJumpsRespectFlags(t *testing.T) {
	cases := []struct {
		op8                opcode.Opcode
		zf, cf, of, sf bool
		want           bool
	}{
		{opcode.JZ_IMM16, true, false, false, false, true},
		{opcode.JZ_IMM16, false, false, false, false, false},
		{opcode.JNZ_IMM16, false, false, false, false, true},
		{opcode.JC_IMM16, false, true, false, false, true},
		{opcode.JNC_IMM16, false, false, false, false, true},
		{opcode.JO_IMM16, false, false, true, false, true},
		{opcode.JNO_IMM16, false, false, false, false, true},
		{opcode.JS_IMM16, false, false, false, true, true},
		{opcode.JNS_IMM16, false, false, false, false, true},
	}
	for _, c := range cases {
		s := signalsFromInput(1, c.zf, c.cf, c.of, c.sf, c.op8)
		takesJump := s&LdLS != 0
		if takesJump != c.want {
			t.Errorf("%#02x zf=%v cf=%v of=%v sf=%v: jump taken = %v, want %v", byte(c.op8), c.zf, c.cf, c.of, c.sf, takesJump, c.want)
		}
	}
}
