package emulator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arnevogel/bb8cpu/pkg/alu"
	"github.com/arnevogel/bb8cpu/pkg/control"
	"github.com/arnevogel/bb8cpu/pkg/opcode"
)

func buildROMs(t *testing.T) (aluLow, aluHigh, controlROM []byte) {
	t.Helper()
	aluLow = make([]byte, alu.ROMSize)
	aluHigh = make([]byte, alu.ROMSize)
	require.NoError(t, alu.Generate(aluLow, aluHigh))
	controlROM = make([]byte, control.ROMSize)
	require.NoError(t, control.Generate(controlROM))
	return
}

func newRunning(t *testing.T, program []byte) *Emulator {
	t.Helper()
	aluLow, aluHigh, controlROM := buildROMs(t)
	e, err := New(aluLow, aluHigh, controlROM, program)
	require.NoError(t, err)
	return e
}

const regA = 0xfff0
const regB = 0xfff1

// runToHalt drives the machine until HALT fires or the half-cycle budget
// runs out, whichever comes first.
func runToHalt(t *testing.T, e *Emulator, maxHalfCycles int) {
	t.Helper()
	for i := 0; i < maxHalfCycles; i++ {
		snap, err := e.Step()
		require.NoError(t, err)
		if snap.Halted {
			return
		}
	}
	t.Fatalf("machine did not halt within %d half-cycles", maxHalfCycles)
}

// TestLoadImmediateThenHalt is scenario 1: ld a, 0xab; halt.
func TestLoadImmediateThenHalt(t *testing.T) {
	e := newRunning(t, []byte{byte(opcode.LD_A_IMM8), 0xab, byte(opcode.HALT)})
	runToHalt(t, e, 256)

	require.Equal(t, byte(0xab), e.Read(regA))
	snap := e.Snapshot()
	require.False(t, snap.Flags.Zero)
	require.False(t, snap.Flags.Carry)
	require.False(t, snap.Flags.Overflow)
	require.False(t, snap.Flags.Sign)
}

// TestAddTwoRegisters is scenario 2: ld a, 5; ld b, 3; add a, b; halt.
func TestAddTwoRegisters(t *testing.T) {
	e := newRunning(t, []byte{
		byte(opcode.LD_A_IMM8), 5,
		byte(opcode.LD_B_IMM8), 3,
		byte(opcode.ADD_A_B),
		byte(opcode.HALT),
	})
	runToHalt(t, e, 256)

	require.Equal(t, byte(8), e.Read(regA))
	snap := e.Snapshot()
	require.False(t, snap.Flags.Zero)
	require.False(t, snap.Flags.Carry)
	require.False(t, snap.Flags.Overflow)
}

// TestIncOverflowsToZero is scenario 3: ld a, 0xff; inc a; halt.
func TestIncOverflowsToZero(t *testing.T) {
	e := newRunning(t, []byte{
		byte(opcode.LD_A_IMM8), 0xff,
		byte(opcode.INC_A),
		byte(opcode.HALT),
	})
	runToHalt(t, e, 256)

	require.Equal(t, byte(0), e.Read(regA))
	snap := e.Snapshot()
	require.True(t, snap.Flags.Zero)
	require.False(t, snap.Flags.Carry, "inc must not touch the carry flag")
}

// TestPushPopRoundTripsStackPointer is scenario 4: ld sp, 0xff; ld a, 0x42;
// push a; pop b; halt.
func TestPushPopRoundTripsStackPointer(t *testing.T) {
	e := newRunning(t, []byte{
		byte(opcode.LD_SP_IMM8), 0xff,
		byte(opcode.LD_A_IMM8), 0x42,
		byte(opcode.PUSH_A),
		byte(opcode.POP_B),
		byte(opcode.HALT),
	})
	runToHalt(t, e, 512)

	require.Equal(t, byte(0x42), e.Read(regB))
	require.Equal(t, byte(0xff), e.Read(0xfff4), "SP (register alias 0xFFF4) must return to its initial value")
}

// TestAutoIncrementPointerWrite is scenario 5: ld i, 0x9200; ld a, 0x11;
// ld [i++], a; ld a, 0x22; ld [i], a; halt.
func TestAutoIncrementPointerWrite(t *testing.T) {
	const target = 0x9200
	e := newRunning(t, []byte{
		byte(opcode.LD_I_IMM16), byte(target & 0xff), byte(target >> 8),
		byte(opcode.LD_A_IMM8), 0x11,
		byte(opcode.LD_I_PTR_INC_A),
		byte(opcode.LD_A_IMM8), 0x22,
		byte(opcode.LD_I_PTR_A),
		byte(opcode.HALT),
	})
	runToHalt(t, e, 512)

	require.Equal(t, byte(0x11), e.Read(target))
	require.Equal(t, byte(0x22), e.Read(target+1))

	require.Equal(t, byte((target+1)&0xff), e.Read(0xfff5), "I low byte must have advanced past the first write")
	require.Equal(t, byte((target+1)>>8), e.Read(0xfff6), "I high byte")
}

// TestConditionalJumpOnZeroFlag is scenario 6: ld a, 3; cmp a, 3; jz target;
// halt, with target landing on a later ld a, 0x99.
func TestConditionalJumpOnZeroFlag(t *testing.T) {
	const bootAddr = ramAbsoluteStart + programRAMRelativeStart
	const target = bootAddr + 8

	e := newRunning(t, []byte{
		byte(opcode.LD_A_IMM8), 3, // bootAddr+0,+1
		byte(opcode.CMP_A_IMM8), 3, // bootAddr+2,+3
		byte(opcode.JZ_IMM16), byte(target & 0xff), byte(target >> 8), // bootAddr+4..6
		byte(opcode.HALT), // bootAddr+7 — must be skipped
		byte(opcode.LD_A_IMM8), 0x99, // bootAddr+8,+9 == target
		byte(opcode.HALT), // bootAddr+10
	})
	runToHalt(t, e, 512)

	require.Equal(t, byte(0x99), e.Read(regA))
}

// TestROMSizeValidation rejects undersized ROM images before the clock runs.
func TestROMSizeValidation(t *testing.T) {
	aluLow, aluHigh, controlROM := buildROMs(t)
	_, err := New(aluLow[:10], aluHigh, controlROM, nil)
	require.ErrorIs(t, err, ErrROMSize)
}

// TestProgramTooLargeRejected rejects a program that would not fit in RAM.
func TestProgramTooLargeRejected(t *testing.T) {
	aluLow, aluHigh, controlROM := buildROMs(t)
	huge := make([]byte, (1<<15)-programRAMRelativeStart+1)
	_, err := New(aluLow, aluHigh, controlROM, huge)
	require.ErrorIs(t, err, ErrProgramTooLarge)
}

// TestInvalidClockRateRejected rejects a clock rate outside [1, 16000000].
func TestInvalidClockRateRejected(t *testing.T) {
	aluLow, aluHigh, controlROM := buildROMs(t)
	_, err := New(aluLow, aluHigh, controlROM, nil, WithClockHz(0))
	require.ErrorIs(t, err, ErrInvalidClockRate)
}

// TestUnboundPortReadsPulledUpHigh verifies an IN from a port with nothing
// bound reads back 0xFF rather than erroring (§9 Open Question, resolved
// in DESIGN.md).
func TestUnboundPortReadsPulledUpHigh(t *testing.T) {
	e := newRunning(t, []byte{
		byte(opcode.IN_A_PORT0),
		byte(opcode.HALT),
	})
	runToHalt(t, e, 256)
	require.Equal(t, byte(0xff), e.Read(regA))
}

// fakePeripheral is a trivial cpu.Peripheral for BindPeripheral tests.
type fakePeripheral struct {
	lastWrite byte
	readValue byte
}

func (p *fakePeripheral) Write(b byte) { p.lastWrite = b }
func (p *fakePeripheral) Read() byte   { return p.readValue }

// TestBoundPeripheralServicesInAndOut verifies OUT/IN route through a
// bound Peripheral instead of the pulled-up default.
func TestBoundPeripheralServicesInAndOut(t *testing.T) {
	e := newRunning(t, []byte{
		byte(opcode.OUT_PORT3_IMM8), 0x55,
		byte(opcode.IN_A_PORT3),
		byte(opcode.HALT),
	})
	dev := &fakePeripheral{readValue: 0x7e}
	require.NoError(t, e.BindPeripheral(3, dev))

	runToHalt(t, e, 256)

	require.Equal(t, byte(0x55), dev.lastWrite)
	require.Equal(t, byte(0x7e), e.Read(regA))
}

// TestPeripheralLookupReportsUnbound verifies the introspection accessor,
// as opposed to the hardware read path, does surface ErrUnboundPort.
func TestPeripheralLookupReportsUnbound(t *testing.T) {
	e := newRunning(t, []byte{byte(opcode.HALT)})
	_, err := e.Peripheral(5)
	require.ErrorIs(t, err, ErrUnboundPort)
}

// TestRunRespectsInstructionCap verifies Run stops after maxInstructions
// full instructions even if the program never halts.
func TestRunRespectsInstructionCap(t *testing.T) {
	e := newRunning(t, []byte{
		byte(opcode.NOP),
		byte(opcode.NOP),
		byte(opcode.NOP),
		byte(opcode.NOP),
	})
	snap, err := e.Run(2)
	require.NoError(t, err)
	require.False(t, snap.Halted)
	require.Equal(t, 2, e.InstructionCount())
}
