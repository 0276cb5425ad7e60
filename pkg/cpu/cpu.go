package cpu

import (
	"errors"
	"fmt"

	"github.com/arnevogel/bb8cpu/pkg/alu"
	"github.com/arnevogel/bb8cpu/pkg/control"
	"github.com/arnevogel/bb8cpu/pkg/opcode"
)

// ErrALUNotConverged is returned when the two-slice settling loop fails to
// reach a fixed point within four iterations (§8 "converges within four
// iterations").
var ErrALUNotConverged = errors.New("cpu: alu signals did not settle within four iterations")

// ErrBusConflict is returned when more than one source tries to drive the
// data bus in the same half-cycle, mirroring emulator.c's
// assert(n_oe <= 1 && "More then one is asserting to the data bus").
var ErrBusConflict = errors.New("cpu: more than one source asserted the data bus")

// ramStart is the address bit-15 boundary: addresses below it are ROM,
// at or above it are RAM (which also backs the register-file window).
const ramStart = 0x8000

func combineALU(aluSignals uint16) (q uint8, zf, cf, of, sf bool) {
	return alu.Combine(uint8(aluSignals), uint8(aluSignals>>8))
}

func b8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func cOEIO(c uint8) bool { return (c>>6)&1 != 0 }

func addressBus(s *State) uint16 {
	if s.SelMOrC {
		return 0xfff0 | uint16(s.C&0xf)
	}
	return uint16(s.MH)<<8 | uint16(s.ML)
}

func computeControlSignals(s *State, controlROM []byte) uint16 {
	lowAddr := control.Addr(s.Step, s.Flags.Zero, s.Flags.Carry, s.Flags.Overflow, s.Flags.Sign, s.Opcode, false)
	highAddr := control.Addr(s.Step, s.Flags.Zero, s.Flags.Carry, s.Flags.Overflow, s.Flags.Sign, s.Opcode, true)
	return uint16(controlROM[highAddr])<<8 | uint16(controlROM[lowAddr])
}

// recomputeALU re-evaluates the two-slice settling loop from s.LS, s.RS and
// s.C, seeding the cross-feedback bits from s.ALUSignals rather than
// resetting them — the board's ALU never stops computing, so each call
// continues from wherever the feedback loop last settled, exactly as
// emulator.c's alu_signals(s) reads s.alu_signals as its starting point.
func recomputeALU(s *State, aluLow, aluHigh []byte) (uint16, error) {
	cf := s.Flags.Carry
	op := alu.Op(s.C & 0x3f)

	lowQZ := s.ALUSignals&0x001 != 0
	lowQC := s.ALUSignals&0x002 != 0
	highQZ := s.ALUSignals&0x100 != 0
	highQC := s.ALUSignals&0x200 != 0

	for i := 0; i < 4; i++ {
		lowAddr := alu.Addr(s.LS&0xf, s.RS&0xf, cf, op, highQZ, highQC)
		highAddr := alu.Addr(s.LS>>4, s.RS>>4, cf, op, lowQZ, lowQC)
		lowByte := aluLow[lowAddr]
		highByte := aluHigh[highAddr]

		newLowQZ := lowByte&0x1 != 0
		newLowQC := lowByte&0x2 != 0
		newHighQZ := highByte&0x1 != 0
		newHighQC := highByte&0x2 != 0

		if newLowQZ == lowQZ && newLowQC == lowQC && newHighQZ == highQZ && newHighQC == highQC {
			return uint16(highByte)<<8 | uint16(lowByte), nil
		}
		lowQZ, lowQC, highQZ, highQC = newLowQZ, newLowQC, newHighQZ, newHighQC
	}
	return 0, fmt.Errorf("cpu: ls=%#02x rs=%#02x op=%d: %w", s.LS, s.RS, op, ErrALUNotConverged)
}

// Step advances the machine by one half-cycle: SETUP on an even call from
// reset, EXEC on the next, alternating forever. It is a no-op once the
// control ROM asserts HALT.
func Step(s *State, mem Memory, io IO, aluLow, aluHigh, controlROM []byte) error {
	low := control.LowSignals(uint8(s.ControlSignals))
	if low.HaltSignal() {
		s.Halted = true
		return nil
	}

	s.CExec = !s.CExec

	// The ALU output that drove the bus this half, before stepExec reloads
	// LS/RS and recomputes it.
	aluDrivingBus := s.ALUSignals

	var err error
	if !s.CExec {
		err = stepSetup(s, mem, io, aluLow, aluHigh, controlROM)
	} else {
		err = stepExec(s, mem, aluLow, aluHigh)
	}
	if err != nil {
		return err
	}

	high := control.HighSignals(uint8(s.ControlSignals >> 8))
	if s.CExec && high.OE_ALU() && high.LD_LS() {
		_, zf, cf, of, sf := combineALU(aluDrivingBus)
		s.Flags = Flags{Zero: zf, Carry: cf, Overflow: of, Sign: sf}

		combined, err := recomputeALU(s, aluLow, aluHigh)
		if err != nil {
			return err
		}
		s.ALUSignals = combined
	}

	low = control.LowSignals(uint8(s.ControlSignals))
	if low.LD_IO() {
		io.WritePort(uint8(s.Opcode)&7, s.DataBus)
	}

	return nil
}

// stepSetup is the ~C_EXEC half: step counting, the C/ML/MH latches, the
// M/C select toggle, recomputing this tick's control word, and driving
// whichever single source owns the data bus.
func stepSetup(s *State, mem Memory, io IO, aluLow, aluHigh, controlROM []byte) error {
	// Every action below up to the control-word recompute reads the word
	// latched at the END of the PREVIOUS setup half — the microinstruction
	// that is completing this tick, not the one about to start.
	low := control.LowSignals(uint8(s.ControlSignals))
	high := control.HighSignals(uint8(s.ControlSignals >> 8))

	s.Step++
	if s.Step >= 0x10 {
		s.Step = 0
	}
	if low.LD_S() {
		s.Step = 0
	}

	if low.LD_C() {
		ioOE := alu.IOOutputEnable(uint8(s.ALUSignals))
		s.C = (1 << 7) | (b8(ioOE) << 6) | low.CField()

		combined, err := recomputeALU(s, aluLow, aluHigh)
		if err != nil {
			return err
		}
		s.ALUSignals = combined

		if cOEIO(s.C) {
			// Latched here, asserted to the bus below alongside every
			// other would-be source so ErrBusConflict still catches it.
		}
	}

	// ML/MH free-run as a counter whenever CE_M is asserted and nothing
	// is explicitly loading them this tick.
	if low.CE_M() && !high.LD_ML() {
		s.ML++
		if s.ML == 0 && !high.LD_MH() {
			s.MH++
		}
	}
	if high.LD_ML() {
		s.ML = s.DataBus
	}
	if high.LD_MH() {
		s.MH = s.DataBus
	}

	if low.TG_M_C() {
		s.SelMOrC = !s.SelMOrC
	}

	s.ControlSignals = computeControlSignals(s, controlROM)
	newHigh := control.HighSignals(uint8(s.ControlSignals >> 8))

	s.AddressBus = addressBus(s)

	nOE := 0
	if newHigh.OE_ML() {
		s.DataBus = s.ML
		nOE++
	}
	if newHigh.OE_MH() {
		s.DataBus = s.MH
		nOE++
	}
	if newHigh.OE_ALU() {
		q, _, _, _, _ := combineALU(s.ALUSignals)
		s.DataBus = q
		nOE++
	}
	if newHigh.OE_MEM() {
		s.DataBus = mem.Read(s.AddressBus)
		nOE++
	}
	if cOEIO(s.C) {
		s.DataBus = io.ReadPort(uint8(s.Opcode) & 7)
		nOE++
	}
	if nOE == 0 {
		s.DataBus = 0xff // pulled up
	}
	if nOE > 1 {
		return fmt.Errorf("cpu: step %#x addr %#04x: %w", s.Step, s.AddressBus, ErrBusConflict)
	}

	return nil
}

// stepExec is the C_EXEC half: latch O/RS/LS from the data bus the SETUP
// half just drove, and write RAM if this step asked for it.
func stepExec(s *State, mem Memory, aluLow, aluHigh []byte) error {
	low := control.LowSignals(uint8(s.ControlSignals))
	high := control.HighSignals(uint8(s.ControlSignals >> 8))

	if low.LD_O() {
		s.Opcode = opcode.Opcode(s.DataBus)
	}

	if low.LD_RS() {
		s.RS = s.DataBus
		combined, err := recomputeALU(s, aluLow, aluHigh)
		if err != nil {
			return err
		}
		s.ALUSignals = combined
	}

	if high.LD_LS() {
		s.LS = s.DataBus
		combined, err := recomputeALU(s, aluLow, aluHigh)
		if err != nil {
			return err
		}
		s.ALUSignals = combined
	}

	if high.LD_MEM(s.CExec) && s.AddressBus >= ramStart {
		mem.Write(s.AddressBus, s.DataBus)
	}

	return nil
}
