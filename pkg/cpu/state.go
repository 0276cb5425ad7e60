// Package cpu implements the two-phase-clock step function that drives the
// register file, address/data bus, and ALU/control ROM lookups one
// half-cycle at a time. It never touches a file, a terminal, or a clock —
// callers (pkg/emulator) own the ROM/RAM bytes, the I/O ports, and the
// pacing between calls to Step.
//
// Grounded in the breadboard computer's emulator.c: the State struct and
// next_state.
package cpu

import "github.com/arnevogel/bb8cpu/pkg/opcode"

// Flags is the decoded form of the 4-bit F register.
type Flags struct {
	Zero, Carry, Overflow, Sign bool
}

// State is every register and latch on the board, plus the two buses. It
// owns no ROM/RAM bytes itself — Step reads and writes them through the
// Memory and IO interfaces passed in on each call.
type State struct {
	CExec bool // true during the EXEC half of the clock, false during SETUP

	Step   uint8 // 4-bit microcode step counter
	Opcode opcode.Opcode
	Flags  Flags

	LS uint8 // left ALU operand latch
	RS uint8 // right ALU operand latch
	C  uint8 // control register: bit7=1, bit6=IO-OE, bits5-0=latched C field

	ML uint8 // memory address low latch/counter
	MH uint8 // memory address high latch/counter

	SelMOrC bool // true selects the C-addressed register window over ML/MH

	// ControlSignals and ALUSignals are the raw, already activeLowMask'd
	// words the control/ALU ROMs produced — high byte in bits 8-15, low
	// byte in bits 0-7, matching what control.LowSignals/HighSignals and
	// alu.Combine expect.
	ControlSignals uint16
	ALUSignals     uint16

	AddressBus uint16
	DataBus    uint8

	Halted bool
}

// NewState returns a State primed for the breadboard's reset pulse: the
// first Step call turns this into the post-reset SETUP state with Step
// wrapped to 0, exactly as emulator.c's main() seeds {c_exec: 1, r_s: 0xf}
// before its first next_state call.
func NewState() State {
	return State{CExec: true, Step: 0xf}
}

// Snapshot is a plain-value copy of State for external consumers (a
// dashboard, a test assertion) that must not alias the live register file.
type Snapshot struct {
	CExec      bool
	Step       uint8
	Opcode     opcode.Opcode
	Flags      Flags
	LS, RS, C  uint8
	ML, MH     uint8
	SelMOrC    bool
	AddressBus uint16
	DataBus    uint8
	Halted     bool
	ALUQ       uint8
}

// Snapshot copies the current register file by value.
func (s *State) Snapshot() Snapshot {
	q, _, _, _, _ := combineALU(s.ALUSignals)
	return Snapshot{
		CExec:      s.CExec,
		Step:       s.Step,
		Opcode:     s.Opcode,
		Flags:      s.Flags,
		LS:         s.LS,
		RS:         s.RS,
		C:          s.C,
		ML:         s.ML,
		MH:         s.MH,
		SelMOrC:    s.SelMOrC,
		AddressBus: s.AddressBus,
		DataBus:    s.DataBus,
		Halted:     s.Halted,
		ALUQ:       q,
	}
}

// Memory is the combined 64KB address space behind the address bus: ROM
// below 0x8000, RAM (including the register-file window at 0xfff0-0xffff)
// at and above it. A caller's implementation owns the routing; Step only
// ever issues one Read or Write per half-cycle.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// Peripheral is anything wired to one of the 8 I/O ports.
type Peripheral interface {
	Write(b byte)
	Read() byte
}

// IO is the port fabric Step drives OUT/IN through: 3 bits of the opcode
// register select one of 8 ports.
type IO interface {
	ReadPort(port uint8) uint8
	WritePort(port uint8, v uint8)
}
