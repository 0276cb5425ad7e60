// Package control implements the microcoded sequencer: for every (step,
// flags, opcode) combination it produces the 16-bit control word that
// drives every other block of the machine, plus the ROM table that stores
// that word across the two 8-bit control ROM chips.
//
// Grounded in the breadboard computer's control.c: signals_from_input and
// generate_table.
package control

// Signals is the 16-bit control word in its active-high form. Bits 0-4
// (the "C field") carry two different meanings depending on bit 6 (LD_C):
// when LD_C is set they are a RegAlias or alu.Op value latched into the
// control register; when clear they are five independent NOT_LD_C
// signals (CE_M, LD_O, LD_S, LD_RS, LD_IO). Bit 5 is dual-use the same
// way: C_LS_ALU_Q when LD_C is set, HALT when it is not. The ROM itself
// never sees this active-high form — Signals.Low/Signals.High XOR it against
// activeLowMask before it is written to a chip.
type Signals uint16

const (
	CeMNotLdC  Signals = 1 << 0
	LdONotLdC  Signals = 1 << 1
	LdSNotLdC  Signals = 1 << 2
	LdRSNotLdC Signals = 1 << 3
	LdIONotLdC Signals = 1 << 4
	CLsAluQ    Signals = 1 << 5 // meaningful when LdC is set
	HaltNotLdC Signals = 1 << 5 // meaningful when LdC is clear
	LdC        Signals = 1 << 6
	TgMC       Signals = 1 << 7
	LdMem      Signals = 1 << 8
	LdLS       Signals = 1 << 9
	LdML       Signals = 1 << 10
	LdMH       Signals = 1 << 11
	OeML       Signals = 1 << 12
	OeMH       Signals = 1 << 13
	OeALU      Signals = 1 << 14
	OeMem      Signals = 1 << 15
)

const activeLowMask = LdC | LdLS | LdML | LdMH | OeML | OeMH | OeALU | OeMem

// FetchOpcode is the step-0 microcode common to every instruction: drive
// memory onto the bus, latch it into O, and advance ML/MH (the program
// counter) past the opcode byte.
const FetchOpcode = OeMem | LdONotLdC | CeMNotLdC

// LowSignals is the active-low byte the emulator actually reads out of
// the low control ROM chip (bits 0-7 of Signals, post activeLowMask).
type LowSignals uint8

// HighSignals is the active-low byte the emulator actually reads out of
// the high control ROM chip (bits 8-15 of Signals, post activeLowMask).
type HighSignals uint8

// Low returns the byte the low ROM chip stores for this active-high word.
func (s Signals) Low() LowSignals {
	return LowSignals((s ^ activeLowMask) & 0xff)
}

// High returns the byte the high ROM chip stores for this active-high word.
func (s Signals) High() HighSignals {
	return HighSignals(((s ^ activeLowMask) >> 8) & 0xff)
}

// Only the bits named in activeLowMask are inverted on their way into the
// ROM; bits 0-5, 7 and 8 are written exactly as Signals set them. That
// means the five NOT_LD_C signals, CE_M, TG_M_C and LD_MEM read as
// asserted on a raw 1, while LD_C itself and everything in the high byte
// read as asserted on a raw 0 — so each of the dual-use low bits needs an
// explicit AND against the raw LD_C bit (LdCRaw) to tell "signal asserted"
// from "this bit is part of the C field this tick", exactly as
// emulator.c's SIGNAL_LD_O/LD_S/LD_RS/LD_IO/HALT macros NAND them.

func (s LowSignals) raw(bit uint) bool { return (s>>bit)&1 != 0 }

// LdCRaw is the literal ROM bit: 1 means LD_C is NOT asserted this tick.
func (s LowSignals) LdCRaw() bool { return s.raw(6) }

func (s LowSignals) LD_C() bool { return !s.LdCRaw() }

func (s LowSignals) CE_M() bool  { return s.raw(0) && s.LdCRaw() }
func (s LowSignals) LD_O() bool  { return s.raw(1) && s.LdCRaw() }
func (s LowSignals) LD_S() bool  { return s.raw(2) && s.LdCRaw() }
func (s LowSignals) LD_RS() bool { return s.raw(3) && s.LdCRaw() }
func (s LowSignals) LD_IO() bool { return s.raw(4) && s.LdCRaw() }

// HaltSignal reports the dual-use bit 5 as HALT, gated the same way as the
// other NOT_LD_C signals: only meaningful while LD_C is not asserted.
func (s LowSignals) HaltSignal() bool { return s.raw(5) && s.LdCRaw() }

func (s LowSignals) TG_M_C() bool { return s.raw(7) }

// CField returns raw bits 0-5, the value latched into the control register
// when LD_C is asserted (a RegAlias in bits 0-4, or a RegAlias/alu.Op in
// bits 0-5 when the microcode also set C_LS_ALU_Q).
func (s LowSignals) CField() uint8 { return uint8(s) & 0x3f }

func (s HighSignals) raw(bit uint) bool { return (s>>bit)&1 != 0 }

// LdMemRaw is LD_MEM's literal ROM bit: unlike the rest of the high byte
// it is not in activeLowMask, so 1 means asserted.
func (s HighSignals) LdMemRaw() bool { return s.raw(0) }

func (s HighSignals) LD_LS() bool  { return !s.raw(1) }
func (s HighSignals) LD_ML() bool  { return !s.raw(2) }
func (s HighSignals) LD_MH() bool  { return !s.raw(3) }
func (s HighSignals) OE_ML() bool  { return !s.raw(4) }
func (s HighSignals) OE_MH() bool  { return !s.raw(5) }
func (s HighSignals) OE_ALU() bool { return !s.raw(6) }
func (s HighSignals) OE_MEM() bool { return !s.raw(7) }

// LD_MEM additionally depends on c_exec (the second half of the two-phase
// clock): the breadboard only ever writes RAM during EXEC, mirroring
// emulator.c's SIGNAL_C_LD_MEM.
func (s HighSignals) LD_MEM(cExec bool) bool { return s.LdMemRaw() && cExec }

// RegAlias is a control-register value that, once latched by LD_C, selects
// which register is addressed by the rest of the machine this tick. The
// register file's low nibble decode lives in package cpu; this type only
// names the constants the microcode emits.
type RegAlias uint8

const (
	RegA   RegAlias = 0x0
	RegB   RegAlias = 0x1
	RegC   RegAlias = 0x2
	RegD   RegAlias = 0x3
	RegSPL RegAlias = 0x4 // numerically equal to alu.OpDecLS — see TestRegSPLMatchesAluOpDecLS
	RegIL  RegAlias = 0x5
	RegIH  RegAlias = 0x6
	RegJL  RegAlias = 0x7
	RegJH  RegAlias = 0x8
	RegTL  RegAlias = 0xb
	RegTH  RegAlias = 0xc
	RegUL  RegAlias = 0xd
)
