// Package emulator is the top-level driver: it owns the three ROM tables,
// the unified ROM/RAM address space, the 8 I/O port latches, and a
// cpu.State, and is the only place in this module that sequences Step
// calls and loads a program image.
//
// Grounded in the breadboard computer's emulator.c: main's boot/load
// sequencing, and the rom[]/ram[]/io_ports[] globals next_state reads and
// writes through.
package emulator

import (
	"errors"
	"fmt"

	"github.com/arnevogel/bb8cpu/pkg/alu"
	"github.com/arnevogel/bb8cpu/pkg/control"
	"github.com/arnevogel/bb8cpu/pkg/cpu"
	"github.com/arnevogel/bb8cpu/pkg/opcode"
)

// Input-time errors, returned from New/Option before the clock ever runs.
var (
	ErrROMSize          = errors.New("emulator: rom slice has the wrong size")
	ErrProgramTooLarge  = errors.New("emulator: program does not fit in RAM")
	ErrInvalidClockRate = errors.New("emulator: clock rate out of range")
)

// Step-time errors: invariant violations surfaced from the underlying
// cpu.Step. Aliased here so callers only need to import pkg/emulator.
var (
	ErrBusConflict     = cpu.ErrBusConflict
	ErrALUNotConverged = cpu.ErrALUNotConverged
)

// ErrUnboundPort is returned by Peripheral when no device has been bound
// to the requested port. It is never returned by Step/Run: an unbound
// port's hardware read simply floats to the pulled-up 0xFF (§9).
var ErrUnboundPort = errors.New("emulator: no peripheral bound to this port")

const (
	romSize                 = 1 << 15 // RAM_ABSOLUTE_START_ADDRESS
	ramAbsoluteStart        = 1 << 15
	programRAMRelativeStart = 0x1000

	minClockHz     = 1
	maxClockHz     = 16_000_000
	defaultClockHz = 20
)

// portLatch is the last byte OUT wrote to a port, plus whatever device is
// plugged into it.
type portLatch struct {
	value      uint8
	peripheral cpu.Peripheral
}

// Emulator bundles the three ROM tables, the combined 64KB address space,
// the 8 I/O ports and the live cpu.State, and sequences Step calls.
type Emulator struct {
	aluLow, aluHigh, controlROM []byte

	mem   [1 << 16]uint8
	ports [8]portLatch

	state cpu.State

	clockHz          int
	instructionCount int
}

// Option configures an Emulator at construction time.
type Option func(*Emulator)

// WithClockHz sets the emulator's nominal clock rate; it is advisory
// metadata for cmd/bb8emu's pacing, not something Step itself consults.
func WithClockHz(hz int) Option {
	return func(e *Emulator) { e.clockHz = hz }
}

// New validates the three ROM images and the program image, loads the
// program at the conventional RAM offset, installs the three-byte boot jump
// (JMP_IMM16 plus its 16-bit target) at ROM address 0, and runs the reset pulse so the returned Emulator is
// ready for its first real Step.
func New(aluLow, aluHigh, controlROM []byte, program []byte, opts ...Option) (*Emulator, error) {
	if len(aluLow) != alu.ROMSize || len(aluHigh) != alu.ROMSize {
		return nil, fmt.Errorf("emulator: alu roms must be %d bytes, got low=%d high=%d: %w",
			alu.ROMSize, len(aluLow), len(aluHigh), ErrROMSize)
	}
	if len(controlROM) != control.ROMSize {
		return nil, fmt.Errorf("emulator: control rom must be %d bytes, got %d: %w",
			control.ROMSize, len(controlROM), ErrROMSize)
	}
	if len(program) > (1<<15)-programRAMRelativeStart {
		return nil, fmt.Errorf("emulator: program is %d bytes, max %d: %w",
			len(program), (1<<15)-programRAMRelativeStart, ErrProgramTooLarge)
	}

	e := &Emulator{
		aluLow:     aluLow,
		aluHigh:    aluHigh,
		controlROM: controlROM,
		clockHz:    defaultClockHz,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clockHz < minClockHz || e.clockHz > maxClockHz {
		return nil, fmt.Errorf("emulator: clock rate %d outside [%d, %d]: %w",
			e.clockHz, minClockHz, maxClockHz, ErrInvalidClockRate)
	}

	bootAddr := ramAbsoluteStart + programRAMRelativeStart
	e.mem[0] = uint8(opcode.JMP_IMM16)
	e.mem[1] = uint8(bootAddr)
	e.mem[2] = uint8(bootAddr >> 8)

	copy(e.mem[bootAddr:], program)

	e.state = cpu.NewState()
	if err := cpu.Step(&e.state, e, e, e.aluLow, e.aluHigh, e.controlROM); err != nil {
		return nil, fmt.Errorf("emulator: reset pulse: %w", err)
	}

	return e, nil
}

// ClockHz reports the emulator's configured nominal clock rate.
func (e *Emulator) ClockHz() int { return e.clockHz }

// Read implements cpu.Memory over the unified 64KB address space: ROM
// below 0x8000, RAM (including the register-file window) at and above.
func (e *Emulator) Read(addr uint16) uint8 { return e.mem[addr] }

// Write implements cpu.Memory; writes below the ROM boundary are
// discarded rather than panicking; Step never issues one (it gates RAM
// writes on address >= 0x8000 itself), so this only guards a caller
// poking the interface directly.
func (e *Emulator) Write(addr uint16, v uint8) {
	if addr < romSize {
		return
	}
	e.mem[addr] = v
}

// ReadPort implements cpu.IO. A port with no bound Peripheral floats to
// the pulled-up 0xFF.
func (e *Emulator) ReadPort(port uint8) uint8 {
	p := &e.ports[port&7]
	if p.peripheral != nil {
		return p.peripheral.Read()
	}
	return 0xff
}

// WritePort implements cpu.IO: it latches the value (so an unbound port
// still remembers the last OUT) and forwards it to a bound Peripheral.
func (e *Emulator) WritePort(port uint8, v uint8) {
	p := &e.ports[port&7]
	p.value = v
	if p.peripheral != nil {
		p.peripheral.Write(v)
	}
}

// BindPeripheral wires p to one of the 8 I/O ports.
func (e *Emulator) BindPeripheral(port int, p cpu.Peripheral) error {
	if port < 0 || port > 7 {
		return fmt.Errorf("emulator: port %d outside [0,7]", port)
	}
	e.ports[port].peripheral = p
	return nil
}

// Peripheral returns the device bound to port, or ErrUnboundPort if
// nothing has been attached there.
func (e *Emulator) Peripheral(port int) (cpu.Peripheral, error) {
	if port < 0 || port > 7 {
		return nil, fmt.Errorf("emulator: port %d outside [0,7]", port)
	}
	if e.ports[port].peripheral == nil {
		return nil, fmt.Errorf("port %d: %w", port, ErrUnboundPort)
	}
	return e.ports[port].peripheral, nil
}

// PortValue returns the last byte OUT latched into port, regardless of
// whether a Peripheral is bound — useful for tests that want to observe
// an OUT without wiring up a fake device.
func (e *Emulator) PortValue(port int) uint8 { return e.ports[port&7].value }

// Step advances the machine by one half-cycle and returns a snapshot of
// the resulting register file.
func (e *Emulator) Step() (cpu.Snapshot, error) {
	err := cpu.Step(&e.state, e, e, e.aluLow, e.aluHigh, e.controlROM)
	if err != nil {
		return e.state.Snapshot(), err
	}
	// A SETUP half that resets Step back to 0 is the fetch beginning the
	// next instruction — i.e. the previous one just retired. New's reset
	// pulse runs through cpu.Step directly, not this method, so it never
	// inflates the count.
	if !e.state.CExec && e.state.Step == 0 {
		e.instructionCount++
	}
	return e.state.Snapshot(), nil
}

// Run steps the machine until it halts or maxInstructions full
// instructions have retired (0 means unbounded), returning the final
// snapshot.
func (e *Emulator) Run(maxInstructions int) (cpu.Snapshot, error) {
	for {
		snap, err := e.Step()
		if err != nil {
			return snap, err
		}
		if snap.Halted {
			return snap, nil
		}
		if maxInstructions > 0 && e.instructionCount >= maxInstructions {
			return snap, nil
		}
	}
}

// InstructionCount reports how many full instructions have retired.
func (e *Emulator) InstructionCount() int { return e.instructionCount }

// Snapshot returns the current register file by value.
func (e *Emulator) Snapshot() cpu.Snapshot { return e.state.Snapshot() }
