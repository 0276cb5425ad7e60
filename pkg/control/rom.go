package control

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/arnevogel/bb8cpu/pkg/opcode"
)

// ROMSize is the number of addressable entries in each control ROM slice
// (2^17), matching the breadboard's 17-bit address bus.
const ROMSize = 1 << 17

// Address bit positions, fixed by the breadboard's PCB wiring.
const (
	pinOpcode0      = 0
	pinHighSlice    = 10
	pinFlagZero     = 11
	pinFlagCarry    = 9
	pinFlagOverflow = 8
	pinFlagSign     = 13
	pinStep0        = 12
	pinStep1        = 15
	pinStep2        = 16
	pinStep3        = 14
)

// Addr packs one control ROM lookup's inputs into its 17-bit address.
func Addr(step uint8, zf, cf, of, sf bool, op8 opcode.Opcode, highSlice bool) uint32 {
	a := uint32(op8) << pinOpcode0 // opcode occupies bits 0-7 directly
	a |= bitU(zf) << pinFlagZero
	a |= bitU(cf) << pinFlagCarry
	a |= bitU(of) << pinFlagOverflow
	a |= bitU(sf) << pinFlagSign
	a |= uint32(step&0x1) << pinStep0
	a |= uint32((step>>1)&0x1) << pinStep1
	a |= uint32((step>>2)&0x1) << pinStep2
	a |= uint32((step>>3)&0x1) << pinStep3
	a |= bitU(highSlice) << pinHighSlice
	return a & 0x1ffff
}

func bitU(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func decodeAddr(addr uint32) (step uint8, zf, cf, of, sf bool, op8 opcode.Opcode, highSlice bool) {
	step = uint8((addr>>pinStep3)&1<<3 | (addr>>pinStep2)&1<<2 | (addr>>pinStep1)&1<<1 | (addr>>pinStep0)&1)
	zf = (addr>>pinFlagZero)&1 != 0
	cf = (addr>>pinFlagCarry)&1 != 0
	of = (addr>>pinFlagOverflow)&1 != 0
	sf = (addr>>pinFlagSign)&1 != 0
	op8 = opcode.Opcode(addr & 0xff)
	highSlice = (addr>>pinHighSlice)&1 != 0
	return
}

// Eval computes the ROM byte stored at addr for the slice addr selects.
func Eval(addr uint32) uint8 {
	step, zf, cf, of, sf, op8, highSlice := decodeAddr(addr)
	signals := signalsFromInput(step, zf, cf, of, sf, op8)
	if highSlice {
		return uint8(signals.High())
	}
	return uint8(signals.Low())
}

// Generate fills table with Eval(addr) for every address in [0, ROMSize),
// splitting work across runtime.NumCPU() goroutines over disjoint address
// ranges, mirroring pkg/alu.Generate's worker-pool shape.
func Generate(table []byte) error {
	if len(table) != ROMSize {
		return fmt.Errorf("control: Generate requires a %d-byte slice, got %d", ROMSize, len(table))
	}

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	chunk := (ROMSize + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= ROMSize {
			break
		}
		if end > ROMSize {
			end = ROMSize
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for addr := start; addr < end; addr++ {
				table[addr] = Eval(uint32(addr))
			}
		}(start, end)
	}
	wg.Wait()
	return nil
}
