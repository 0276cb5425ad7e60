package alu

import (
	"fmt"
	"runtime"
	"sync"
)

// ROMSize is the number of addressable entries in each ALU ROM slice
// (2^17), matching the breadboard's 17-bit address bus.
const ROMSize = 1 << 17

// Generate fills low and high with Eval(addr, false) / Eval(addr, true) for
// every address in [0, ROMSize), splitting the work across
// runtime.NumCPU() goroutines over disjoint address ranges. Unlike the
// superoptimizer's worker pool this needs no shared result table or mutex:
// each worker only ever writes to its own slice of low/high.
func Generate(low, high []byte) error {
	if len(low) != ROMSize || len(high) != ROMSize {
		return fmt.Errorf("alu: Generate requires %d-byte slices, got low=%d high=%d", ROMSize, len(low), len(high))
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
				low[addr] = Eval(uint32(addr), false)
				high[addr] = Eval(uint32(addr), true)
			}
		}(start, end)
	}
	wg.Wait()
	return nil
}
