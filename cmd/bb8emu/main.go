// Command bb8emu boots a program image against a set of ROM files and
// runs the breadboard CPU's cycle-accurate emulator to completion.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnevogel/bb8cpu/internal/romfile"
	"github.com/arnevogel/bb8cpu/pkg/cpu"
	"github.com/arnevogel/bb8cpu/pkg/emulator"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bb8emu",
		Short: "Run a program against the breadboard CPU emulator",
	}

	var romDir string
	var clockHz int
	var maxInstructions int

	runCmd := &cobra.Command{
		Use:   "run <program-path>",
		Short: "Boot and run a program image until it halts or the instruction cap is reached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aluLow, aluHigh, controlROM, err := romfile.ReadTriple(romDir)
			if err != nil {
				return err
			}
			program, err := romfile.ReadProgram(args[0])
			if err != nil {
				return err
			}

			e, err := emulator.New(aluLow, aluHigh, controlROM, program, emulator.WithClockHz(clockHz))
			if err != nil {
				return err
			}

			snap, err := e.Run(maxInstructions)
			if err != nil {
				return fmt.Errorf("halted on invariant violation after %d instructions: %w", e.InstructionCount(), err)
			}

			printSummary(e, snap)
			return nil
		},
	}
	runCmd.Flags().StringVar(&romDir, "rom-dir", "roms", "Directory containing alu_low.bin, alu_high.bin and control.bin")
	runCmd.Flags().IntVar(&clockHz, "hz", 20, "Nominal clock rate in Hz (1-16000000)")
	runCmd.Flags().IntVar(&maxInstructions, "max-instructions", 0, "Stop after this many retired instructions (0 = run until halt)")

	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// register-file offsets into the top page of RAM, per RegAlias in
// pkg/control/signals.go.
const (
	regA = 0xfff0
	regB = 0xfff1
	regC = 0xfff2
	regD = 0xfff3
)

func printSummary(e *emulator.Emulator, snap cpu.Snapshot) {
	fmt.Printf("halted=%v instructions=%d\n", snap.Halted, e.InstructionCount())
	fmt.Printf("A=%#02x B=%#02x C=%#02x D=%#02x\n", e.Read(regA), e.Read(regB), e.Read(regC), e.Read(regD))
	fmt.Printf("flags: Z=%v C=%v O=%v S=%v\n", snap.Flags.Zero, snap.Flags.Carry, snap.Flags.Overflow, snap.Flags.Sign)
}
