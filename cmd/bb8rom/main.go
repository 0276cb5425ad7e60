// Command bb8rom generates the three ROM images the breadboard CPU boots
// from: the two ALU slices and the control sequencer.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnevogel/bb8cpu/internal/romfile"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bb8rom",
		Short: "Generate the ALU and control ROM images for the breadboard CPU",
	}

	var outDir string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write alu_low.bin, alu_high.bin and control.bin into --out-dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Generating ROMs into %s\n", outDir)
			start := time.Now()

			aluLowPath, aluHighPath, controlPath, err := romfile.WriteTriple(outDir)
			if err != nil {
				return err
			}

			fmt.Printf("  %s\n", aluLowPath)
			fmt.Printf("  %s\n", aluHighPath)
			fmt.Printf("  %s\n", controlPath)
			fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	generateCmd.Flags().StringVar(&outDir, "out-dir", "roms", "Directory to write the three ROM files into")

	rootCmd.AddCommand(generateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
