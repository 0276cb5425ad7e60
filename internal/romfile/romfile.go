// Package romfile is the raw-file I/O glue shared by cmd/bb8rom and
// cmd/bb8emu: turning ROM/program bytes into files on disk and back. It is
// internal because pkg/* stays filesystem-free per the module's pure-core
// split (SPEC_FULL.md §2).
package romfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arnevogel/bb8cpu/pkg/alu"
	"github.com/arnevogel/bb8cpu/pkg/control"
)

// Names of the three ROM files a bb8rom generate run produces, and a
// bb8emu run consumes, inside a ROM directory.
const (
	ALULowName  = "alu_low.bin"
	ALUHighName = "alu_high.bin"
	ControlName = "control.bin"
)

// WriteROM writes data to path, creating or truncating it, and failing if
// data isn't exactly the expected ROM size — catching a short write before
// it becomes a silent truncated image on disk.
func WriteROM(path string, data []byte, wantSize int) error {
	if len(data) != wantSize {
		return fmt.Errorf("romfile: refusing to write %s: got %d bytes, want %d", path, len(data), wantSize)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadROM reads path and fails unless it is exactly wantSize bytes, the
// same check the three raw ROM files must satisfy per spec §6.
func ReadROM(path string, wantSize int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: reading %s: %w", path, err)
	}
	if len(data) != wantSize {
		return nil, fmt.Errorf("romfile: %s is %d bytes, want %d", path, len(data), wantSize)
	}
	return data, nil
}

// WriteTriple generates and writes all three ROM files into dir, creating
// dir if needed, and returns the three paths in ALU-low, ALU-high, control
// order.
func WriteTriple(dir string) (aluLowPath, aluHighPath, controlPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", "", fmt.Errorf("romfile: creating %s: %w", dir, err)
	}

	aluLow := make([]byte, alu.ROMSize)
	aluHigh := make([]byte, alu.ROMSize)
	if err := alu.Generate(aluLow, aluHigh); err != nil {
		return "", "", "", fmt.Errorf("romfile: generating alu roms: %w", err)
	}
	controlROM := make([]byte, control.ROMSize)
	if err := control.Generate(controlROM); err != nil {
		return "", "", "", fmt.Errorf("romfile: generating control rom: %w", err)
	}

	aluLowPath = filepath.Join(dir, ALULowName)
	aluHighPath = filepath.Join(dir, ALUHighName)
	controlPath = filepath.Join(dir, ControlName)

	if err := WriteROM(aluLowPath, aluLow, alu.ROMSize); err != nil {
		return "", "", "", err
	}
	if err := WriteROM(aluHighPath, aluHigh, alu.ROMSize); err != nil {
		return "", "", "", err
	}
	if err := WriteROM(controlPath, controlROM, control.ROMSize); err != nil {
		return "", "", "", err
	}
	return aluLowPath, aluHighPath, controlPath, nil
}

// ReadTriple reads the three conventionally-named ROM files back out of
// dir, in ALU-low, ALU-high, control order.
func ReadTriple(dir string) (aluLow, aluHigh, controlROM []byte, err error) {
	aluLow, err = ReadROM(filepath.Join(dir, ALULowName), alu.ROMSize)
	if err != nil {
		return nil, nil, nil, err
	}
	aluHigh, err = ReadROM(filepath.Join(dir, ALUHighName), alu.ROMSize)
	if err != nil {
		return nil, nil, nil, err
	}
	controlROM, err = ReadROM(filepath.Join(dir, ControlName), control.ROMSize)
	if err != nil {
		return nil, nil, nil, err
	}
	return aluLow, aluHigh, controlROM, nil
}

// ReadProgram reads a raw program image off disk; any size up to the RAM
// window is legal, Emulator.New does the size enforcement.
func ReadProgram(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: reading program %s: %w", path, err)
	}
	return data, nil
}
