// Package fwsize analyzes firmware memory usage. It runs the
// toolchain's size program over an ELF, derives how much flash and RAM
// the firmware occupies, tracks deltas against the previous build, and
// renders the result as colored usage bars.
package fwsize

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultSizeTool is the binutils size program for ARM targets.
const DefaultSizeTool = "arm-none-eabi-size"

// Analysis is the breakdown of one ELF's memory usage.
type Analysis struct {
	// Bootloader is the flash reserved before the program, taken from
	// .text's load address.
	Bootloader int64 `json:"bootloader_size"`
	// Program is the flash occupied by code and initialized data.
	Program int64 `json:"program_size"`
	// Stack is the RAM reserved for the stack.
	Stack int64 `json:"stack_size"`
	// Variables is the RAM occupied by initialized and zeroed data.
	Variables int64 `json:"variables_size"`

	Sections map[string]int64 `json:"sections"`
}

// Analyze runs sizeTool on the ELF and parses the result. An empty
// sizeTool uses DefaultSizeTool.
func Analyze(elfPath, sizeTool string) (*Analysis, error) {
	if sizeTool == "" {
		sizeTool = DefaultSizeTool
	}
	out, err := exec.Command(sizeTool, "-A", "-d", elfPath).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s on %s: %w", sizeTool, elfPath, err)
	}
	return ParseSizeOutput(out)
}

// ParseSizeOutput parses `size -A -d` sysv-style output.
func ParseSizeOutput(out []byte) (*Analysis, error) {
	a := &Analysis{Sections: map[string]int64{}}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], ".") {
			continue
		}

		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		a.Sections[fields[0]] = size

		// .text's load address doubles as the bootloader size: the
		// program is linked to start right after it.
		if fields[0] == ".text" && len(fields) >= 3 {
			addr, err := strconv.ParseInt(fields[2], 10, 64)
			if err == nil {
				a.Bootloader = addr
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	text, ok := a.Sections[".text"]
	if !ok {
		return nil, fmt.Errorf("fwsize: no .text section in size output")
	}

	a.Program = text + a.Sections[".relocate"] + a.Sections[".data"]
	a.Stack = a.Sections[".stack"]
	a.Variables = a.Sections[".relocate"] + a.Sections[".data"] + a.Sections[".bss"]
	return a, nil
}
