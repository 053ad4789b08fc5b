// Package buildgen generates ninja build files for Winterbloom firmware
// projects from a small yaml manifest. It bakes in the compiler and
// linker configuration for the Cortex-M parts used across the product
// line, plus a desktop profile used for running firmware tests on the
// host.
package buildgen

import (
	"fmt"
	"sort"
	"strings"
)

// Toolchain binaries.
const (
	GCC        = "arm-none-eabi-gcc"
	Objcopy    = "arm-none-eabi-objcopy"
	DesktopGCC = "gcc"
)

// MCU describes the toolchain configuration for one target processor.
type MCU struct {
	Name        string
	CC          string
	Objcopy     string
	Family      string
	CommonFlags []string
	CCFlags     []string
	LDFlags     []string
	Defines     map[string]string
}

var commonCortexMFlags = []string{
	// Select C11 + GNU extensions as the program's C dialect.
	"--std=gnu11",
	// Use newlib-nano, a very minimal libc.
	"--specs=nano.specs",
	// Cortex-M CPUs only support the Thumb instruction set.
	"-mthumb",
	// ARM's EABI with variable-length enums.
	"-mabi=aapcs",
	// char is always unsigned, bitfields are unsigned, enums use the
	// smallest type that holds their values.
	"-funsigned-char -funsigned-bitfields -fshort-enums",
	// Per-symbol sections so the linker can cull unused code.
	"-fdata-sections -ffunction-sections",
	// Ninja runs gcc without a tty; force color diagnostics anyway.
	"-fdiagnostics-color=always",
}

var cortexMCCFlags = []string{
	"-W -Wall -Wextra -Werror -Wshadow -Wdouble-promotion -Wformat=2 -Wundef",
}

var cortexMLDFlags = []string{
	// Cull unused sections.
	"-Wl,--gc-sections",
	// Output a link map, helpful when debugging.
	"-Wl,-Map=$builddir/link.map",
}

func cortexM(name, cpu, floatABI, fpu, family string, defines map[string]string) MCU {
	flags := []string{
		fmt.Sprintf("-mcpu=%s", cpu),
		fmt.Sprintf("-mfloat-abi=%s", floatABI),
		fmt.Sprintf("-mfpu=%s", fpu),
	}
	flags = append(flags, commonCortexMFlags...)

	return MCU{
		Name:        name,
		CC:          GCC,
		Objcopy:     Objcopy,
		Family:      family,
		CommonFlags: flags,
		CCFlags:     cortexMCCFlags,
		LDFlags:     cortexMLDFlags,
		Defines:     defines,
	}
}

var mcus = map[string]MCU{
	"samd21": cortexM("samd21", "cortex-m0plus", "soft", "auto", "SAMD21", map[string]string{
		// Used in third_party code, like libwinter, to detect SAM D variants.
		"SAMD21": "1",
		// Used in CMSIS math headers.
		"ARM_MATH_CM0PLUS": "1",
	}),
	"samd51": cortexM("samd51", "cortex-m4", "hard", "fpv4-sp-d16", "SAMD51", map[string]string{
		"SAMD51":       "1",
		"ARM_MATH_CM4": "1",
	}),
	"desktop": {
		Name:    "desktop",
		CC:      DesktopGCC,
		CommonFlags: []string{
			"-funsigned-char -fshort-enums",
			"-fdiagnostics-color=always",
		},
		CCFlags: []string{
			"-W -Wall -Wextra -Werror -Wformat=2 -Wundef",
		},
	},
}

// MCUByName looks up a target profile. Names are case-insensitive.
func MCUByName(name string) (MCU, error) {
	mcu, ok := mcus[strings.ToLower(name)]
	if !ok {
		return MCU{}, fmt.Errorf("buildgen: unknown mcu %q, known: %s", name, strings.Join(MCUNames(), ", "))
	}
	return mcu, nil
}

// MCUNames lists the known target profiles.
func MCUNames() []string {
	names := make([]string, 0, len(mcus))
	for name := range mcus {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatIncludes renders include directories as gcc -I arguments.
func FormatIncludes(includes []string) string {
	parts := make([]string, len(includes))
	for i, inc := range includes {
		parts[i] = "-I" + inc
	}
	return strings.Join(parts, " ")
}

// FormatDefines renders defines as gcc -D arguments in sorted order.
func FormatDefines(defines map[string]string) string {
	keys := make([]string, 0, len(defines))
	for k := range defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("-D%s=%s", k, defines[k])
	}
	return strings.Join(parts, " ")
}
