package buildgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testManifest = `name: castor
mcu: samd21
variant: SAMD21G18A
sources:
  - src/*.c
  - third_party/tinyusb/usb.c
defines:
  DEBUG: "0"
linker-script: scripts/samd21g18a.ld
flash-size: 262144
ram-size: 32768
`

func writeTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	for _, name := range []string{"main.c", "adc.c"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "src", name), []byte("//\n"), 0o644))
	}
	manifest := filepath.Join(dir, DefaultManifest)
	require.NoError(t, os.WriteFile(manifest, []byte(testManifest), 0o644))
	return manifest
}

func TestLoadProject(t *testing.T) {
	manifest := writeTestProject(t)
	p, err := LoadProject(manifest)
	require.NoError(t, err)
	require.Equal(t, "castor", p.Name)
	require.Equal(t, "samd21", p.MCU)
	require.Equal(t, 262144, p.FlashSize)
}

func TestLoadProjectRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, DefaultManifest)
	require.NoError(t, os.WriteFile(manifest, []byte("name: x\nmcu: samd21\nsources: [a.c]\nbogus: true\n"), 0o644))
	_, err := LoadProject(manifest)
	require.Error(t, err)
}

func TestLoadProjectValidates(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, DefaultManifest)
	require.NoError(t, os.WriteFile(manifest, []byte("name: x\nmcu: samd21\n"), 0o644))
	_, err := LoadProject(manifest)
	require.ErrorContains(t, err, "sources")
}

func TestExpandSources(t *testing.T) {
	manifest := writeTestProject(t)
	p, err := LoadProject(manifest)
	require.NoError(t, err)

	srcs, err := p.ExpandSources()
	require.NoError(t, err)
	require.Equal(t, []string{"src/adc.c", "src/main.c", "third_party/tinyusb/usb.c"}, srcs)
}

func TestExpandSourcesNoMatch(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, DefaultManifest)
	require.NoError(t, os.WriteFile(manifest, []byte("name: x\nmcu: samd21\nsources: ['*.c']\n"), 0o644))
	p, err := LoadProject(manifest)
	require.NoError(t, err)

	_, err = p.ExpandSources()
	require.ErrorContains(t, err, "no files match")
}

func TestAllDefines(t *testing.T) {
	manifest := writeTestProject(t)
	p, err := LoadProject(manifest)
	require.NoError(t, err)
	mcu, err := MCUByName(p.MCU)
	require.NoError(t, err)

	defines := p.AllDefines(mcu)
	require.Equal(t, "1", defines["SAMD21"])
	require.Equal(t, "1", defines["__SAMD21G18A__"])
	require.Equal(t, "0", defines["DEBUG"])
}

func TestMCUByName(t *testing.T) {
	_, err := MCUByName("SAMD51")
	require.NoError(t, err)

	_, err = MCUByName("z80")
	require.ErrorContains(t, err, "unknown mcu")
}

func TestFormatHelpers(t *testing.T) {
	require.Equal(t, "-Isrc -Ithird_party", FormatIncludes([]string{"src", "third_party"}))
	require.Equal(t, "-DA=1 -DB=2", FormatDefines(map[string]string{"B": "2", "A": "1"}))
}

func TestGenerate(t *testing.T) {
	manifest := writeTestProject(t)
	p, err := LoadProject(manifest)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, Generate(&sb, p))
	out := sb.String()

	require.Contains(t, out, "rule cc")
	require.Contains(t, out, "command = arm-none-eabi-gcc $cc_flags")
	require.Contains(t, out, "-mcpu=cortex-m0plus")
	require.Contains(t, out, "build $builddir/src/main.o: cc src/main.c")
	require.Contains(t, out, "build $builddir/third_party/tinyusb/usb.o: cc third_party/tinyusb/usb.c")
	require.Contains(t, out, "build build/castor.elf: ld ")
	require.Contains(t, out, "build build/castor.uf2: bin_to_uf2 build/castor.bin")
	require.Contains(t, out, "--family SAMD21")
	require.Contains(t, out, "-Tscripts/samd21g18a.ld")
	require.Contains(t, out, "-D__SAMD21G18A__=1")
	require.Contains(t, out, "wt size --flash-size 262144 --ram-size 32768")
}

func TestGenerateDesktopHasNoBinaryFormats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.c"), []byte("//\n"), 0o644))
	manifest := filepath.Join(dir, DefaultManifest)
	require.NoError(t, os.WriteFile(manifest, []byte("name: tests\nmcu: desktop\nsources: [main.c]\n"), 0o644))
	p, err := LoadProject(manifest)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, Generate(&sb, p))
	out := sb.String()

	require.Contains(t, out, "build build/tests: ld ")
	require.NotContains(t, out, "elf_to_bin")
	require.NotContains(t, out, "uf2")
}

func TestVersionLess(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want bool
	}{
		{"10.2.0", "10.2.0", false},
		{"10.2.0", "10.2.1", true},
		{"9.3.1", "10.2.0", true},
		{"10.3", "10.2.0", false},
	} {
		got, err := versionLess(tc.a, tc.b)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s < %s", tc.a, tc.b)
	}
}
