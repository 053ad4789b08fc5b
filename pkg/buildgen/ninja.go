package buildgen

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
)

// ninjaTemplate renders the full build file. Ninja's own $variables are
// plain text to Go's template engine, so the two syntaxes coexist.
const ninjaTemplate = `# Generated by wt buildgen. Do not edit; edit {{ .Manifest }} instead.

builddir = ./build

cc_flags = {{ join " " .CommonFlags }} {{ join " " .CCFlags }}
cc_includes = {{ .Includes }}
cc_defines = {{ .Defines }}
ld_flags = {{ join " " .CommonFlags }} {{ join " " .LDFlags }}

rule cc
  command = {{ .CC }} $cc_flags $cc_includes $cc_defines -MMD -MT $out -MF $out.d -c $in -o $out
  depfile = $out.d
  deps = gcc
  description = Compile $in

rule ld
  command = {{ .CC }} $ld_flags $in -o $out
  description = Link $out
{{ if .Objcopy }}
rule elf_to_bin
  command = {{ .Objcopy }} -O binary $in $out
  description = Create $out

rule bin_to_uf2
  command = wt uf2 from-bin{{ if .Family }} --family {{ .Family }}{{ end }} $in $out
  description = Create $out
{{ end }}
rule runcmd_arg_in
  command = $cmd $in $append
  description = $desc $in

{{ range .Objects }}build {{ .Object }}: cc {{ .Source }}
{{ end }}
build build/{{ .Name }}{{ .ProgramExt }}: ld {{ .ObjectList }}
{{ if .Objcopy }}
build build/{{ .Name }}.bin: elf_to_bin build/{{ .Name }}.elf

build build/{{ .Name }}.uf2: bin_to_uf2 build/{{ .Name }}.bin
{{ end }}{{ if .SizeCmd }}
build size.phony: runcmd_arg_in $builddir/{{ .Name }}.elf
  cmd = {{ .SizeCmd }}
  desc = Size

build size: phony size.phony
{{ end }}`

type objectBuild struct {
	Source string
	Object string
}

type ninjaData struct {
	Manifest    string
	Name        string
	CC          string
	Objcopy     string
	Family      string
	ProgramExt  string
	CommonFlags []string
	CCFlags     []string
	LDFlags     []string
	Includes    string
	Defines     string
	Objects     []objectBuild
	ObjectList  string
	SizeCmd     string
}

// Generate renders a ninja build file for the project.
func Generate(w io.Writer, p *Project) error {
	mcu, err := MCUByName(p.MCU)
	if err != nil {
		return err
	}

	srcs, err := p.ExpandSources()
	if err != nil {
		return err
	}

	objects := make([]objectBuild, len(srcs))
	objectPaths := make([]string, len(srcs))
	for i, src := range srcs {
		obj := "$builddir/" + removeRelativeParts(strings.TrimSuffix(src, filepath.Ext(src))+".o")
		objects[i] = objectBuild{Source: src, Object: obj}
		objectPaths[i] = obj
	}

	ldFlags := append([]string{}, mcu.LDFlags...)
	if p.LinkerScript != "" {
		ldFlags = append(ldFlags, "-T"+p.LinkerScript)
	}

	data := ninjaData{
		Manifest:    DefaultManifest,
		Name:        p.Name,
		CC:          mcu.CC,
		Objcopy:     mcu.Objcopy,
		Family:      mcu.Family,
		ProgramExt:  ".elf",
		CommonFlags: mcu.CommonFlags,
		CCFlags:     mcu.CCFlags,
		LDFlags:     ldFlags,
		Includes:    FormatIncludes(p.IncludeDirs(srcs)),
		Defines:     FormatDefines(p.AllDefines(mcu)),
		Objects:     objects,
		ObjectList:  strings.Join(objectPaths, " "),
	}
	if mcu.Objcopy == "" {
		data.ProgramExt = ""
	}
	if p.FlashSize > 0 && p.RAMSize > 0 {
		data.SizeCmd = fmt.Sprintf("wt size --flash-size %d --ram-size %d", p.FlashSize, p.RAMSize)
	}

	tmpl, err := template.New("ninja").Funcs(sprig.TxtFuncMap()).Parse(ninjaTemplate)
	if err != nil {
		return fmt.Errorf("parse build template: %w", err)
	}
	return tmpl.Execute(w, data)
}

// removeRelativeParts drops any ".." segments so object files for
// out-of-tree sources still land under the build directory.
func removeRelativeParts(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != ".." {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}
