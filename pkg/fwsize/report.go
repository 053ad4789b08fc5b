package fwsize

import (
	"fmt"
	"io"
	"math"

	"github.com/wntrblm/wintertools/pkg/tui"
)

var (
	fixedSegColor = tui.RGB{R: 255, G: 158, B: 221}
	gradientStart = tui.RGB{R: 51, G: 228, B: 255}
	gradientEnd   = tui.RGB{R: 214, G: 51, B: 255}
	plusColor     = tui.RGB{R: 255, G: 255, B: 128}
	minusColor    = tui.RGB{R: 127, G: 255, B: 191}
)

// Section is one row of a memory report. Fixed sections (bootloader,
// stack) are reserved space rather than program growth, so they get a
// steady color instead of the usage gradient.
type Section struct {
	Name     string
	Size     int64
	LastSize int64
	HasLast  bool
	Fixed    bool
}

// Report renders memory regions as colored columns and usage bars, in
// the style the firmware build scripts print after every link.
type Report struct {
	HumanReadable bool

	columns    *tui.Columns
	columnsAlt *tui.Columns
	bar        *tui.Bar
}

func NewReport(humanReadable bool) *Report {
	columns := tui.NewColumns(
		tui.Column{Width: 15, Align: tui.Left},
		tui.Column{Width: 10, Align: tui.Right},
		tui.Column{Width: 5, Align: tui.Center},
		tui.Column{Width: 10, Align: tui.Right},
		tui.Column{Width: 7, Align: tui.Right},
	)
	return &Report{
		HumanReadable: humanReadable,
		columns:       columns,
		columnsAlt: tui.NewColumns(
			tui.Column{Width: 15, Align: tui.Left},
			tui.Column{Width: 10, Align: tui.Right},
			tui.Column{Width: 13, Align: tui.Left},
			tui.Column{Width: 9, Align: tui.Right},
		),
		bar: tui.NewBar(columns.Width()),
	}
}

func colorForPercent(v float64) tui.RGB {
	return tui.Gradient(gradientStart, gradientEnd, v)
}

func (r *Report) size(n int64) string {
	if r.HumanReadable {
		return tui.HumanSize(n)
	}
	return fmt.Sprintf("%d", n)
}

// PrintRegion writes the usage summary for one memory region (Flash or
// RAM) made up of the given sections.
func (r *Report) PrintRegion(w io.Writer, name string, capacity int64, sections ...Section) {
	var used, usedFixed int64
	for _, s := range sections {
		used += s.Size
		if s.Fixed {
			usedFixed += s.Size
		}
	}
	usedPercent := float64(used) / float64(capacity)
	color := colorForPercent(usedPercent)

	r.columns.Draw(w,
		fmt.Sprintf("%s used:", name),
		color,
		r.size(used),
		tui.Reset,
		"/",
		r.size(capacity),
		color,
		fmt.Sprintf("(%d%%)", int(math.Round(usedPercent*100))),
	)

	r.bar.Draw(w,
		tui.Segment{Fraction: float64(usedFixed) / float64(capacity), Color: fixedSegColor},
		tui.Segment{Fraction: float64(used-usedFixed) / float64(capacity), Color: colorForPercent(usedPercent)},
	)

	for _, s := range sections {
		sectionColor := fixedSegColor
		if !s.Fixed {
			sectionColor = colorForPercent(float64(s.Size) / float64(capacity))
		}

		cells := []interface{}{
			sectionColor,
			fmt.Sprintf("%s: ", s.Name),
			r.size(s.Size),
		}
		if diff := s.Size - s.LastSize; s.HasLast && diff != 0 {
			diffColor := plusColor
			if diff < 0 {
				diffColor = minusColor
			}
			cells = append(cells, diffColor, fmt.Sprintf(" %+d", diff), tui.Reset)
		} else {
			cells = append(cells, "")
		}
		cells = append(cells, sectionColor, fmt.Sprintf("(%d%%)", int(math.Round(float64(s.Size)/float64(capacity)*100))))

		r.columnsAlt.Draw(w, cells...)
	}
}

// Print writes the full report: flash regions, then RAM regions.
func (r *Report) Print(w io.Writer, a *Analysis, flashSize, ramSize int64, last *LastSizes) {
	program := Section{Name: "Program", Size: a.Program}
	variables := Section{Name: "Variables", Size: a.Variables}
	if last != nil {
		program.LastSize, program.HasLast = last.ProgramSize, true
		variables.LastSize, variables.HasLast = last.VariablesSize, true
	}

	r.PrintRegion(w, "Flash", flashSize,
		Section{Name: "Bootloader", Size: a.Bootloader, Fixed: true},
		program,
	)
	fmt.Fprintln(w)
	fmt.Fprintln(w)
	r.PrintRegion(w, "RAM", ramSize,
		Section{Name: "Stack", Size: a.Stack, Fixed: true},
		variables,
	)
}
