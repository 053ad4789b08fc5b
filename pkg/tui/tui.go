// Package tui has small helpers for drawing columned, colored terminal
// output: 24-bit color escapes, color gradients, usage bars, and
// human-readable byte sizes. Writers are passed in by the caller, which
// normally hands over a go-colorable stdout so output degrades cleanly
// on Windows.
package tui

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

const csi = "\x1b["

// Reset clears all colors and attributes.
const Reset = csi + "0m"

// RGB is a 24-bit terminal color.
type RGB struct {
	R, G, B uint8
}

// Foreground returns the escape sequence selecting c as the foreground
// color.
func (c RGB) Foreground() string {
	return fmt.Sprintf("%s38;2;%d;%d;%dm", csi, c.R, c.G, c.B)
}

// Gradient linearly interpolates between two colors. v is clamped to
// [0, 1].
func Gradient(a, b RGB, v float64) RGB {
	v = math.Max(0, math.Min(v, 1))
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + v*(float64(y)-float64(x))))
	}
	return RGB{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B)}
}

// HumanSize formats a byte count with binary prefixes, e.g. "12.25 KiB".
func HumanSize(n int64) string {
	num := float64(n)
	for _, unit := range []string{"", "Ki", "Mi", "Gi", "Ti", "Pi", "Ei", "Zi"} {
		if math.Abs(num) < 1024.0 {
			return fmt.Sprintf("%3.2f %sB", num, unit)
		}
		num /= 1024.0
	}
	return fmt.Sprintf("%.2f YiB", num)
}

// Align selects how a cell is justified within its column.
type Align int

const (
	Left Align = iota
	Right
	Center
)

// Column is a single fixed-width column.
type Column struct {
	Width int
	Align Align
}

// Columns lays out values into fixed-width columns. Color values (RGB
// or raw escape strings starting with ESC) passed to Draw are written
// through without consuming a column, mirroring how the cells and their
// colors interleave at the call site.
type Columns struct {
	cols []Column
}

func NewColumns(cols ...Column) *Columns {
	return &Columns{cols: cols}
}

// Width is the total character width of all columns.
func (c *Columns) Width() int {
	total := 0
	for _, col := range c.cols {
		total += col.Width
	}
	return total
}

// Draw writes one row. Cells beyond the defined columns are ignored.
func (c *Columns) Draw(w io.Writer, values ...interface{}) {
	n := 0
	for _, v := range values {
		switch v := v.(type) {
		case RGB:
			fmt.Fprint(w, v.Foreground())
		case string:
			if strings.HasPrefix(v, csi) {
				fmt.Fprint(w, v)
				continue
			}
			if n < len(c.cols) {
				fmt.Fprint(w, pad(c.cols[n], v))
				n++
			}
		default:
			if n < len(c.cols) {
				fmt.Fprint(w, pad(c.cols[n], fmt.Sprintf("%v", v)))
				n++
			}
		}
	}
	fmt.Fprint(w, Reset+"\n")
}

func pad(col Column, s string) string {
	spaces := col.Width - len([]rune(s))
	if spaces <= 0 {
		return s
	}
	switch col.Align {
	case Right:
		return strings.Repeat(" ", spaces) + s
	case Center:
		left := spaces / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", spaces-left)
	default:
		return s + strings.Repeat(" ", spaces)
	}
}

// Segment is one colored span of a Bar, sized as a fraction of the
// whole bar.
type Segment struct {
	Fraction float64
	Color    RGB
	Char     string
}

// Bar draws a horizontal usage bar out of colored segments. Any space
// not covered by the given segments is filled with a dim trailing
// segment.
type Bar struct {
	Width int
	Fill  bool
}

const (
	segmentChar = "▓"
	fillChar    = "░"
)

var fillColor = RGB{R: 102, G: 102, B: 102}

func NewBar(width int) *Bar {
	return &Bar{Width: width, Fill: true}
}

// Draw renders the bar and a trailing newline. Column widths are
// allocated with the largest remainder method so the segments always
// sum to exactly Width cells.
func (b *Bar) Draw(w io.Writer, segments ...Segment) {
	segs := make([]Segment, len(segments))
	copy(segs, segments)

	if b.Fill {
		used := 0.0
		for _, s := range segs {
			used += s.Fraction
		}
		segs = append(segs, Segment{Fraction: 1.0 - used, Color: fillColor, Char: fillChar})
	}

	lengths := make([]int, len(segs))
	type fract struct {
		idx int
		rem float64
	}
	fracts := make([]fract, len(segs))
	total := 0
	for i, s := range segs {
		exact := math.Max(0, s.Fraction) * float64(b.Width)
		lengths[i] = int(math.Floor(exact))
		fracts[i] = fract{idx: i, rem: exact - math.Floor(exact)}
		total += lengths[i]
	}
	sort.SliceStable(fracts, func(i, j int) bool { return fracts[i].rem > fracts[j].rem })
	for i := 0; i < b.Width-total && i < len(fracts); i++ {
		lengths[fracts[i].idx]++
	}

	var sb strings.Builder
	for i, s := range segs {
		ch := s.Char
		if ch == "" {
			ch = segmentChar
		}
		sb.WriteString(s.Color.Foreground())
		sb.WriteString(strings.Repeat(ch, lengths[i]))
	}
	sb.WriteString(Reset)
	sb.WriteString("\n")
	fmt.Fprint(w, sb.String())
}
