package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGradient(t *testing.T) {
	black := RGB{}
	white := RGB{R: 255, G: 255, B: 255}

	require.Equal(t, black, Gradient(black, white, 0))
	require.Equal(t, white, Gradient(black, white, 1))
	require.Equal(t, RGB{R: 128, G: 128, B: 128}, Gradient(black, white, 0.5))

	// Out of range values clamp.
	require.Equal(t, black, Gradient(black, white, -3))
	require.Equal(t, white, Gradient(black, white, 42))
}

func TestHumanSize(t *testing.T) {
	require.Equal(t, "512.00 B", HumanSize(512))
	require.Equal(t, "1.00 KiB", HumanSize(1024))
	require.Equal(t, "12.25 KiB", HumanSize(12544))
	require.Equal(t, "2.00 MiB", HumanSize(2*1024*1024))
}

func TestColumnsDraw(t *testing.T) {
	cols := NewColumns(Column{Width: 6, Align: Left}, Column{Width: 6, Align: Right})
	var sb strings.Builder
	cols.Draw(&sb, "abc", "def")
	require.Equal(t, "abc      def"+Reset+"\n", sb.String())
}

func TestColumnsColorsDoNotConsumeColumns(t *testing.T) {
	cols := NewColumns(Column{Width: 3, Align: Left})
	var sb strings.Builder
	cols.Draw(&sb, RGB{R: 255}, "x")
	require.Equal(t, RGB{R: 255}.Foreground()+"x  "+Reset+"\n", sb.String())
}

func TestColumnsWidth(t *testing.T) {
	cols := NewColumns(Column{Width: 10}, Column{Width: 5})
	require.Equal(t, 15, cols.Width())
}

func TestBarDrawFillsExactly(t *testing.T) {
	bar := NewBar(10)
	var sb strings.Builder
	bar.Draw(&sb, Segment{Fraction: 0.25, Color: RGB{R: 255}})

	// 0.25 of 10 is 2.5; the largest remainder method rounds the first
	// segment up so the bar still fills exactly.
	out := sb.String()
	require.Equal(t, 10, strings.Count(out, segmentChar)+strings.Count(out, fillChar))
	require.Equal(t, 3, strings.Count(out, segmentChar))
	require.Equal(t, 7, strings.Count(out, fillChar))
}

func TestBarLargestRemainder(t *testing.T) {
	// Three thirds of a 10-wide bar cannot split evenly; the largest
	// remainders pick up the leftover cells.
	bar := &Bar{Width: 10}
	var sb strings.Builder
	bar.Draw(&sb,
		Segment{Fraction: 1.0 / 3, Color: RGB{R: 255}},
		Segment{Fraction: 1.0 / 3, Color: RGB{G: 255}},
		Segment{Fraction: 1.0 / 3, Color: RGB{B: 255}},
	)
	require.Equal(t, 10, strings.Count(sb.String(), segmentChar))
}

func TestBarOverfullClamps(t *testing.T) {
	bar := NewBar(10)
	var sb strings.Builder
	// More than 100% leaves no room for the fill segment but must not
	// panic.
	bar.Draw(&sb, Segment{Fraction: 1.2, Color: RGB{R: 255}})
	require.NotEmpty(t, sb.String())
}
