package chart

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// namedColors covers the basic matplotlib names and single-letter codes.
var namedColors = map[string]string{
	"b":       "#1f77b4",
	"blue":    "#1f77b4",
	"g":       "#2ca02c",
	"green":   "#2ca02c",
	"r":       "#d62728",
	"red":     "#d62728",
	"c":       "#17becf",
	"cyan":    "#17becf",
	"m":       "#e377c2",
	"magenta": "#e377c2",
	"y":       "#bcbd22",
	"yellow":  "#bcbd22",
	"k":       "#000000",
	"black":   "#000000",
	"w":       "#ffffff",
	"white":   "#ffffff",
	"orange":  "#ff7f0e",
	"purple":  "#9467bd",
	"brown":   "#8c564b",
	"pink":    "#f7b6d2",
	"gray":    "#7f7f7f",
	"grey":    "#7f7f7f",
	"olive":   "#808000",
	"navy":    "#000080",
	"teal":    "#008080",
}

// ColorNames returns the accepted color names in a stable order.
func ColorNames() []string {
	return []string{"blue", "green", "red", "cyan", "magenta", "yellow", "black", "white",
		"orange", "purple", "brown", "pink", "gray", "olive", "navy", "teal"}
}

// ParseColor accepts a color name or a #rrggbb / #rgb hex string.
func ParseColor(s string) (colorful.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return colorful.Color{}, fmt.Errorf("color is empty")
	}
	if hex, ok := namedColors[v]; ok {
		v = hex
	}
	if !strings.HasPrefix(v, "#") {
		return colorful.Color{}, fmt.Errorf("unknown color %q", s)
	}
	if digits := v[1:]; (len(digits) != 3 && len(digits) != 6) || strings.Trim(digits, "0123456789abcdef") != "" {
		return colorful.Color{}, fmt.Errorf("invalid color %q: want #rgb or #rrggbb", s)
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// Hex normalises s to #rrggbb.
func Hex(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return c.Clamped().Hex(), nil
}

// hexOr returns Hex(s), or fallback when s does not parse.
func hexOr(s, fallback string) string {
	if h, err := Hex(s); err == nil {
		return h
	}
	return fallback
}

func drawingColor(s string) drawing.Color {
	c, err := ParseColor(s)
	if err != nil {
		return drawing.ColorBlack
	}
	r, g, b := c.Clamped().RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}
}

// defaultPalette assigns colors to folders configured without one.
var defaultPalette = []string{"blue", "orange", "green", "red", "purple", "brown", "pink", "gray", "olive", "cyan"}

// PaletteColor returns the i-th default series color, cycling.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return defaultPalette[i%len(defaultPalette)]
}
