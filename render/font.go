package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Alignment positions a label relative to its box
type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font holds the gocv text parameters used for box labels
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// padding between the text and its background box
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	Alignment Alignment
}

// DefaultFont returns white anti-aliased text left aligned to the box
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
	}
}

// Scaled returns a copy of the font sized for an image of the given width,
// DefaultFont suits images around 640 pixels wide
func (f Font) Scaled(width int) Font {

	if width <= 0 {
		return f
	}

	k := float64(width) / 640

	f.Scale *= k
	f.Thickness = max(1, int(float64(f.Thickness)*k+0.5))

	return f
}
