package darknet

import (
	"math"
)

// Subpixel is the type of a single channel value of a packed pixel buffer
type Subpixel interface {
	uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Packed is a row-major pixel buffer with interleaved channels, the layout
// used by image decoders and gocv.Mat.  Pix holds Width*Height*Channels
// values where the value of channel c at x, y is at c + Channels*x +
// Channels*Width*y
type Packed[T Subpixel] struct {
	Pix      []T
	Width    int
	Height   int
	Channels int
}

// NewPacked returns a zeroed packed buffer
func NewPacked[T Subpixel](w, h, c int) Packed[T] {
	return Packed[T]{
		Pix:      make([]T, w*h*c),
		Width:    w,
		Height:   h,
		Channels: c,
	}
}

// PackedToPlanar writes p into the planar tensor dst which must hold exactly
// Width*Height*Channels values.  Integer values are normalized to [0,1] by
// dividing by the maximum of their type, floats are copied as is.  A float32
// holds 24 bits of precision so uint32 and uint64 values lose their low bits
func PackedToPlanar[T Subpixel](p Packed[T], dst []float32) error {

	if err := checkPacked(len(p.Pix), p.Width, p.Height, p.Channels, len(dst)); err != nil {
		return err
	}

	remapToPlanar(p.Pix, dst, p.Channels, p.Height, p.Width, normalizer[T]())

	return nil
}

// PlanarToPacked converts the planar tensor src of shape c, h, w to a packed
// buffer.  Values are multiplied by the maximum of the target type, clamped
// to its range and truncated for integer types.  Values converted from
// uint32 or uint64 sources only keep 24 significant bits
func PlanarToPacked[T Subpixel](src []float32, c, h, w int) (Packed[T], error) {

	if len(src) != c*h*w {
		return Packed[T]{}, &ConversionError{Op: "from tensor", What: "elements",
			Want: c * h * w, Got: len(src)}
	}

	p := NewPacked[T](w, h, c)

	remapToPacked(src, p.Pix, c, h, w, denormalizer[T]())

	return p, nil
}

// checkPacked validates the lengths of a packed buffer and its destination
// tensor against the declared shape
func checkPacked(n, w, h, c, dst int) error {

	if n != w*h*c {
		return &ConversionError{Op: "to tensor", What: "packed elements", Want: w * h * c, Got: n}
	}

	if dst != n {
		return &ConversionError{Op: "to tensor", What: "tensor elements", Want: n, Got: dst}
	}

	return nil
}

// remapToPlanar moves each value from its interleaved position to its
// channel-major position
func remapToPlanar[T any](pix []T, dst []float32, c, h, w int, conv func(T) float32) {

	plane := h * w

	for y := 0; y < h; y++ {
		row := y * w * c

		for x := 0; x < w; x++ {
			px := row + x*c

			for k := 0; k < c; k++ {
				dst[k*plane+y*w+x] = conv(pix[px+k])
			}
		}
	}
}

// remapToPacked is the inverse of remapToPlanar
func remapToPacked[T any](src []float32, pix []T, c, h, w int, conv func(float32) T) {

	plane := h * w

	for y := 0; y < h; y++ {
		row := y * w * c

		for x := 0; x < w; x++ {
			px := row + x*c

			for k := 0; k < c; k++ {
				pix[px+k] = conv(src[k*plane+y*w+x])
			}
		}
	}
}

// subpixelMax returns the maximum value of an integer subpixel type, or zero
// for floating point types
func subpixelMax[T Subpixel]() float64 {

	var zero T

	switch any(zero).(type) {
	case uint8:
		return math.MaxUint8
	case uint16:
		return math.MaxUint16
	case uint32:
		return math.MaxUint32
	case uint64:
		return math.MaxUint64
	default:
		return 0
	}
}

// normalizer returns the function mapping a subpixel value into the tensor
func normalizer[T Subpixel]() func(T) float32 {

	maxVal := subpixelMax[T]()

	if maxVal == 0 {
		return func(v T) float32 {
			return float32(v)
		}
	}

	return func(v T) float32 {
		return float32(float64(v) / maxVal)
	}
}

// denormalizer returns the function mapping a tensor value to a subpixel
func denormalizer[T Subpixel]() func(float32) T {

	maxVal := subpixelMax[T]()

	if maxVal == 0 {
		return func(v float32) T {
			return T(v)
		}
	}

	// the largest float64 below 2^64, math.MaxUint64 itself rounds up to
	// 2^64 which overflows the conversion
	limit := maxVal

	if limit == math.MaxUint64 {
		limit = math.Nextafter(limit, 0)
	}

	return func(v float32) T {

		x := float64(v) * maxVal

		if !(x > 0) {
			return 0
		}

		if x >= limit {
			x = limit
		}

		return T(x)
	}
}
