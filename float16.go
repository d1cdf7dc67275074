package darknet

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// PackedF16 is a row-major, interleaved pixel buffer of half precision
// values, the layout produced by fp16 camera and GPU pipelines
type PackedF16 struct {
	Pix      []float16.Float16
	Width    int
	Height   int
	Channels int
}

// PackedF16ToPlanar writes the half precision buffer p into the planar
// tensor dst.  Values are taken as already normalized
func PackedF16ToPlanar(p PackedF16, dst []float32) error {

	if err := checkPacked(len(p.Pix), p.Width, p.Height, p.Channels, len(dst)); err != nil {
		return err
	}

	remapToPlanar(p.Pix, dst, p.Channels, p.Height, p.Width, func(v float16.Float16) float32 {
		return f16LookupTable[v.Bits()]
	})

	return nil
}

// PlanarToPackedF16 converts the planar tensor src of shape c, h, w to a half
// precision packed buffer
func PlanarToPackedF16(src []float32, c, h, w int) (PackedF16, error) {

	if len(src) != c*h*w {
		return PackedF16{}, &ConversionError{Op: "from tensor", What: "elements",
			Want: c * h * w, Got: len(src)}
	}

	p := PackedF16{
		Pix:      make([]float16.Float16, len(src)),
		Width:    w,
		Height:   h,
		Channels: c,
	}

	remapToPacked(src, p.Pix, c, h, w, float16.Fromfloat32)

	return p, nil
}
