package darknet

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/swdee/go-darknet/engine"
)

// PixelFormat is the channel layout of a Go image converted to or from an
// Image, its value is the channel count
type PixelFormat int

const (
	Gray      PixelFormat = 1
	GrayAlpha PixelFormat = 2
	RGB       PixelFormat = 3
	RGBA      PixelFormat = 4
)

// Channels returns the number of channels of the format
func (f PixelFormat) Channels() int {
	return int(f)
}

// String returns a readable name of the format
func (f PixelFormat) String() string {
	switch f {
	case Gray:
		return "Gray"
	case GrayAlpha:
		return "GrayAlpha"
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	default:
		return "UNKNOW"
	}
}

// valid reports whether f is a known format
func (f PixelFormat) valid() bool {
	return f >= Gray && f <= RGBA
}

// ImageFromGo converts a Go image into an Image with the channels of format
// f.  16 bit sources keep their precision
func ImageFromGo(eng engine.Engine, src image.Image, f PixelFormat) (*Image, error) {

	if !f.valid() {
		return nil, &ConversionError{Op: "from go image", What: "channels", Want: int(RGB), Got: int(f)}
	}

	b := src.Bounds()

	switch src.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		packed := NewPacked[uint16](b.Dx(), b.Dy(), f.Channels())
		fillPacked16(packed, src, f)

		return packedToImage(eng, packed)
	}

	packed := NewPacked[uint8](b.Dx(), b.Dy(), f.Channels())
	fillPacked8(packed, src, f)

	return packedToImage(eng, packed)
}

// packedToImage allocates an engine image and fills it from p
func packedToImage[T Subpixel](eng engine.Engine, p Packed[T]) (*Image, error) {

	img := Zeros(eng, p.Width, p.Height, p.Channels)

	if err := PackedToPlanar(p, img.Data()); err != nil {
		img.Close()
		return nil, err
	}

	return img, nil
}

// fillPacked8 copies src into p through an NRGBA image
func fillPacked8(p Packed[uint8], src image.Image, f PixelFormat) {

	var nrgba *image.NRGBA

	if f == Gray || f == GrayAlpha {
		nrgba = imaging.Grayscale(src)
	} else {
		nrgba = imaging.Clone(src)
	}

	for i, j := 0, 0; i < len(nrgba.Pix); i, j = i+4, j+p.Channels {
		switch f {
		case Gray:
			p.Pix[j] = nrgba.Pix[i]
		case GrayAlpha:
			p.Pix[j] = nrgba.Pix[i]
			p.Pix[j+1] = nrgba.Pix[i+3]
		case RGB:
			copy(p.Pix[j:j+3], nrgba.Pix[i:i+3])
		case RGBA:
			copy(p.Pix[j:j+4], nrgba.Pix[i:i+4])
		}
	}
}

// fillPacked16 copies src into p through an NRGBA64 image
func fillPacked16(p Packed[uint16], src image.Image, f PixelFormat) {

	b := src.Bounds()
	nrgba := image.NewNRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)

	j := 0

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := nrgba.NRGBA64At(x, y)

			switch f {
			case Gray, GrayAlpha:
				g := color.Gray16Model.Convert(c).(color.Gray16)
				p.Pix[j] = g.Y

				if f == GrayAlpha {
					p.Pix[j+1] = c.A
				}
			case RGB:
				p.Pix[j], p.Pix[j+1], p.Pix[j+2] = c.R, c.G, c.B
			case RGBA:
				p.Pix[j], p.Pix[j+1], p.Pix[j+2], p.Pix[j+3] = c.R, c.G, c.B, c.A
			}

			j += p.Channels
		}
	}
}

// ToGo converts the image to an 8 bit Go image.  Gray returns an
// *image.Gray, the other formats an *image.NRGBA.  The image must have the
// channel count of f
func (i *Image) ToGo(f PixelFormat) (image.Image, error) {

	p, err := toPacked[uint8](i, f)

	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, p.Width, p.Height)

	if f == Gray {
		return &image.Gray{Pix: p.Pix, Stride: p.Width, Rect: rect}, nil
	}

	out := image.NewNRGBA(rect)

	for src, dst := 0, 0; dst < len(out.Pix); src, dst = src+p.Channels, dst+4 {
		switch f {
		case GrayAlpha:
			out.Pix[dst], out.Pix[dst+1], out.Pix[dst+2] = p.Pix[src], p.Pix[src], p.Pix[src]
			out.Pix[dst+3] = p.Pix[src+1]
		case RGB:
			copy(out.Pix[dst:dst+3], p.Pix[src:src+3])
			out.Pix[dst+3] = 0xff
		case RGBA:
			copy(out.Pix[dst:dst+4], p.Pix[src:src+4])
		}
	}

	return out, nil
}

// ToGo16 converts the image to a 16 bit Go image.  Gray returns an
// *image.Gray16, the other formats an *image.NRGBA64
func (i *Image) ToGo16(f PixelFormat) (image.Image, error) {

	p, err := toPacked[uint16](i, f)

	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, p.Width, p.Height)

	if f == Gray {
		out := image.NewGray16(rect)

		for j, v := range p.Pix {
			out.Pix[j*2] = uint8(v >> 8)
			out.Pix[j*2+1] = uint8(v)
		}

		return out, nil
	}

	out := image.NewNRGBA64(rect)

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			px := p.Pix[(y*p.Width+x)*p.Channels:]
			c := color.NRGBA64{A: 0xffff}

			switch f {
			case GrayAlpha:
				c.R, c.G, c.B, c.A = px[0], px[0], px[0], px[1]
			case RGB:
				c.R, c.G, c.B = px[0], px[1], px[2]
			case RGBA:
				c.R, c.G, c.B, c.A = px[0], px[1], px[2], px[3]
			}

			out.SetNRGBA64(x, y, c)
		}
	}

	return out, nil
}

// toPacked checks the channel count against f and converts the tensor
func toPacked[T Subpixel](i *Image, f PixelFormat) (Packed[T], error) {

	c, h, w := i.Shape()

	if !f.valid() || c != f.Channels() {
		return Packed[T]{}, &ConversionError{Op: "to go image " + f.String(), What: "channels",
			Want: f.Channels(), Got: c}
	}

	return PlanarToPacked[T](i.Data(), c, h, w)
}
