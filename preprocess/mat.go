package preprocess

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-darknet"
	"github.com/swdee/go-darknet/engine"
	"gocv.io/x/gocv"
)

// FromMat converts an 8 bit BGR or grayscale Mat, as read by gocv.IMRead or a
// VideoCapture, into a darknet Image with RGB or Gray channels
func FromMat(eng engine.Engine, src gocv.Mat) (*darknet.Image, error) {

	if src.Empty() {
		return nil, errors.Wrap(darknet.ErrConversion, "empty mat")
	}

	if src.Type() != gocv.MatTypeCV8UC3 && src.Type() != gocv.MatTypeCV8UC1 {
		return nil, errors.Wrapf(darknet.ErrConversion, "unsupported mat type %v", src.Type())
	}

	// a fresh Mat is always continuous
	rgb := gocv.NewMat()
	defer rgb.Close()

	if src.Channels() == 3 {
		gocv.CvtColor(src, &rgb, gocv.ColorBGRToRGB)
	} else {
		src.CopyTo(&rgb)
	}

	pix, err := rgb.DataPtrUint8()

	if err != nil {
		return nil, errors.Wrapf(darknet.ErrConversion, "mat data: %v", err)
	}

	p := darknet.Packed[uint8]{
		Pix:      pix,
		Width:    rgb.Cols(),
		Height:   rgb.Rows(),
		Channels: rgb.Channels(),
	}

	img := darknet.Zeros(eng, p.Width, p.Height, p.Channels)

	if err := darknet.PackedToPlanar(p, img.Data()); err != nil {
		img.Close()
		return nil, err
	}

	return img, nil
}

// ToMat converts a 3 channel RGB or 1 channel Image into an 8 bit BGR or
// grayscale Mat.  The caller must Close the returned Mat
func ToMat(img *darknet.Image) (gocv.Mat, error) {

	c, h, w := img.Shape()

	if c != 1 && c != 3 {
		return gocv.NewMat(), &darknet.ConversionError{Op: "to mat", What: "channels",
			Want: 3, Got: c}
	}

	p, err := darknet.PlanarToPacked[uint8](img.Data(), c, h, w)

	if err != nil {
		return gocv.NewMat(), err
	}

	mt := gocv.MatTypeCV8UC3

	if c == 1 {
		mt = gocv.MatTypeCV8UC1
	}

	// the Mat borrows p.Pix so it is copied out before returning
	view, err := gocv.NewMatFromBytes(h, w, mt, p.Pix)

	if err != nil {
		return gocv.NewMat(), errors.Wrapf(darknet.ErrConversion, "mat from bytes: %v", err)
	}

	defer view.Close()

	out := gocv.NewMat()

	if c == 3 {
		gocv.CvtColor(view, &out, gocv.ColorRGBToBGR)
	} else {
		view.CopyTo(&out)
	}

	return out, nil
}
