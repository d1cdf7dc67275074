package preprocess

import (
	"image"
	"image/color"

	"github.com/swdee/go-darknet/postprocess"
	"gocv.io/x/gocv"
)

// LetterBoxGray is the padding color darknet uses when letterboxing, its
// tensor value is 0.5
var LetterBoxGray = color.RGBA{R: 127, G: 127, B: 127, A: 255}

// Resizer scales source frames of a fixed size to the network input size.
// It is the Mat equivalent of darknet's letterbox_image and lets a video
// pipeline do the scaling in OpenCV once per frame
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// tempMat is a Mat used during the resize process
	tempMat gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewResizer returns a resizer used for scaling an image to the needed
// dimensions for input tensor size
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int) *Resizer {
	r := &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		tempMat:    gocv.NewMat(),
	}

	r.preCalc()

	return r
}

// Close frees memory allocated during resize process
func (r *Resizer) Close() error {
	return r.tempMat.Close()
}

// preCalc works out the scaled size and padding the same way darknet does,
// the longer side fills the destination and the other is rounded down
func (r *Resizer) preCalc() {

	r.resizeW = r.destWidth
	r.resizeH = r.destHeight

	scaleW := float32(r.destWidth) / float32(r.srcWidth)
	scaleH := float32(r.destHeight) / float32(r.srcHeight)

	if scaleW < scaleH {
		r.scale = scaleW
		r.resizeH = (r.srcHeight * r.destWidth) / r.srcWidth
	} else {
		r.scale = scaleH
		r.resizeW = (r.srcWidth * r.destHeight) / r.srcHeight
	}

	r.yPad = (r.destHeight - r.resizeH) / 2
	r.xPad = (r.destWidth - r.resizeW) / 2
}

// LetterBoxResize scales src into dest keeping its aspect ratio, the border
// is filled with clr
func (r *Resizer) LetterBoxResize(src gocv.Mat, dest *gocv.Mat, clr color.RGBA) {

	gocv.Resize(src, &r.tempMat, image.Pt(r.resizeW, r.resizeH),
		0, 0, gocv.InterpolationLinear)

	gocv.CopyMakeBorder(r.tempMat, dest, r.yPad, r.destHeight-r.resizeH-r.yPad,
		r.xPad, r.destWidth-r.resizeW-r.xPad, gocv.BorderConstant, clr)
}

// Resize stretches src to the destination size ignoring aspect ratio, as
// darknet's resize_image does
func (r *Resizer) Resize(src gocv.Mat, dest *gocv.Mat) {
	gocv.Resize(src, dest, image.Pt(r.destWidth, r.destHeight),
		0, 0, gocv.InterpolationLinear)
}

// Correct maps a box predicted on a letterboxed frame back to coordinates
// relative to the source frame
func (r *Resizer) Correct(b postprocess.BBox) postprocess.BBox {

	sx := float32(r.destWidth) / float32(r.resizeW)
	sy := float32(r.destHeight) / float32(r.resizeH)

	offX := float32(r.xPad) / float32(r.destWidth)
	offY := float32(r.yPad) / float32(r.destHeight)

	return postprocess.BBox{
		X: (b.X - offX) * sx,
		Y: (b.Y - offY) * sy,
		W: b.W * sx,
		H: b.H * sy,
	}
}

// ScaleFactor returns the scale factor used in letterbox resize
func (r *Resizer) ScaleFactor() float32 {
	return r.scale
}

// XPad returns the x padding used in letterbox resize
func (r *Resizer) XPad() int {
	return r.xPad
}

// YPad returns the y padding used in letterbox resize
func (r *Resizer) YPad() int {
	return r.yPad
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
