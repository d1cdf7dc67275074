package darknet

import (
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/swdee/go-darknet/engine"
	"github.com/swdee/go-darknet/postprocess"

	// register additional decoders with image.Decode used by imaging.Open
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a planar float tensor allocated by the darknet engine.  It must be
// released with Close
type Image struct {
	eng engine.Engine
	im  engine.Image
	// mutex and freed guard against releasing the tensor twice
	mutex sync.Mutex
	freed bool
}

// newImage takes ownership of an engine allocated image
func newImage(eng engine.Engine, im engine.Image) *Image {
	return &Image{
		eng: eng,
		im:  im,
	}
}

// Zeros returns a zero filled image of the given dimensions
func Zeros(eng engine.Engine, w, h, c int) *Image {
	return newImage(eng, eng.MakeImage(w, h, c))
}

// Open decodes an image file into a 3 channel RGB image.  EXIF orientation
// is applied.  Supports JPEG, PNG, GIF, BMP, TIFF and WebP
func Open(eng engine.Engine, path string) (*Image, error) {

	info, err := os.Stat(path)

	if err != nil {
		return nil, errors.Wrapf(ErrIO, "image file %s: %v", path, err)
	}

	if info.IsDir() {
		return nil, errors.Wrapf(ErrIO, "image file %s is a directory", path)
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))

	if err != nil {
		return nil, errors.Wrapf(ErrImageDecode, "decoding %s: %v", path, err)
	}

	return ImageFromGo(eng, src, RGB)
}

// handle returns the engine image, panicking if the image has been closed
func (i *Image) handle() engine.Image {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if i.freed {
		panic("darknet: use of closed Image")
	}

	return i.im
}

// Width returns the image width in pixels
func (i *Image) Width() int {
	return i.handle().W
}

// Height returns the image height in pixels
func (i *Image) Height() int {
	return i.handle().H
}

// Channels returns the number of channels
func (i *Image) Channels() int {
	return i.handle().C
}

// Shape returns the tensor shape as channels, height, width
func (i *Image) Shape() (c, h, w int) {
	im := i.handle()
	return im.C, im.H, im.W
}

// Data returns the planar tensor.  The slice aliases engine memory and must
// not be used after Close
func (i *Image) Data() []float32 {
	return i.handle().Data
}

// Resize returns a new image scaled to exactly w x h, the aspect ratio is not
// kept
func (i *Image) Resize(w, h int) *Image {
	return newImage(i.eng, i.eng.ResizeImage(i.handle(), w, h))
}

// LetterBox returns a new w x h image holding this image scaled with its
// aspect ratio kept and the border filled with gray
func (i *Image) LetterBox(w, h int) *Image {
	return newImage(i.eng, i.eng.LetterboxImage(i.handle(), w, h))
}

// CropBBox returns a new image of the region covered by the normalized
// bounding box.  The region is clamped to the image and is at least 1x1
func (i *Image) CropBBox(bbox postprocess.BBox) *Image {

	im := i.handle()
	r := bbox.Rect(im.W, im.H)

	return newImage(i.eng, i.eng.CropImage(im, r.Left, r.Top, r.Width(), r.Height()))
}

// Crop returns a new image of the pixel rectangle starting at left, top.  The
// rectangle is clamped to the image and is at least 1x1
func (i *Image) Crop(left, top, w, h int) *Image {

	im := i.handle()

	if im.W == 0 || im.H == 0 {
		return newImage(i.eng, i.eng.MakeImage(0, 0, im.C))
	}

	right := left + w
	bottom := top + h

	left = clampInt(left, 0, im.W-1)
	top = clampInt(top, 0, im.H-1)
	right = clampInt(right, left+1, im.W)
	bottom = clampInt(bottom, top+1, im.H)

	return newImage(i.eng, i.eng.CropImage(im, left, top, right-left, bottom-top))
}

// Clone returns a deep copy of the image
func (i *Image) Clone() *Image {
	return newImage(i.eng, i.eng.CopyImage(i.handle()))
}

// Close releases the tensor.  Calling Close more than once is safe
func (i *Image) Close() error {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if i.freed {
		return nil
	}

	i.eng.FreeImage(i.im)
	i.im = engine.Image{}
	i.freed = true

	return nil
}

// clampInt restricts val to the range lo..hi
func clampInt(val, lo, hi int) int {

	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}
