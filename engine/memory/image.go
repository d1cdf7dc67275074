package memory

import (
	"github.com/swdee/go-darknet/engine"
)

// The image routines below follow darknet's image.c so that pipelines run on
// this engine see the same geometry as on libdarknet.

const kindImage = "image"

// MakeImage allocates a zero filled image
func (e *Engine) MakeImage(w, h, c int) engine.Image {

	if w < 0 || h < 0 || c < 0 {
		panic("memory: make_image with negative dimensions")
	}

	return engine.Image{
		W:    w,
		H:    h,
		C:    c,
		Data: e.alloc.floats(kindImage, w*h*c),
	}
}

// FreeImage releases an image
func (e *Engine) FreeImage(im engine.Image) {
	e.alloc.releaseFloats(kindImage, im.Data)
}

// CopyImage returns a deep copy of im
func (e *Engine) CopyImage(im engine.Image) engine.Image {
	out := e.MakeImage(im.W, im.H, im.C)
	copy(out.Data, im.Data)
	return out
}

// ResizeImage scales im to w x h using darknet's two pass bilinear filter
func (e *Engine) ResizeImage(im engine.Image, w, h int) engine.Image {

	if im.W == w && im.H == h {
		return e.CopyImage(im)
	}

	resized := e.MakeImage(w, h, im.C)

	// horizontal pass into a temporary image of w x im.H
	part := make([]float32, w*im.H*im.C)

	wScale := float32(0)
	if w > 1 {
		wScale = float32(im.W-1) / float32(w-1)
	}

	hScale := float32(0)
	if h > 1 {
		hScale = float32(im.H-1) / float32(h-1)
	}

	for k := 0; k < im.C; k++ {
		for r := 0; r < im.H; r++ {
			for c := 0; c < w; c++ {
				var val float32

				if c == w-1 || im.W == 1 {
					val = pixel(im, im.W-1, r, k)
				} else {
					sx := float32(c) * wScale
					ix := int(sx)
					dx := sx - float32(ix)
					val = (1-dx)*pixel(im, ix, r, k) + dx*pixel(im, ix+1, r, k)
				}

				part[k*im.H*w+r*w+c] = val
			}
		}
	}

	// vertical pass
	for k := 0; k < im.C; k++ {
		for r := 0; r < h; r++ {
			sy := float32(r) * hScale
			iy := int(sy)
			dy := sy - float32(iy)

			for c := 0; c < w; c++ {
				resized.Data[k*h*w+r*w+c] = (1 - dy) * part[k*im.H*w+iy*w+c]
			}

			if r == h-1 || im.H == 1 {
				continue
			}

			for c := 0; c < w; c++ {
				resized.Data[k*h*w+r*w+c] += dy * part[k*im.H*w+(iy+1)*w+c]
			}
		}
	}

	return resized
}

// LetterboxImage scales im to fit w x h keeping its aspect ratio and embeds
// it centered in an image filled with 0.5
func (e *Engine) LetterboxImage(im engine.Image, w, h int) engine.Image {

	newW := im.W
	newH := im.H

	if float32(w)/float32(im.W) < float32(h)/float32(im.H) {
		newW = w
		newH = (im.H * w) / im.W
	} else {
		newH = h
		newW = (im.W * h) / im.H
	}

	resized := e.ResizeImage(im, newW, newH)
	defer e.FreeImage(resized)

	boxed := e.MakeImage(w, h, im.C)

	for i := range boxed.Data {
		boxed.Data[i] = 0.5
	}

	dx := (w - newW) / 2
	dy := (h - newH) / 2

	for k := 0; k < resized.C; k++ {
		for y := 0; y < resized.H; y++ {
			for x := 0; x < resized.W; x++ {
				boxed.Data[k*h*w+(y+dy)*w+(x+dx)] = pixel(resized, x, y, k)
			}
		}
	}

	return boxed
}

// CropImage copies a w x h window starting at dx, dy.  Coordinates outside
// of im repeat the nearest edge pixel
func (e *Engine) CropImage(im engine.Image, dx, dy, w, h int) engine.Image {

	cropped := e.MakeImage(w, h, im.C)

	if im.W == 0 || im.H == 0 {
		return cropped
	}

	for k := 0; k < im.C; k++ {
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				r := constrain(j+dy, 0, im.H-1)
				c := constrain(i+dx, 0, im.W-1)
				cropped.Data[k*h*w+j*w+i] = pixel(im, c, r, k)
			}
		}
	}

	return cropped
}

// pixel returns the value at x, y in channel c
func pixel(im engine.Image, x, y, c int) float32 {
	return im.Data[c*im.H*im.W+y*im.W+x]
}

// constrain limits v to the range lo..hi
func constrain(v, lo, hi int) int {

	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
