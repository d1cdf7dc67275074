package postprocess

import (
	"math"
)

// BBox is a bounding box in normalized center form where X, Y are the box
// center and W, H its size, all relative to the image dimensions.  Values
// may fall outside of [0,1] for boxes that overhang the image edge
type BBox struct {
	X float32
	Y float32
	W float32
	H float32
}

// Left returns the x coordinate of the left edge
func (b BBox) Left() float32 {
	return b.X - b.W/2
}

// Right returns the x coordinate of the right edge
func (b BBox) Right() float32 {
	return b.X + b.W/2
}

// Top returns the y coordinate of the top edge
func (b BBox) Top() float32 {
	return b.Y - b.H/2
}

// Bottom returns the y coordinate of the bottom edge
func (b BBox) Bottom() float32 {
	return b.Y + b.H/2
}

// Area returns the box area
func (b BBox) Area() float32 {
	return b.W * b.H
}

// Rect converts the box to pixel coordinates of an image of the given
// dimensions.  Coordinates are truncated then clamped to the image extent and
// the resulting rectangle is at least 1x1 pixel, so a box lying entirely
// outside the image collapses onto the nearest edge.  Right and Bottom are
// exclusive
func (b BBox) Rect(width, height int) BoxRect {

	if width <= 0 || height <= 0 {
		return BoxRect{}
	}

	left := int(b.Left() * float32(width))
	top := int(b.Top() * float32(height))
	w := int(b.W * float32(width))
	h := int(b.H * float32(height))

	right := left + w
	bottom := top + h

	left = clampInt(left, 0, width-1)
	top = clampInt(top, 0, height-1)

	return BoxRect{
		Left:   left,
		Top:    top,
		Right:  clampInt(right, left+1, width),
		Bottom: clampInt(bottom, top+1, height),
	}
}

// overlap returns the length of the intersection of two 1D segments given by
// their centers and widths
func overlap(x1, w1, x2, w2 float32) float32 {

	left := max(x1-w1/2, x2-w2/2)
	right := min(x1+w1/2, x2+w2/2)

	return right - left
}

// intersection returns the intersecting area of two boxes
func intersection(a, b BBox) float32 {

	w := overlap(a.X, a.W, b.X, b.W)
	h := overlap(a.Y, a.H, b.Y, b.H)

	if w <= 0 || h <= 0 {
		return 0
	}

	return w * h
}

// IoU works out the Intersection over Union of two boxes
func IoU(a, b BBox) float32 {

	inter := intersection(a, b)
	union := a.Area() + b.Area() - inter

	if union <= 0 {
		return 0
	}

	return inter / union
}

// DIoU works out the Distance IoU of two boxes, the IoU penalized by the
// squared distance between the box centers relative to the squared diagonal
// of the smallest box enclosing both, raised to beta
func DIoU(a, b BBox, beta float32) float32 {

	iou := IoU(a, b)

	// enclosing box
	cw := max(a.Right(), b.Right()) - min(a.Left(), b.Left())
	ch := max(a.Bottom(), b.Bottom()) - min(a.Top(), b.Top())
	c := cw*cw + ch*ch

	if c == 0 {
		return iou
	}

	dx := a.X - b.X
	dy := a.Y - b.Y
	d := dx*dx + dy*dy

	return iou - float32(math.Pow(float64(d/c), float64(beta)))
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
