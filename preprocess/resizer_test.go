package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swdee/go-darknet/postprocess"
	"gocv.io/x/gocv"
)

func TestLetterBoxResize(t *testing.T) {

	tests := []struct {
		srcWidth      int
		srcHeight     int
		resizeWidth   int
		resizeHeight  int
		expectedXPad  int
		expectedYPad  int
		expectedScale float32
	}{
		{1280, 720, 640, 640, 0, 140, 0.50},
		{800, 1000, 640, 640, 64, 0, 0.64},
		{800, 800, 640, 640, 0, 0, 0.8},
		{640, 480, 416, 416, 0, 52, 0.65},
	}

	for _, tc := range tests {
		img := gocv.NewMatWithSize(tc.srcHeight, tc.srcWidth, gocv.MatTypeCV8UC3)
		resizedImg := gocv.NewMat()

		resizer := NewResizer(tc.srcWidth, tc.srcHeight, tc.resizeWidth, tc.resizeHeight)
		resizer.LetterBoxResize(img, &resizedImg, LetterBoxGray)

		assert.Equal(t, tc.expectedXPad, resizer.XPad(), "src %dx%d", tc.srcWidth, tc.srcHeight)
		assert.Equal(t, tc.expectedYPad, resizer.YPad(), "src %dx%d", tc.srcWidth, tc.srcHeight)
		assert.InDelta(t, tc.expectedScale, resizer.ScaleFactor(), 1e-6)
		assert.Equal(t, tc.resizeWidth, resizedImg.Cols())
		assert.Equal(t, tc.resizeHeight, resizedImg.Rows())

		img.Close()
		resizedImg.Close()
		resizer.Close()
	}
}

func TestResize(t *testing.T) {

	img := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer img.Close()

	out := gocv.NewMat()
	defer out.Close()

	resizer := NewResizer(1280, 720, 416, 416)
	defer resizer.Close()

	resizer.Resize(img, &out)

	assert.Equal(t, 416, out.Cols())
	assert.Equal(t, 416, out.Rows())
}

func TestCorrect(t *testing.T) {

	// 1280x720 into 640x640 leaves 140 pixel bars top and bottom
	resizer := NewResizer(1280, 720, 640, 640)
	defer resizer.Close()

	full := postprocess.BBox{X: 0.5, Y: 0.5, W: 1, H: 360.0 / 640.0}
	got := resizer.Correct(full)

	assert.InDelta(t, 0.5, got.X, 1e-6)
	assert.InDelta(t, 0.5, got.Y, 1e-6)
	assert.InDelta(t, 1, got.W, 1e-6)
	assert.InDelta(t, 1, got.H, 1e-6)

	// top left corner of the picture area
	corner := postprocess.BBox{X: 0, Y: 140.0 / 640.0}
	got = resizer.Correct(corner)

	assert.InDelta(t, 0, got.X, 1e-6)
	assert.InDelta(t, 0, got.Y, 1e-6)
}
