package darknet

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-darknet/engine/memory"
)

func TestZeros(t *testing.T) {

	eng := memory.New()

	img := Zeros(eng, 4, 3, 2)

	c, h, w := img.Shape()
	assert.Equal(t, 2, c)
	assert.Equal(t, 3, h)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, img.Width())
	assert.Equal(t, 3, img.Height())
	assert.Equal(t, 2, img.Channels())
	assert.Equal(t, make([]float32, 24), img.Data())

	require.NoError(t, img.Close())
	assert.Equal(t, 0, eng.Stats().Live)
}

func TestImageCloseOnce(t *testing.T) {

	eng := memory.New()
	img := Zeros(eng, 2, 2, 3)

	require.NoError(t, img.Close())
	require.NoError(t, img.Close(), "second close is a no-op")

	assert.Panics(t, func() { img.Data() })
	assert.Panics(t, func() { img.Resize(1, 1) })

	s := eng.Stats()
	assert.Equal(t, 1, s.Frees)
	assert.Equal(t, 0, s.Live)
}

func TestGeometryReturnsNewImages(t *testing.T) {

	eng := memory.New()

	img := Zeros(eng, 4, 2, 1)
	for i := range img.Data() {
		img.Data()[i] = 1
	}

	resized := img.Resize(2, 2)
	boxed := img.LetterBox(4, 4)
	clone := img.Clone()

	assert.Equal(t, 2, resized.Width())
	assert.Equal(t, 4, boxed.Height())
	assert.Equal(t, float32(0.5), boxed.Data()[0], "letterbox border is gray")

	clone.Data()[0] = 9
	assert.Equal(t, float32(1), img.Data()[0], "clone must not alias")

	c, h, w := img.Shape()
	assert.Equal(t, []int{1, 2, 4}, []int{c, h, w}, "receiver untouched")

	for _, im := range []*Image{resized, boxed, clone, img} {
		require.NoError(t, im.Close())
	}

	assert.Equal(t, 0, eng.Stats().Live)
}

func TestCropBBox(t *testing.T) {

	eng := memory.New()

	img := Zeros(eng, 64, 48, 3)
	defer img.Close()

	tests := []struct {
		name  string
		bbox  BBox
		width int
		height int
	}{
		{"full frame", BBox{X: 0.5, Y: 0.5, W: 1, H: 1}, 64, 48},
		{"quarter", BBox{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}, 32, 24},
		{"overhang clamps", BBox{X: 1, Y: 1, W: 0.5, H: 0.5}, 16, 12},
		{"outside is 1x1", BBox{X: 3, Y: 3, W: 0.1, H: 0.1}, 1, 1},
		{"zero area is 1x1", BBox{X: 0.5, Y: 0.5}, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			crop := img.CropBBox(tc.bbox)
			defer crop.Close()

			assert.Equal(t, tc.width, crop.Width())
			assert.Equal(t, tc.height, crop.Height())
			assert.Equal(t, 3, crop.Channels())
		})
	}
}

func TestCropPixels(t *testing.T) {

	eng := memory.New()

	img := Zeros(eng, 3, 3, 1)
	defer img.Close()

	for i := range img.Data() {
		img.Data()[i] = float32(i)
	}

	crop := img.Crop(1, 1, 5, 5)
	defer crop.Close()

	assert.Equal(t, []float32{4, 5, 7, 8}, crop.Data())

	neg := img.Crop(-2, -2, 3, 3)
	defer neg.Close()

	assert.Equal(t, []float32{0}, neg.Data())
}

func TestGoImageRoundTrip(t *testing.T) {

	eng := memory.New()

	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	src.SetNRGBA(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	img, err := ImageFromGo(eng, src, RGBA)
	require.NoError(t, err)
	defer img.Close()

	c, h, w := img.Shape()
	assert.Equal(t, []int{4, 2, 3}, []int{c, h, w})
	// red plane, first pixel
	assert.Equal(t, float32(1), img.Data()[0])

	out, err := img.ToGo(RGBA)
	require.NoError(t, err)

	nrgba, ok := out.(*image.NRGBA)
	require.True(t, ok)

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			want := src.NRGBAAt(x, y)
			got := nrgba.NRGBAAt(x, y)

			assert.InDelta(t, want.R, got.R, 1)
			assert.InDelta(t, want.G, got.G, 1)
			assert.InDelta(t, want.B, got.B, 1)
			assert.InDelta(t, want.A, got.A, 1)
		}
	}

	_, err = img.ToGo(RGB)
	require.ErrorIs(t, err, ErrConversion)
}

func TestGoImageGray(t *testing.T) {

	eng := memory.New()

	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(1, 1, color.Gray{Y: 200})

	img, err := ImageFromGo(eng, src, Gray)
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, 1, img.Channels())
	assert.InDelta(t, 200.0/255.0, img.Data()[3], 1e-6)

	out, err := img.ToGo(Gray)
	require.NoError(t, err)

	gray, ok := out.(*image.Gray)
	require.True(t, ok)
	assert.InDelta(t, 200, gray.GrayAt(1, 1).Y, 1)
}

func TestGoImage16(t *testing.T) {

	eng := memory.New()

	src := image.NewNRGBA64(image.Rect(0, 0, 2, 1))
	src.SetNRGBA64(1, 0, color.NRGBA64{R: 1000, G: 40000, B: 65535, A: 0xffff})

	img, err := ImageFromGo(eng, src, RGB)
	require.NoError(t, err)
	defer img.Close()

	assert.InDelta(t, 1000.0/65535.0, img.Data()[1], 1e-6)

	out, err := img.ToGo16(RGB)
	require.NoError(t, err)

	nrgba, ok := out.(*image.NRGBA64)
	require.True(t, ok)

	got := nrgba.NRGBA64At(1, 0)
	assert.InDelta(t, 1000, got.R, 1)
	assert.InDelta(t, 40000, got.G, 1)
	assert.InDelta(t, 65535, got.B, 1)
	assert.Equal(t, uint16(0xffff), got.A)
}

func TestOpen(t *testing.T) {

	eng := memory.New()
	dir := t.TempDir()

	src := image.NewNRGBA(image.Rect(0, 0, 5, 4))
	src.SetNRGBA(4, 3, color.NRGBA{R: 0, G: 255, B: 0, A: 255})

	path := filepath.Join(dir, "frame.png")
	require.NoError(t, imaging.Save(src, path))

	img, err := Open(eng, path)
	require.NoError(t, err)

	c, h, w := img.Shape()
	assert.Equal(t, []int{3, 4, 5}, []int{c, h, w})
	// green plane, last pixel
	assert.Equal(t, float32(1), img.Data()[20+19])

	require.NoError(t, img.Close())

	_, err = Open(eng, filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, ErrIO)

	garbage := filepath.Join(dir, "garbage.jpg")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))

	_, err = Open(eng, garbage)
	require.ErrorIs(t, err, ErrImageDecode)

	assert.Equal(t, 0, eng.Stats().Live)
}
