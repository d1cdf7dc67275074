package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-darknet"
	"github.com/swdee/go-darknet/engine/memory"
	"gocv.io/x/gocv"
)

// bgrMat returns a Mat owning a copy of pix
func bgrMat(t *testing.T, rows, cols int, mt gocv.MatType, pix []byte) gocv.Mat {

	view, err := gocv.NewMatFromBytes(rows, cols, mt, pix)
	require.NoError(t, err)

	defer view.Close()

	return view.Clone()
}

func TestFromMat(t *testing.T) {

	eng := memory.New()

	// one blue and one red pixel in BGR order
	mat := bgrMat(t, 1, 2, gocv.MatTypeCV8UC3, []byte{255, 0, 0, 0, 0, 255})
	defer mat.Close()

	img, err := FromMat(eng, mat)
	require.NoError(t, err)
	defer img.Close()

	c, h, w := img.Shape()
	assert.Equal(t, []int{3, 1, 2}, []int{c, h, w})

	// planar RGB
	assert.Equal(t, []float32{0, 1, 0, 0, 1, 0}, img.Data())
}

func TestFromMatGray(t *testing.T) {

	eng := memory.New()

	mat := bgrMat(t, 2, 1, gocv.MatTypeCV8UC1, []byte{0, 255})
	defer mat.Close()

	img, err := FromMat(eng, mat)
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, []float32{0, 1}, img.Data())
}

func TestFromMatErrors(t *testing.T) {

	eng := memory.New()

	empty := gocv.NewMat()
	defer empty.Close()

	_, err := FromMat(eng, empty)
	require.ErrorIs(t, err, darknet.ErrConversion)

	float := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32FC3)
	defer float.Close()

	_, err = FromMat(eng, float)
	require.ErrorIs(t, err, darknet.ErrConversion)

	assert.Equal(t, 0, eng.Stats().Live)
}

func TestToMat(t *testing.T) {

	eng := memory.New()

	img := darknet.Zeros(eng, 2, 1, 3)
	defer img.Close()

	// red then green
	copy(img.Data(), []float32{1, 0, 0, 1, 0, 0})

	mat, err := ToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, gocv.MatTypeCV8UC3, mat.Type())

	pix, err := mat.DataPtrUint8()
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 255, 0, 255, 0}, pix)

	alpha := darknet.Zeros(eng, 1, 1, 4)
	defer alpha.Close()

	bad, err := ToMat(alpha)
	defer bad.Close()

	require.ErrorIs(t, err, darknet.ErrConversion)
}
