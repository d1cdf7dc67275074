//go:build integration
// +build integration

package native_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-darknet"
	"github.com/swdee/go-darknet/engine/native"
)

// env returns the value of key or fails the test
func env(t *testing.T, key string) string {

	v := os.Getenv(key)

	if v == "" {
		t.Fatalf("No file provided in %s", key)
	}

	return v
}

func TestDetect(t *testing.T) {

	cfg := env(t, "DARKNET_CFG")
	weights := env(t, "DARKNET_WEIGHTS")
	imgFile := env(t, "DARKNET_IMAGE")

	var opts []darknet.Option

	if file := os.Getenv("DARKNET_LABELS"); file != "" {
		labels, err := darknet.LoadLabels(file)
		require.NoError(t, err)

		opts = append(opts, darknet.WithLabels(labels))
	}

	eng := native.New()

	net, err := darknet.Load(eng, cfg, weights, false, opts...)
	require.NoError(t, err)

	defer net.Close()

	out, ok := net.OutputLayer()
	require.True(t, ok)

	lt, ok := out.Type()
	require.True(t, ok)
	assert.True(t, lt.IsOutput(), "output layer is %s", lt)

	img, err := darknet.Open(eng, imgFile)
	require.NoError(t, err)

	defer img.Close()

	for _, letterbox := range []bool{false, true} {
		p := darknet.DefaultPredictParams()
		p.LetterBox = letterbox

		dets, err := net.Predict(img, p)
		require.NoError(t, err)

		require.False(t, dets.IsEmpty(), "letterbox=%v", letterbox)

		for it := dets.Iter(); it.Remaining() > 0; {
			det, _ := it.Next()

			assert.Greater(t, det.Probability(), float32(0))
			assert.LessOrEqual(t, det.Probability(), float32(1))
			assert.Equal(t, net.NumClasses(), det.NumClasses())

			crop := det.Crop(img)
			assert.Positive(t, crop.Width())
			crop.Close()
		}
	}
}
