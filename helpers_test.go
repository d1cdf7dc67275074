package darknet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/swdee/go-darknet/engine"
	"github.com/swdee/go-darknet/engine/memory"
)

// testModel is a 8x6 RGB network with a yolo output layer of 3 classes
func testModel(detect memory.Detector) memory.Model {
	return memory.Model{
		Width:    8,
		Height:   6,
		Channels: 3,
		Layers: []engine.Layer{
			{Type: int(Convolutional), Activation: int(Leaky), W: 8, H: 6, C: 3, OutW: 8, OutH: 6, OutC: 16},
			{Type: int(Yolo), Activation: int(Linear), W: 8, H: 6, C: 16, OutW: 8, OutH: 6, OutC: 24,
				Classes: 3, NMSKind: int(DefaultNMS), YoloPoint: int(YoloCenter), IoULoss: int(LossCIoU),
				IoUThreshKind: int(LossIoU), BetaNMS: 0.6},
		},
		Detect: detect,
	}
}

// fixture is a memory engine with one registered model and its files on disk
type fixture struct {
	eng     *memory.Engine
	cfg     string
	weights string
}

func newFixture(t *testing.T, model memory.Model) fixture {

	dir := t.TempDir()

	f := fixture{
		eng:     memory.New(),
		cfg:     filepath.Join(dir, "yolo.cfg"),
		weights: filepath.Join(dir, "yolo.weights"),
	}

	require.NoError(t, os.WriteFile(f.cfg, []byte("[net]\n"), 0o644))
	require.NoError(t, os.WriteFile(f.weights, []byte{0, 0, 0, 0}, 0o644))

	f.eng.Register(f.cfg, model)

	return f
}

// load loads the fixture model and closes it at the end of the test
func (f fixture) load(t *testing.T, opts ...Option) *Network {

	n, err := Load(f.eng, f.cfg, f.weights, false, opts...)
	require.NoError(t, err)

	t.Cleanup(func() { n.Close() })

	return n
}

// scripted returns a detector that always produces raws
func scripted(raws ...memory.Raw) memory.Detector {
	return func(input []float32, opts engine.BoxOptions) []memory.Raw {
		return raws
	}
}

// raw builds a candidate
func raw(x, y, w, h, objectness float32, prob ...float32) memory.Raw {
	return memory.Raw{
		Box:        engine.Box{X: x, Y: y, W: w, H: h},
		Objectness: objectness,
		Prob:       prob,
	}
}

func ptr[T any](v T) *T {
	return &v
}
