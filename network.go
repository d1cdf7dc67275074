package darknet

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/swdee/go-darknet/engine"
	"github.com/swdee/go-darknet/postprocess/result"
	"go.uber.org/zap"
)

// Network is a darknet model loaded from a cfg and weights file
type Network struct {
	eng engine.Engine
	// mu serializes Predict, SaveWeights and Close against each other and
	// against introspection
	mu     sync.RWMutex
	net    engine.Network
	closed bool
	info   engine.NetworkInfo

	labels *Labels
	idGen  *result.IDGenerator
	log    *zap.Logger
	cfg    string
}

// Option configures a Network
type Option func(*options)

type options struct {
	labels *Labels
	log    *zap.Logger
	idGen  *result.IDGenerator
}

// WithLabels attaches the class labels of the model.  Their number must
// equal the number of classes of the network output layer
func WithLabels(labels *Labels) Option {
	return func(o *options) {
		o.labels = labels
	}
}

// WithLogger sets the logger, defaults to a no-op logger
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithIDGenerator sets the generator assigning detection IDs, so networks
// of a Pool can share one sequence
func WithIDGenerator(gen *result.IDGenerator) Option {
	return func(o *options) {
		o.idGen = gen
	}
}

// Load parses the network cfg file and loads weights into it.  An empty
// weights path loads no weights.  reset clears the training state kept in
// the weights file
func Load(eng engine.Engine, cfg, weights string, reset bool, opts ...Option) (*Network, error) {

	o := options{
		log: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.idGen == nil {
		o.idGen = result.NewIDGenerator()
	}

	paths := []string{cfg}

	if weights != "" {
		paths = append(paths, weights)
	}

	// check files in Go, before passing to C
	for _, path := range paths {
		if err := checkFile(path); err != nil {
			return nil, err
		}
	}

	handle := eng.LoadNetwork(cfg, weights, reset)

	if handle == nil {
		return nil, errors.Wrapf(ErrInternal, "C.load_network failed for cfg %s, weights %s",
			cfg, weights)
	}

	eng.SetBatchNetwork(handle, 1)

	n := &Network{
		eng:    eng,
		net:    handle,
		info:   eng.NetworkInfo(handle),
		labels: o.labels,
		idGen:  o.idGen,
		log:    o.log,
		cfg:    cfg,
	}

	if o.labels != nil && o.labels.Len() != n.NumClasses() {
		classes := n.NumClasses()
		n.Close()

		return nil, errors.Wrapf(ErrLabelCount, "network has %d classes, got %d labels",
			classes, o.labels.Len())
	}

	n.log.Debug("network loaded",
		zap.String("cfg", cfg),
		zap.String("weights", weights),
		zap.Int("width", n.info.Width),
		zap.Int("height", n.info.Height),
		zap.Int("layers", n.info.Layers),
		zap.Int("classes", n.NumClasses()),
	)

	return n, nil
}

// checkFile validates a path is representable as a C string and refers to a
// regular file
func checkFile(path string) error {

	if err := checkPath(path); err != nil {
		return err
	}

	info, err := os.Stat(path)

	if err != nil {
		return errors.Wrapf(ErrIO, "file does not exist at %s: %v", path, err)
	}

	if info.IsDir() {
		return errors.Wrapf(ErrIO, "%s is a directory", path)
	}

	return nil
}

// handle returns the engine network, panicking once the network is closed.
// The caller must hold mu
func (n *Network) handle() engine.Network {

	if n.closed {
		panic("darknet: use of closed Network")
	}

	return n.net
}

// InputShape returns the network input as channels, height, width
func (n *Network) InputShape() (c, h, w int) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.handle()

	return n.info.Channels, n.info.Height, n.info.Width
}

// Width returns the network input width
func (n *Network) Width() int {
	_, _, w := n.InputShape()
	return w
}

// Height returns the network input height
func (n *Network) Height() int {
	_, h, _ := n.InputShape()
	return h
}

// NumLayers returns the number of layers
func (n *Network) NumLayers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.handle()

	return n.info.Layers
}

// Layer returns the layer at index, ok is false when out of range
func (n *Network) Layer(index int) (Layer, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.layer(index)
}

// layer reads a layer, the caller must hold mu
func (n *Network) layer(index int) (Layer, bool) {

	h := n.handle()

	if index < 0 || index >= n.info.Layers {
		return Layer{}, false
	}

	return Layer{index: index, raw: n.eng.Layer(h, index)}, true
}

// Layers returns all layers in network order
func (n *Network) Layers() []Layer {
	n.mu.RLock()
	defer n.mu.RUnlock()

	n.handle()

	layers := make([]Layer, 0, n.info.Layers)

	for i := 0; i < n.info.Layers; i++ {
		l, _ := n.layer(i)
		layers = append(layers, l)
	}

	return layers
}

// OutputLayer returns the last detection producing layer, or the last layer
// when the network has none.  ok is false for a network without layers
func (n *Network) OutputLayer() (Layer, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.outputLayer()
}

// outputLayer finds the output layer, the caller must hold mu
func (n *Network) outputLayer() (Layer, bool) {

	for i := n.info.Layers - 1; i >= 0; i-- {
		l, _ := n.layer(i)

		if t, ok := l.Type(); ok && t.IsOutput() {
			return l, true
		}
	}

	return n.layer(n.info.Layers - 1)
}

// NumClasses returns the class count of the output layer
func (n *Network) NumClasses() int {

	l, ok := n.OutputLayer()

	if !ok {
		return 0
	}

	return l.Classes()
}

// Labels returns the label table, nil when the network has none
func (n *Network) Labels() *Labels {
	return n.labels
}

// SaveWeights writes the network weights to path
func (n *Network) SaveWeights(path string) error {

	if err := checkPath(path); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.eng.SaveWeights(n.handle(), path)

	n.log.Debug("weights saved", zap.String("path", path))

	return nil
}

// Close releases the network.  Calling Close more than once is safe
func (n *Network) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	n.eng.FreeNetwork(n.net)
	n.net = nil
	n.closed = true

	n.log.Debug("network released", zap.String("cfg", n.cfg))

	return nil
}
