// Package memory is a pure Go implementation of the darknet engine ABI.
//
// It cannot run darknet models.  Instead each model is registered under the
// cfg path it will be loaded from together with a Detector function that
// produces the raw candidates of a forward pass.  Every buffer the engine
// hands out is tracked, so Stats reveals leaks and releasing a buffer twice
// panics the same way a double free corrupts darknet's heap.
package memory

import (
	"fmt"
	"os"
	"slices"
	"sync"
	"unsafe"

	"github.com/swdee/go-darknet/engine"
)

const (
	kindNetwork    = "network"
	kindCandidates = "candidates"
	kindProb       = "prob"
	kindUC         = "uc"
)

// Raw is one candidate produced by a Detector
type Raw struct {
	Box        engine.Box
	Objectness float32
	Prob       []float32
	// UC is the optional uncertainty vector, must be nil or of length 4
	UC []float32
}

// Detector returns the raw candidates for a forward pass over input
type Detector func(input []float32, opts engine.BoxOptions) []Raw

// Model describes a network that can be loaded from this engine
type Model struct {
	Width    int
	Height   int
	Channels int
	Layers   []engine.Layer
	Detect   Detector
}

// network is the engine's per model state, the equivalent of darknet's
// network struct
type network struct {
	model Model
	batch int
	clear bool
	// input is a copy of the last tensor passed to NetworkPredict
	input []float32
}

// candidateArray is the bulk allocation returned by NetworkBoxes
type candidateArray struct {
	items []engine.Candidate
}

// Engine is the in-process engine
type Engine struct {
	alloc *allocator

	mu     sync.Mutex
	models map[string]Model
	saved  []string
}

// New returns an engine with no registered models
func New() *Engine {
	return &Engine{
		alloc:  newAllocator(),
		models: make(map[string]Model),
	}
}

// Register makes model loadable from cfg
func (e *Engine) Register(cfg string, model Model) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.models[cfg] = model
}

// Stats returns the allocation counters
func (e *Engine) Stats() Stats {
	return e.alloc.stats()
}

// SavedWeights returns the paths passed to SaveWeights in call order
func (e *Engine) SavedWeights() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.saved)
}

// LoadNetwork returns the model registered under cfg, or nil if there is none
// or weights does not exist on disk
func (e *Engine) LoadNetwork(cfg, weights string, clear bool) engine.Network {

	e.mu.Lock()
	model, ok := e.models[cfg]
	e.mu.Unlock()

	if !ok {
		return nil
	}

	if weights != "" {
		if _, err := os.Stat(weights); err != nil {
			return nil
		}
	}

	net := &network{
		model: model,
		batch: 1,
		clear: clear,
	}

	e.alloc.track(kindNetwork, unsafe.Pointer(net))

	return engine.Network(unsafe.Pointer(net))
}

// FreeNetwork releases a network
func (e *Engine) FreeNetwork(net engine.Network) {
	e.alloc.release(kindNetwork, unsafe.Pointer(net))
}

// SetBatchNetwork records the batch size
func (e *Engine) SetBatchNetwork(net engine.Network, batch int) {
	toNetwork(net).batch = batch
}

// Batch returns the batch size of net, exposed for tests
func (e *Engine) Batch(net engine.Network) int {
	return toNetwork(net).batch
}

// NetworkInfo returns the input shape and layer count
func (e *Engine) NetworkInfo(net engine.Network) engine.NetworkInfo {

	m := toNetwork(net).model

	return engine.NetworkInfo{
		Width:    m.Width,
		Height:   m.Height,
		Channels: m.Channels,
		Layers:   len(m.Layers),
	}
}

// Layer returns the metadata of layer i
func (e *Engine) Layer(net engine.Network, i int) engine.Layer {
	return toNetwork(net).model.Layers[i]
}

// NetworkPredict stores a copy of input for the next NetworkBoxes call
func (e *Engine) NetworkPredict(net engine.Network, input []float32) {

	n := toNetwork(net)
	want := n.model.Width * n.model.Height * n.model.Channels * n.batch

	if len(input) != want {
		panic(fmt.Sprintf("memory: network_predict input has %d elements, network expects %d",
			len(input), want))
	}

	n.input = append(n.input[:0], input...)
}

// NetworkBoxes runs the model's Detector and copies its output into engine
// owned memory laid out like darknet's detection array
func (e *Engine) NetworkBoxes(net engine.Network, opts engine.BoxOptions) engine.Candidates {

	n := toNetwork(net)

	var raw []Raw

	if n.model.Detect != nil {
		raw = n.model.Detect(n.input, opts)
	}

	arr := &candidateArray{
		items: make([]engine.Candidate, len(raw)),
	}

	for i, r := range raw {
		prob := e.alloc.floats(kindProb, len(r.Prob))
		copy(prob, r.Prob)

		var uc []float32

		if r.UC != nil {
			uc = e.alloc.floats(kindUC, 4)
			copy(uc, r.UC)
		}

		arr.items[i] = engine.Candidate{
			Box:        r.Box,
			Classes:    len(r.Prob),
			Prob:       prob,
			UC:         uc,
			Objectness: r.Objectness,
			SortClass:  -1,
		}
	}

	e.alloc.track(kindCandidates, unsafe.Pointer(arr))

	return engine.Candidates{
		Ref:   unsafe.Pointer(arr),
		Items: arr.items,
	}
}

// FreeCandidate releases the nested buffers of candidate i
func (e *Engine) FreeCandidate(c engine.Candidates, i int) {

	item := &(*candidateArray)(c.Ref).items[i]

	e.alloc.releaseFloats(kindProb, item.Prob)
	item.Prob = nil

	if item.UC != nil {
		e.alloc.releaseFloats(kindUC, item.UC)
		item.UC = nil
	}
}

// FreeCandidates releases the bulk array.  Nested buffers still live at this
// point are leaked, as they would be in darknet
func (e *Engine) FreeCandidates(c engine.Candidates) {
	e.alloc.release(kindCandidates, c.Ref)
}

// SaveWeights records path
func (e *Engine) SaveWeights(net engine.Network, path string) {

	_ = toNetwork(net)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.saved = append(e.saved, path)
}

// toNetwork converts an opaque handle back to the engine's network
func toNetwork(net engine.Network) *network {

	if net == nil {
		panic("memory: nil network")
	}

	return (*network)(unsafe.Pointer(net))
}

var _ engine.Engine = (*Engine)(nil)
