package engine

import "unsafe"

// Network is an opaque reference to a network allocated by an Engine.  A
// nil Network signals that the engine failed to load the model.
type Network unsafe.Pointer

// Box mirrors the engine's box struct, a normalized center-x, center-y,
// width, height rectangle
type Box struct {
	X float32
	Y float32
	W float32
	H float32
}

// Image mirrors the engine's image struct.  Data is a planar (channel-major)
// float buffer of W*H*C elements that aliases engine memory.
type Image struct {
	W    int
	H    int
	C    int
	Data []float32
}

// Size returns the number of elements in the image buffer
func (i Image) Size() int {
	return i.W * i.H * i.C
}

// Candidate mirrors one element of the engine's detection array
type Candidate struct {
	// Box is the normalized bounding box
	Box Box
	// Classes is the number of entries in Prob
	Classes int
	// Prob is the per class probability vector.  It is a separate allocation
	// nested inside the bulk array
	Prob []float32
	// UC is the optional per box uncertainty vector of length 4, nil when the
	// output layer does not produce one.  Also a nested allocation
	UC []float32
	// Objectness is the confidence that the region contains any object
	Objectness float32
	// SortClass is the class index the engine last sorted this candidate by
	SortClass int
}

// Candidates is the bulk detection array produced by one NetworkBoxes call
type Candidates struct {
	// Ref is the engine's reference to the bulk allocation
	Ref unsafe.Pointer
	// Items are Go views over the bulk array elements
	Items []Candidate
}

// NetworkInfo describes a loaded network's input
type NetworkInfo struct {
	Width    int
	Height   int
	Channels int
	Layers   int
}

// Layer holds the raw metadata of one network layer.  Kind fields are the
// engine's integer codes and are decoded by the darknet package.
type Layer struct {
	Type                 int
	Activation           int
	CostType             int
	WeightsType          int
	WeightsNormalization int
	NMSKind              int
	YoloPoint            int
	IoULoss              int
	IoUThreshKind        int

	W    int
	H    int
	C    int
	OutW int
	OutH int
	OutC int

	Classes int
	BetaNMS float32
}

// BoxOptions are the arguments passed to the engine's get_network_boxes
type BoxOptions struct {
	// Width and Height of the source image the boxes are relative to
	Width  int
	Height int
	// Thresh is the objectness threshold the engine applies while decoding
	Thresh float32
	// HierThresh is the hierarchical threshold used by region layers
	HierThresh float32
	// Relative requests boxes normalized to [0,1]
	Relative bool
	// LetterBox tells the engine the input was letterboxed so box
	// coordinates are corrected for the padding
	LetterBox bool
}

// Engine is the foreign engine ABI.  Implementations must not retain Go
// memory passed to them beyond the call.
type Engine interface {
	// LoadNetwork parses cfg and optionally loads weights.  An empty weights
	// string passes a null pointer.  Returns nil on failure
	LoadNetwork(cfg, weights string, clear bool) Network
	// FreeNetwork releases a network returned by LoadNetwork
	FreeNetwork(net Network)
	// SetBatchNetwork resizes the network's per layer buffers for batch
	// images
	SetBatchNetwork(net Network, batch int)
	// NetworkInfo returns the network input shape and layer count
	NetworkInfo(net Network) NetworkInfo
	// Layer returns the metadata of layer i
	Layer(net Network, i int) Layer
	// NetworkPredict runs a forward pass on a planar input tensor
	NetworkPredict(net Network, input []float32)
	// NetworkBoxes decodes the last forward pass into a candidate array
	NetworkBoxes(net Network, opts BoxOptions) Candidates
	// FreeCandidate releases the nested buffers of candidate i
	FreeCandidate(c Candidates, i int)
	// FreeCandidates releases the bulk array.  Nested buffers must already
	// have been released with FreeCandidate
	FreeCandidates(c Candidates)
	// SaveWeights writes the network weights to path
	SaveWeights(net Network, path string)

	// MakeImage allocates a zero filled image
	MakeImage(w, h, c int) Image
	// ResizeImage returns a new image scaled to exactly w x h
	ResizeImage(im Image, w, h int) Image
	// LetterboxImage returns a new w x h image holding im scaled with its
	// aspect ratio kept and padded with 0.5
	LetterboxImage(im Image, w, h int) Image
	// CropImage returns a new w x h image copied from im starting at dx, dy
	CropImage(im Image, dx, dy, w, h int) Image
	// CopyImage returns a deep copy of im
	CopyImage(im Image) Image
	// FreeImage releases an image
	FreeImage(im Image)
}
