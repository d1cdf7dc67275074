package darknet

import (
	"slices"

	"github.com/swdee/go-darknet/postprocess"
)

// BBox is a normalized center form bounding box
type BBox = postprocess.BBox

// Detection is one object that survived filtering.  All of its data is
// owned by Go, it stays valid after the Network and Image are closed
type Detection struct {
	bbox        BBox
	objectness  float32
	prob        []float32
	uc          []float32
	sortClass   int
	class       int
	probability float32
	labels      *Labels
	id          int64
}

// BBox returns the normalized bounding box
func (d Detection) BBox() BBox {
	return d.bbox
}

// Objectness returns the confidence that the box holds any object
func (d Detection) Objectness() float32 {
	return d.objectness
}

// NumClasses returns the length of the class probability vector
func (d Detection) NumClasses() int {
	return len(d.prob)
}

// Probabilities returns a copy of the per class probabilities
func (d Detection) Probabilities() []float32 {
	return slices.Clone(d.prob)
}

// Uncertainty returns the box uncertainty vector of Gaussian YOLO layers,
// ok is false when the output layer does not produce one
func (d Detection) Uncertainty() ([]float32, bool) {

	if d.uc == nil {
		return nil, false
	}

	return slices.Clone(d.uc), true
}

// SortClass returns the class darknet last sorted the candidate by
func (d Detection) SortClass() int {
	return d.sortClass
}

// Class returns the class assigned during filtering
func (d Detection) Class() int {
	return d.class
}

// Probability returns the probability of the assigned class
func (d Detection) Probability() float32 {
	return d.probability
}

// Label returns the name of the assigned class, empty when the network was
// loaded without labels
func (d Detection) Label() string {

	if d.labels == nil {
		return ""
	}

	return d.labels.Name(d.class)
}

// ID returns the unique ID of the detection
func (d Detection) ID() int64 {
	return d.id
}

// BestClass re-evaluates the class probabilities with threshold, independent
// of the threshold used by Predict.  ok is false when no class is above it
func (d Detection) BestClass(threshold *float32) (class int, prob float32, ok bool) {
	return postprocess.BestClass(d.prob, threshold)
}

// Rect returns the bounding box in pixel coordinates of an image of the
// given size
func (d Detection) Rect(width, height int) postprocess.BoxRect {
	return d.bbox.Rect(width, height)
}

// Crop returns a new image of the detected region of img
func (d Detection) Crop(img *Image) *Image {
	return img.CropBBox(d.bbox)
}

// Detections is the ordered set of detections returned by Predict
type Detections struct {
	items  []Detection
	labels *Labels
}

// Len returns the number of detections
func (d *Detections) Len() int {
	return len(d.items)
}

// IsEmpty reports whether there are no detections
func (d *Detections) IsEmpty() bool {
	return len(d.items) == 0
}

// Get returns the detection at index, ok is false when out of range
func (d *Detections) Get(index int) (Detection, bool) {

	if index < 0 || index >= len(d.items) {
		return Detection{}, false
	}

	return d.items[index], true
}

// Labels returns the label table shared with the Network
func (d *Detections) Labels() *Labels {
	return d.labels
}

// Iter returns a new iterator positioned at the first detection
func (d *Detections) Iter() *DetectionsIter {
	return &DetectionsIter{dets: d}
}

// Results converts the detections to pixel space results of an image of the
// given size, for rendering
func (d *Detections) Results(width, height int) []postprocess.DetectResult {

	out := make([]postprocess.DetectResult, 0, len(d.items))

	for _, det := range d.items {
		out = append(out, postprocess.DetectResult{
			Class:       det.class,
			Label:       det.Label(),
			Box:         det.Rect(width, height),
			Probability: det.probability,
			ID:          det.id,
		})
	}

	return out
}

// DetectionsIter walks a Detections in order
type DetectionsIter struct {
	dets  *Detections
	index int
}

// Next returns the next detection, ok is false once all have been returned
func (it *DetectionsIter) Next() (Detection, bool) {

	det, ok := it.dets.Get(it.index)

	if ok {
		it.index++
	}

	return det, ok
}

// Remaining returns the number of detections Next has yet to return
func (it *DetectionsIter) Remaining() int {
	return it.dets.Len() - it.index
}
