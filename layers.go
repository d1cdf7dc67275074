package darknet

import (
	"fmt"

	"github.com/swdee/go-darknet/engine"
)

// Layer is a read only copy of the metadata of one network layer.  The kind
// accessors return ok=false when darknet reports a code this package does
// not know
type Layer struct {
	index int
	raw   engine.Layer
}

// Index returns the position of the layer in the network
func (l Layer) Index() int {
	return l.index
}

// Type returns the layer type
func (l Layer) Type() (LayerType, bool) {
	return decodeLayerType(l.raw.Type)
}

// Activation returns the activation function
func (l Layer) Activation() (Activation, bool) {
	return decodeActivation(l.raw.Activation)
}

// CostType returns the cost function of cost layers
func (l Layer) CostType() (CostType, bool) {
	return decodeCostType(l.raw.CostType)
}

// WeightsType returns the weighting of shortcut layers
func (l Layer) WeightsType() (WeightsType, bool) {
	return decodeWeightsType(l.raw.WeightsType)
}

// WeightsNormalization returns the weights normalization of shortcut layers
func (l Layer) WeightsNormalization() (WeightsNormalization, bool) {
	return decodeWeightsNormalization(l.raw.WeightsNormalization)
}

// NMSKind returns the Non-Maximum Suppression method of output layers
func (l Layer) NMSKind() (NMSKind, bool) {
	return decodeNMSKind(l.raw.NMSKind)
}

// YoloPoint returns the box reference point of yolo layers
func (l Layer) YoloPoint() (YoloPoint, bool) {
	return decodeYoloPoint(l.raw.YoloPoint)
}

// IoULoss returns the box regression loss of yolo layers
func (l Layer) IoULoss() (IoULoss, bool) {
	return decodeIoULoss(l.raw.IoULoss)
}

// IoUThreshKind returns the overlap measure used for the IoU threshold
func (l Layer) IoUThreshKind() (IoULoss, bool) {
	return decodeIoULoss(l.raw.IoUThreshKind)
}

// InputShape returns the layer input as width, height, channels
func (l Layer) InputShape() (w, h, c int) {
	return l.raw.W, l.raw.H, l.raw.C
}

// OutputShape returns the layer output as width, height, channels
func (l Layer) OutputShape() (w, h, c int) {
	return l.raw.OutW, l.raw.OutH, l.raw.OutC
}

// Classes returns the number of classes of output layers
func (l Layer) Classes() int {
	return l.raw.Classes
}

// BetaNMS returns the DIoU penalty exponent of output layers
func (l Layer) BetaNMS() float32 {
	return l.raw.BetaNMS
}

// String returns a one line summary of the layer
func (l Layer) String() string {

	// unknown codes print as UNKNOW
	t := LayerType(l.raw.Type)
	w, h, c := l.InputShape()
	ow, oh, oc := l.OutputShape()

	s := fmt.Sprintf("index=%d, type=%s, activation=%s, input=%dx%dx%d, output=%dx%dx%d",
		l.index, t, Activation(l.raw.Activation), w, h, c, ow, oh, oc)

	if t.IsOutput() {
		s += fmt.Sprintf(", classes=%d, nms=%s, beta_nms=%g", l.raw.Classes,
			NMSKind(l.raw.NMSKind), l.raw.BetaNMS)
	}

	return s
}
