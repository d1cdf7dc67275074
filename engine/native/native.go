// Package native binds the darknet C library (AlexeyAB fork) to the
// engine.Engine contract.
//
// libdarknet.so and darknet.h must be discoverable by the C toolchain, eg:
//
//	CGO_CFLAGS="-I/opt/darknet/include" CGO_LDFLAGS="-L/opt/darknet" go build
package native

/*
#cgo LDFLAGS: -ldarknet -lm
#include <stdlib.h>
#include <string.h>
#include "darknet.h"

static layer gd_layer(network *net, int i) {
	return net->layers[i];
}

static image gd_copy_image(image im) {
	image out = make_image(im.w, im.h, im.c);
	memcpy(out.data, im.data, (size_t)im.w * im.h * im.c * sizeof(float));
	return out;
}

static image gd_crop_image(image im, int dx, int dy, int w, int h) {
	image cropped = make_image(w, h, im.c);
	int i, j, k;
	for (k = 0; k < im.c; ++k) {
		for (j = 0; j < h; ++j) {
			for (i = 0; i < w; ++i) {
				int r = j + dy;
				int c = i + dx;
				if (r < 0) r = 0;
				if (r > im.h - 1) r = im.h - 1;
				if (c < 0) c = 0;
				if (c > im.w - 1) c = im.w - 1;
				cropped.data[k*w*h + j*w + i] = im.data[k*im.w*im.h + r*im.w + c];
			}
		}
	}
	return cropped;
}

static void gd_free_nested(detection *dets, int i) {
	free(dets[i].prob);
	dets[i].prob = NULL;
	free(dets[i].uc);
	dets[i].uc = NULL;
	free(dets[i].mask);
	dets[i].mask = NULL;
}
*/
import "C"
import (
	"unsafe"

	"github.com/swdee/go-darknet/engine"
)

// Engine is the libdarknet backed engine.  It holds no state; every handle
// carries its own C allocation.
type Engine struct{}

// New returns a libdarknet engine
func New() *Engine {
	return &Engine{}
}

// LoadNetwork wraps C.load_network
func (e *Engine) LoadNetwork(cfg, weights string, clear bool) engine.Network {

	cCfg := C.CString(cfg)
	defer C.free(unsafe.Pointer(cCfg))

	var cWeights *C.char

	if weights != "" {
		cWeights = C.CString(weights)
		defer C.free(unsafe.Pointer(cWeights))
	}

	cClear := C.int(0)

	if clear {
		cClear = 1
	}

	net := C.load_network(cCfg, cWeights, cClear)

	return engine.Network(unsafe.Pointer(net))
}

// FreeNetwork wraps C.free_network_ptr
func (e *Engine) FreeNetwork(net engine.Network) {
	C.free_network_ptr(cNet(net))
}

// SetBatchNetwork wraps C.set_batch_network
func (e *Engine) SetBatchNetwork(net engine.Network, batch int) {
	C.set_batch_network(cNet(net), C.int(batch))
}

// NetworkInfo reads the input shape and layer count from the network struct
func (e *Engine) NetworkInfo(net engine.Network) engine.NetworkInfo {

	n := cNet(net)

	return engine.NetworkInfo{
		Width:    int(n.w),
		Height:   int(n.h),
		Channels: int(n.c),
		Layers:   int(n.n),
	}
}

// Layer converts the C layer struct at index i
func (e *Engine) Layer(net engine.Network, i int) engine.Layer {

	l := C.gd_layer(cNet(net), C.int(i))

	return engine.Layer{
		Type:                 int(l._type),
		Activation:           int(l.activation),
		CostType:             int(l.cost_type),
		WeightsType:          int(l.weights_type),
		WeightsNormalization: int(l.weights_normalization),
		NMSKind:              int(l.nms_kind),
		YoloPoint:            int(l.yolo_point),
		IoULoss:              int(l.iou_loss),
		IoUThreshKind:        int(l.iou_thresh_kind),
		W:                    int(l.w),
		H:                    int(l.h),
		C:                    int(l.c),
		OutW:                 int(l.out_w),
		OutH:                 int(l.out_h),
		OutC:                 int(l.out_c),
		Classes:              int(l.classes),
		BetaNMS:              float32(l.beta_nms),
	}
}

// NetworkPredict wraps C.network_predict_ptr.  The input is only read for the
// duration of the call so Go memory can be passed directly
func (e *Engine) NetworkPredict(net engine.Network, input []float32) {
	C.network_predict_ptr(cNet(net), (*C.float)(unsafe.Pointer(&input[0])))
}

// NetworkBoxes wraps C.get_network_boxes and builds Go views over the
// returned detection array
func (e *Engine) NetworkBoxes(net engine.Network, opts engine.BoxOptions) engine.Candidates {

	var num C.int

	dets := C.get_network_boxes(cNet(net), C.int(opts.Width), C.int(opts.Height),
		C.float(opts.Thresh), C.float(opts.HierThresh), nil, cBool(opts.Relative),
		&num, cBool(opts.LetterBox))

	out := engine.Candidates{
		Ref:   unsafe.Pointer(dets),
		Items: make([]engine.Candidate, int(num)),
	}

	if num == 0 || dets == nil {
		return out
	}

	cDets := unsafe.Slice(dets, int(num))

	for i, d := range cDets {
		classes := int(d.classes)

		item := engine.Candidate{
			Box: engine.Box{
				X: float32(d.bbox.x),
				Y: float32(d.bbox.y),
				W: float32(d.bbox.w),
				H: float32(d.bbox.h),
			},
			Classes:    classes,
			Objectness: float32(d.objectness),
			SortClass:  int(d.sort_class),
		}

		if d.prob != nil && classes > 0 {
			item.Prob = unsafe.Slice((*float32)(unsafe.Pointer(d.prob)), classes)
		}

		if d.uc != nil {
			item.UC = unsafe.Slice((*float32)(unsafe.Pointer(d.uc)), 4)
		}

		out.Items[i] = item
	}

	return out
}

// FreeCandidate frees the prob, uc and mask buffers of candidate i and nulls
// the pointers so the bulk release cannot free them a second time
func (e *Engine) FreeCandidate(c engine.Candidates, i int) {

	if c.Ref == nil {
		return
	}

	C.gd_free_nested((*C.detection)(c.Ref), C.int(i))
	c.Items[i].Prob = nil
	c.Items[i].UC = nil
}

// FreeCandidates wraps C.free_detections.  With every nested pointer already
// nulled by FreeCandidate this only releases the bulk array
func (e *Engine) FreeCandidates(c engine.Candidates) {

	if c.Ref == nil {
		return
	}

	C.free_detections((*C.detection)(c.Ref), C.int(len(c.Items)))
}

// SaveWeights wraps C.save_weights
func (e *Engine) SaveWeights(net engine.Network, path string) {

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	C.save_weights(cNet(net), cPath)
}

// MakeImage wraps C.make_image
func (e *Engine) MakeImage(w, h, c int) engine.Image {
	return goImage(C.make_image(C.int(w), C.int(h), C.int(c)))
}

// ResizeImage wraps C.resize_image
func (e *Engine) ResizeImage(im engine.Image, w, h int) engine.Image {
	return goImage(C.resize_image(cImage(im), C.int(w), C.int(h)))
}

// LetterboxImage wraps C.letterbox_image
func (e *Engine) LetterboxImage(im engine.Image, w, h int) engine.Image {
	return goImage(C.letterbox_image(cImage(im), C.int(w), C.int(h)))
}

// CropImage copies a window of im with edge clamping
func (e *Engine) CropImage(im engine.Image, dx, dy, w, h int) engine.Image {
	return goImage(C.gd_crop_image(cImage(im), C.int(dx), C.int(dy), C.int(w), C.int(h)))
}

// CopyImage makes a deep copy of im
func (e *Engine) CopyImage(im engine.Image) engine.Image {
	return goImage(C.gd_copy_image(cImage(im)))
}

// FreeImage wraps C.free_image
func (e *Engine) FreeImage(im engine.Image) {
	C.free_image(cImage(im))
}

// cNet converts an opaque handle to the C network pointer
func cNet(net engine.Network) *C.network {
	return (*C.network)(unsafe.Pointer(net))
}

// cBool converts a Go bool to a C int flag
func cBool(b bool) C.int {

	if b {
		return 1
	}

	return 0
}

// cImage rebuilds the C image struct from its Go view
func cImage(im engine.Image) C.image {

	var data *C.float

	if len(im.Data) > 0 {
		data = (*C.float)(unsafe.Pointer(unsafe.SliceData(im.Data)))
	}

	return C.image{
		w:    C.int(im.W),
		h:    C.int(im.H),
		c:    C.int(im.C),
		data: data,
	}
}

// goImage builds a Go view over a C image.  The slice header points at C
// memory, the data is not copied
func goImage(im C.image) engine.Image {

	out := engine.Image{
		W: int(im.w),
		H: int(im.h),
		C: int(im.c),
	}

	if n := out.Size(); n > 0 && im.data != nil {
		out.Data = unsafe.Slice((*float32)(unsafe.Pointer(im.data)), n)
	}

	return out
}

var _ engine.Engine = (*Engine)(nil)
