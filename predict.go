package darknet

import (
	"slices"

	"github.com/swdee/go-darknet/engine"
	"github.com/swdee/go-darknet/postprocess"
	"go.uber.org/zap"
)

// PredictParams are the thresholds applied to the raw network output
type PredictParams struct {
	// ObjectnessThreshold drops candidates with an objectness less than or
	// equal to it.  darknet applies it while decoding boxes as well
	ObjectnessThreshold float32
	// HierThreshold is the hierarchical threshold of region layers
	HierThreshold float32
	// ClassThreshold, when set, drops candidates whose best class
	// probability is not strictly greater than it
	ClassThreshold *float32
	// IoUThreshold is the Non-Maximum Suppression overlap threshold, zero
	// disables suppression
	IoUThreshold float32
	// LetterBox keeps the aspect ratio when the image is scaled to the
	// network input size
	LetterBox bool
	// NMSKind overrides the NMS method declared by the output layer
	NMSKind *NMSKind
}

// DefaultPredictParams returns the thresholds of darknet's detector command
// - Objectness Threshold: 0.25
// - Hier Threshold: 0.5
// - IoU Threshold: 0.45
func DefaultPredictParams() PredictParams {
	return PredictParams{
		ObjectnessThreshold: 0.25,
		HierThreshold:       0.5,
		IoUThreshold:        0.45,
	}
}

// Predict runs the network on img and returns the filtered detections.  An
// image that differs from the network input size is scaled to it, img itself
// is not modified.  Calls on the same Network are serialized
func (n *Network) Predict(img *Image, p PredictParams) (*Detections, error) {

	n.mu.Lock()
	defer n.mu.Unlock()

	net := n.handle()
	src := img.handle()

	if src.C != n.info.Channels {
		return nil, &ConversionError{Op: "predict", What: "channels",
			Want: n.info.Channels, Got: src.C}
	}

	input := img

	if src.W != n.info.Width || src.H != n.info.Height {
		if p.LetterBox {
			input = img.LetterBox(n.info.Width, n.info.Height)
		} else {
			input = img.Resize(n.info.Width, n.info.Height)
		}

		defer input.Close()
	}

	n.eng.NetworkPredict(net, input.Data())

	cands := n.eng.NetworkBoxes(net, engine.BoxOptions{
		Width:      src.W,
		Height:     src.H,
		Thresh:     p.ObjectnessThreshold,
		HierThresh: p.HierThreshold,
		Relative:   true,
		LetterBox:  p.LetterBox,
	})

	defer n.release(cands)

	filterParams := n.filterParams(p)

	in := make([]postprocess.Candidate, len(cands.Items))

	for i, c := range cands.Items {
		in[i] = postprocess.Candidate{
			Box:        BBox(c.Box),
			Objectness: c.Objectness,
			Prob:       c.Prob,
		}
	}

	kept := postprocess.Filter(in, filterParams)

	// copy survivors out of engine memory before it is released
	dets := &Detections{
		items:  make([]Detection, len(kept)),
		labels: n.labels,
	}

	for i, k := range kept {
		c := cands.Items[k.Index]

		dets.items[i] = Detection{
			bbox:        BBox(c.Box),
			objectness:  c.Objectness,
			prob:        slices.Clone(c.Prob),
			uc:          slices.Clone(c.UC),
			sortClass:   c.SortClass,
			class:       k.Class,
			probability: k.Prob,
			labels:      n.labels,
			id:          n.idGen.GetNext(),
		}
	}

	n.log.Debug("predict",
		zap.Int("candidates", len(cands.Items)),
		zap.Int("detections", len(kept)),
		zap.Stringer("nms", filterParams.Kind),
	)

	return dets, nil
}

// filterParams builds the postprocess thresholds, taking the NMS kind and
// DIoU beta from the output layer unless overridden.  The caller must hold
// mu
func (n *Network) filterParams(p PredictParams) postprocess.Params {

	fp := postprocess.Params{
		ObjectnessThreshold: p.ObjectnessThreshold,
		ClassThreshold:      p.ClassThreshold,
		IoUThreshold:        p.IoUThreshold,
		Kind:                postprocess.KindDefault,
		Beta:                postprocess.DefaultBeta,
	}

	if out, ok := n.outputLayer(); ok {
		if kind, ok := out.NMSKind(); ok {
			fp.Kind = kind.filterKind()
		}

		if beta := out.BetaNMS(); beta > 0 {
			fp.Beta = beta
		}
	}

	if p.NMSKind != nil {
		fp.Kind = p.NMSKind.filterKind()
	}

	return fp
}

// release frees the candidate array, nested buffers first then the bulk
// array
func (n *Network) release(cands engine.Candidates) {

	for i := range cands.Items {
		n.eng.FreeCandidate(cands, i)
	}

	n.eng.FreeCandidates(cands)
}
