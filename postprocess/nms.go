package postprocess

import (
	"sort"
)

// Kind is the Non-Maximum Suppression method declared by a network's output
// layer
type Kind int

const (
	// KindDefault suppresses by IoU with candidates ranked by class
	// probability
	KindDefault Kind = iota
	// KindGreedy suppresses by IoU with candidates ranked by objectness
	KindGreedy
	// KindDIoU suppresses by Distance IoU
	KindDIoU
	// KindCorners is used by layers that fold objectness into the class
	// probabilities, the objectness gate is skipped
	KindCorners
)

// DefaultBeta is the DIoU penalty exponent used when Params.Beta is unset
const DefaultBeta float32 = 0.6

// String returns a readable description of the NMS kind
func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "DEFAULT"
	case KindGreedy:
		return "GREEDY"
	case KindDIoU:
		return "DIOU"
	case KindCorners:
		return "CORNERS"
	default:
		return "UNKNOW"
	}
}

// Candidate is one raw detection fed to Filter
type Candidate struct {
	Box        BBox
	Objectness float32
	// Prob is the per class probability vector
	Prob []float32
}

// Params defines the thresholds used by Filter
type Params struct {
	// ObjectnessThreshold drops candidates with an objectness less than or
	// equal to it
	ObjectnessThreshold float32
	// ClassThreshold, when set, drops candidates whose best class probability
	// is not strictly greater than it
	ClassThreshold *float32
	// IoUThreshold is the overlap above which the lower ranked of two
	// candidates of the same class is suppressed.  Zero or less disables
	// suppression
	IoUThreshold float32
	// Kind is the NMS method
	Kind Kind
	// Beta is the DIoU penalty exponent, DefaultBeta when zero
	Beta float32
}

// DefaultParams returns the thresholds darknet's detector uses by default
// - Objectness Threshold: 0.25
// - Class Threshold: unset
// - IoU Threshold: 0.45
func DefaultParams() Params {
	return Params{
		ObjectnessThreshold: 0.25,
		IoUThreshold:        0.45,
		Kind:                KindDefault,
		Beta:                DefaultBeta,
	}
}

// Result is a candidate that survived filtering
type Result struct {
	// Index of the candidate in the input slice
	Index int
	// Class is the best class index
	Class int
	// Prob is the best class probability
	Prob float32
}

// BestClass returns the index and probability of the highest class
// probability.  The first maximum wins on ties.  When threshold is not nil
// the best probability must be strictly greater than it, otherwise ok is
// false.  An empty vector has no best class
func BestClass(prob []float32, threshold *float32) (class int, p float32, ok bool) {

	if len(prob) == 0 {
		return 0, 0, false
	}

	for i, v := range prob {
		if v > p || i == 0 {
			class = i
			p = v
		}
	}

	if threshold != nil && !(p > *threshold) {
		return 0, 0, false
	}

	return class, p, true
}

// ranked is a candidate under consideration for suppression
type ranked struct {
	index int
	class int
	prob  float32
	score float32
}

// Filter gates candidates on objectness and class probability then runs
// Non-Maximum Suppression within each best class group.  The surviving
// candidates are returned in input order
func Filter(cands []Candidate, p Params) []Result {

	if len(cands) == 0 {
		return []Result{}
	}

	beta := p.Beta

	if beta <= 0 {
		beta = DefaultBeta
	}

	groups := make(map[int][]ranked)
	classes := make([]int, 0)

	for i, c := range cands {

		if p.Kind != KindCorners && c.Objectness <= p.ObjectnessThreshold {
			continue
		}

		class, prob, ok := BestClass(c.Prob, p.ClassThreshold)

		if !ok {
			continue
		}

		score := prob

		if p.Kind == KindGreedy {
			score = c.Objectness
		}

		if _, seen := groups[class]; !seen {
			classes = append(classes, class)
		}

		groups[class] = append(groups[class], ranked{
			index: i,
			class: class,
			prob:  prob,
			score: score,
		})
	}

	keep := make([]*ranked, len(cands))

	for _, class := range classes {
		group := groups[class]

		// stable so equal scores stay in input order
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].score > group[b].score
		})

		suppressed := make([]bool, len(group))

		for a := range group {

			if suppressed[a] {
				continue
			}

			keep[group[a].index] = &group[a]

			if p.IoUThreshold <= 0 {
				continue
			}

			boxA := cands[group[a].index].Box

			for b := a + 1; b < len(group); b++ {

				if suppressed[b] {
					continue
				}

				boxB := cands[group[b].index].Box

				var ov float32

				if p.Kind == KindDIoU {
					ov = DIoU(boxA, boxB, beta)
				} else {
					ov = IoU(boxA, boxB)
				}

				if ov > p.IoUThreshold {
					suppressed[b] = true
				}
			}
		}
	}

	results := make([]Result, 0, len(classes))

	for _, r := range keep {
		if r == nil {
			continue
		}

		results = append(results, Result{
			Index: r.index,
			Class: r.class,
			Prob:  r.prob,
		})
	}

	return results
}
