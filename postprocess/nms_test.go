package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32(v float32) *float32 {
	return &v
}

func TestBestClass(t *testing.T) {

	tests := []struct {
		name      string
		prob      []float32
		threshold *float32
		class     int
		p         float32
		ok        bool
	}{
		{"argmax", []float32{0.1, 0.7, 0.2}, nil, 1, 0.7, true},
		{"tie picks lower index", []float32{0.4, 0.6, 0.6}, nil, 1, 0.6, true},
		{"all zero", []float32{0, 0, 0}, nil, 0, 0, true},
		{"empty", []float32{}, nil, 0, 0, false},
		{"above threshold", []float32{0.1, 0.7}, f32(0.5), 1, 0.7, true},
		{"equal to threshold drops", []float32{0.1, 0.5}, f32(0.5), 0, 0, false},
		{"below threshold drops", []float32{0.1, 0.4}, f32(0.5), 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			class, p, ok := BestClass(tc.prob, tc.threshold)

			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.class, class)
			assert.Equal(t, tc.p, p)
		})
	}
}

func TestFilterEmpty(t *testing.T) {

	res := Filter(nil, DefaultParams())

	require.NotNil(t, res)
	assert.Empty(t, res)
}

func TestFilterSuppression(t *testing.T) {

	a := BBox{0.5, 0.5, 0.4, 0.4}
	// shifted by 0.04, IoU ~0.82
	near := BBox{0.54, 0.5, 0.4, 0.4}
	// shifted by 0.3, IoU 0.14
	far := BBox{0.8, 0.5, 0.4, 0.4}

	p := Params{ObjectnessThreshold: 0.1, IoUThreshold: 0.5}

	t.Run("above threshold suppresses lower score", func(t *testing.T) {
		res := Filter([]Candidate{
			{Box: near, Objectness: 0.9, Prob: []float32{0.6}},
			{Box: a, Objectness: 0.9, Prob: []float32{0.8}},
		}, p)

		assert.Equal(t, []Result{{Index: 1, Class: 0, Prob: 0.8}}, res)
	})

	t.Run("below threshold keeps both", func(t *testing.T) {
		res := Filter([]Candidate{
			{Box: a, Objectness: 0.9, Prob: []float32{0.8}},
			{Box: far, Objectness: 0.9, Prob: []float32{0.6}},
		}, p)

		assert.Equal(t, []Result{
			{Index: 0, Class: 0, Prob: 0.8},
			{Index: 1, Class: 0, Prob: 0.6},
		}, res)
	})

	t.Run("different classes never suppress", func(t *testing.T) {
		res := Filter([]Candidate{
			{Box: a, Objectness: 0.9, Prob: []float32{0.8, 0.1}},
			{Box: a, Objectness: 0.9, Prob: []float32{0.1, 0.7}},
		}, p)

		require.Len(t, res, 2)
		assert.Equal(t, 0, res[0].Class)
		assert.Equal(t, 1, res[1].Class)
	})

	t.Run("disabled when threshold is zero", func(t *testing.T) {
		res := Filter([]Candidate{
			{Box: a, Objectness: 0.9, Prob: []float32{0.8}},
			{Box: a, Objectness: 0.9, Prob: []float32{0.7}},
		}, Params{ObjectnessThreshold: 0.1})

		assert.Len(t, res, 2)
	})

	t.Run("equal scores keep the earlier candidate", func(t *testing.T) {
		res := Filter([]Candidate{
			{Box: near, Objectness: 0.9, Prob: []float32{0.8}},
			{Box: a, Objectness: 0.9, Prob: []float32{0.8}},
		}, p)

		assert.Equal(t, []Result{{Index: 0, Class: 0, Prob: 0.8}}, res)
	})
}

func TestFilterObjectnessGate(t *testing.T) {

	cands := []Candidate{
		{Box: BBox{0.2, 0.2, 0.1, 0.1}, Objectness: 0.25, Prob: []float32{0.9}},
		{Box: BBox{0.8, 0.8, 0.1, 0.1}, Objectness: 0.26, Prob: []float32{0.9}},
		{Box: BBox{0.5, 0.5, 0.1, 0.1}, Objectness: 0.1, Prob: []float32{0.9}},
	}

	p := DefaultParams()

	res := Filter(cands, p)
	assert.Equal(t, []Result{{Index: 1, Class: 0, Prob: 0.9}}, res,
		"objectness equal to the threshold is dropped")

	p.Kind = KindCorners

	res = Filter(cands, p)
	assert.Len(t, res, 3, "corners kind skips the objectness gate")
}

func TestFilterClassThreshold(t *testing.T) {

	cands := []Candidate{
		{Box: BBox{0.2, 0.2, 0.1, 0.1}, Objectness: 0.9, Prob: []float32{0.5, 0.1}},
		{Box: BBox{0.8, 0.8, 0.1, 0.1}, Objectness: 0.9, Prob: []float32{0.1, 0.51}},
	}

	p := DefaultParams()
	p.ClassThreshold = f32(0.5)

	res := Filter(cands, p)
	assert.Equal(t, []Result{{Index: 1, Class: 1, Prob: 0.51}}, res)

	p.ClassThreshold = nil

	res = Filter(cands, p)
	assert.Len(t, res, 2, "no class threshold keeps every candidate")
}

func TestFilterGreedyRanksByObjectness(t *testing.T) {

	box := BBox{0.5, 0.5, 0.4, 0.4}

	cands := []Candidate{
		{Box: box, Objectness: 0.5, Prob: []float32{0.9}},
		{Box: box, Objectness: 0.8, Prob: []float32{0.6}},
	}

	p := DefaultParams()

	res := Filter(cands, p)
	assert.Equal(t, []Result{{Index: 0, Class: 0, Prob: 0.9}}, res)

	p.Kind = KindGreedy

	res = Filter(cands, p)
	assert.Equal(t, []Result{{Index: 1, Class: 0, Prob: 0.6}}, res)
}

func TestFilterDIoU(t *testing.T) {

	// same center as a, DIoU equals IoU of 0.25
	a := BBox{0.5, 0.5, 0.4, 0.4}
	b := BBox{0.5, 0.5, 0.2, 0.2}
	// IoU with a is 0.6, the center distance penalty brings DIoU to ~0.49
	c := BBox{0.6, 0.5, 0.4, 0.4}

	cands := []Candidate{
		{Box: a, Objectness: 0.9, Prob: []float32{0.9}},
		{Box: b, Objectness: 0.9, Prob: []float32{0.8}},
		{Box: c, Objectness: 0.9, Prob: []float32{0.7}},
	}

	p := Params{ObjectnessThreshold: 0.1, IoUThreshold: 0.6, Kind: KindDIoU}

	res := Filter(cands, p)
	assert.Len(t, res, 3)

	p.IoUThreshold = 0.2

	res = Filter(cands, p)
	assert.Equal(t, []int{0}, indices(res))
}

func TestFilterDeterministic(t *testing.T) {

	cands := make([]Candidate, 0, 60)

	for i := 0; i < 60; i++ {
		x := float32(i%6) * 0.05
		y := float32(i%5) * 0.05
		cands = append(cands, Candidate{
			Box:        BBox{0.3 + x, 0.3 + y, 0.2, 0.2},
			Objectness: 0.3 + float32(i%7)*0.1,
			Prob:       []float32{float32(i%3) * 0.3, float32(i%4) * 0.2, 0.3},
		})
	}

	for _, kind := range []Kind{KindDefault, KindGreedy, KindDIoU, KindCorners} {
		p := DefaultParams()
		p.Kind = kind

		first := Filter(cands, p)

		for run := 0; run < 10; run++ {
			require.Equal(t, first, Filter(cands, p), kind.String())
		}

		for i := 1; i < len(first); i++ {
			assert.Less(t, first[i-1].Index, first[i].Index, "output keeps input order")
		}
	}
}

func TestDefaultParams(t *testing.T) {

	p := DefaultParams()

	assert.Equal(t, float32(0.6), p.Beta)
	assert.Equal(t, DefaultBeta, p.Beta)
	assert.Equal(t, float32(0.45), p.IoUThreshold)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "DIOU", KindDIoU.String())
	assert.Equal(t, "UNKNOW", Kind(42).String())
}

func indices(res []Result) []int {

	out := make([]int, len(res))

	for i, r := range res {
		out[i] = r.Index
	}

	return out
}
