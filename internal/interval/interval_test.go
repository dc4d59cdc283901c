package interval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps_HalfOpen(t *testing.T) {
	a := Interval{Start: 100, End: 200}

	assert.True(t, Overlaps(a, Interval{Start: 150, End: 250}))
	assert.True(t, Overlaps(a, Interval{Start: 199, End: 300}))
	assert.False(t, Overlaps(a, Interval{Start: 200, End: 300}), "touching endpoints do not overlap")
	assert.False(t, Overlaps(a, Interval{Start: 0, End: 100}), "touching endpoints do not overlap")
}

func TestOverlaps_Symmetric(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		a := Interval{Start: r.Int63n(1000), End: 0}
		a.End = a.Start + r.Int63n(100)
		b := Interval{Start: r.Int63n(1000), End: 0}
		b.End = b.Start + r.Int63n(100)
		assert.Equal(t, Overlaps(a, b), Overlaps(b, a))
	}
}

func TestOverlaps_Self(t *testing.T) {
	assert.True(t, Overlaps(Interval{Start: 5, End: 10}, Interval{Start: 5, End: 10}))
	assert.False(t, Overlaps(Interval{Start: 5, End: 5}, Interval{Start: 5, End: 5}), "degenerate interval overlaps nothing")
}

func TestSubtract_NoOverlap(t *testing.T) {
	a := Interval{Start: 100, End: 200}
	got := Subtract(a, []Interval{{Start: 300, End: 400}})
	assert.Equal(t, []Interval{a}, got)
}

func TestSubtract_FullCover(t *testing.T) {
	a := Interval{Start: 100, End: 200}
	assert.Empty(t, Subtract(a, []Interval{{Start: 50, End: 250}}))
}

func TestSubtract_MiddleSplit(t *testing.T) {
	a := Interval{Start: 1000, End: 2000}
	got := Subtract(a, []Interval{{Start: 1200, End: 1400}})
	assert.Equal(t, []Interval{{Start: 1000, End: 1200}, {Start: 1400, End: 2000}}, got)
}

func TestSubtract_TouchingEdges(t *testing.T) {
	// Fragments that would be zero-length are dropped.
	a := Interval{Start: 100, End: 200}
	got := Subtract(a, []Interval{{Start: 100, End: 150}})
	assert.Equal(t, []Interval{{Start: 150, End: 200}}, got)

	got = Subtract(a, []Interval{{Start: 150, End: 200}})
	assert.Equal(t, []Interval{{Start: 100, End: 150}}, got)
}

func TestSubtract_OverlappingSubtrahends(t *testing.T) {
	a := Interval{Start: 0, End: 100}
	bs := []Interval{{Start: 10, End: 40}, {Start: 30, End: 60}, {Start: 55, End: 58}}
	got := Subtract(a, bs)
	assert.Equal(t, []Interval{{Start: 0, End: 10}, {Start: 60, End: 100}}, got)
}

func TestSubtract_OrderIndependent(t *testing.T) {
	a := Interval{Start: 0, End: 1000}
	bs := []Interval{{Start: 700, End: 800}, {Start: 100, End: 200}, {Start: 400, End: 500}}
	rev := []Interval{bs[2], bs[0], bs[1]}
	assert.Equal(t, Subtract(a, bs), Subtract(a, rev))
}

func TestSubtract_ResultDisjointFromSubtrahends(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		a := Interval{Start: 0, End: 10000}
		var bs []Interval
		for j := 0; j < 1+r.Intn(10); j++ {
			s := r.Int63n(10000)
			bs = append(bs, Interval{Start: s, End: s + r.Int63n(500)})
		}
		got := Subtract(a, bs)

		covered := int64(0)
		for _, iv := range got {
			assert.Greater(t, iv.Len(), int64(0), "no degenerate fragments")
			covered += iv.Len()
			for _, b := range bs {
				assert.False(t, Overlaps(iv, b), "fragment %v overlaps subtrahend %v", iv, b)
			}
		}
		assert.LessOrEqual(t, covered, a.Len())
	}
}

func TestSubtractAll(t *testing.T) {
	as := []Interval{{Start: 0, End: 50}, {Start: 100, End: 150}}
	bs := []Interval{{Start: 40, End: 110}}
	got := SubtractAll(as, bs)
	assert.Equal(t, []Interval{{Start: 0, End: 40}, {Start: 110, End: 150}}, got)
}
