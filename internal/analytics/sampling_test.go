package analytics

import (
	"reflect"
	"testing"
)

func TestSamplePairsDeterministic(t *testing.T) {
	s := NewIndexMixSampler()
	first := s.SamplePairs(10, 5)
	second := s.SamplePairs(10, 5)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("sampler not deterministic: %v vs %v", first, second)
	}

	want := [][2]int{{0, 4}, {5, 7}, {4, 6}, {1, 7}, {5, 9}}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("unexpected sequence: got %v, want %v", first, want)
	}
}

func TestSamplePairsDistinctAndOrdered(t *testing.T) {
	pairs := NewIndexMixSampler().SamplePairs(20, 50)
	seen := make(map[[2]int]bool)
	for _, p := range pairs {
		if p[0] >= p[1] {
			t.Fatalf("pair %v not strictly ordered", p)
		}
		if seen[p] {
			t.Fatalf("duplicate pair %v", p)
		}
		seen[p] = true
	}
}

// The affine maps cycle with period n, so small n can exhaust the attempt
// budget before reaching the target. That is accepted behavior: fewer
// pairs, never duplicates.
func TestSamplePairsSmallDomain(t *testing.T) {
	pairs := NewIndexMixSampler().SamplePairs(3, 3)
	want := [][2]int{{1, 2}}
	if !reflect.DeepEqual(pairs, want) {
		t.Fatalf("got %v, want %v", pairs, want)
	}
}

func TestSamplePairsDegenerate(t *testing.T) {
	s := NewIndexMixSampler()
	if got := s.SamplePairs(1, 10); got != nil {
		t.Fatalf("n=1 should yield nil, got %v", got)
	}
	if got := s.SamplePairs(10, 0); got != nil {
		t.Fatalf("target=0 should yield nil, got %v", got)
	}
}

func TestMaxSamplePairs(t *testing.T) {
	cases := []struct {
		n, cap, want int
	}{
		{4, 200, 6},
		{30, 200, 200},
		{2, 200, 1},
		{0, 200, 0},
	}
	for _, c := range cases {
		if got := maxSamplePairs(c.n, c.cap); got != c.want {
			t.Errorf("maxSamplePairs(%d, %d) = %d, want %d", c.n, c.cap, got, c.want)
		}
	}
}
