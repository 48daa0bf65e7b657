package analytics

// PairSampler selects unordered index pairs for sampled betweenness. It is
// an interface so tests can substitute alternate deterministic sequences;
// the production sampler must stay deterministic or repeated runs on
// identical data stop being reproducible.
type PairSampler interface {
	// SamplePairs returns up to target distinct unordered pairs of
	// indices in [0, n).
	SamplePairs(n, target int) [][2]int
}

// indexMixSampler generates pairs by mixing the attempt counter through
// two co-prime affine maps. Not random, just well spread.
type indexMixSampler struct{}

// NewIndexMixSampler returns the default deterministic sampler.
func NewIndexMixSampler() PairSampler {
	return indexMixSampler{}
}

func (indexMixSampler) SamplePairs(n, target int) [][2]int {
	if n < 2 || target <= 0 {
		return nil
	}

	maxAttempts := target * 10
	seen := make(map[[2]int]bool, target)
	pairs := make([][2]int, 0, target)

	for attempts := 0; attempts < maxAttempts && len(pairs) < target; attempts++ {
		si := (attempts*7 + 13) % n
		ti := (attempts*11 + 23) % n
		if si == ti {
			continue
		}
		if si > ti {
			si, ti = ti, si
		}
		key := [2]int{si, ti}
		if seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, key)
	}
	return pairs
}

// maxSamplePairs returns min(cap, C(n,2)).
func maxSamplePairs(n, cap int) int {
	total := n * (n - 1) / 2
	if total < cap {
		return total
	}
	return cap
}
