package quantize

import (
	"fmt"
	"math"
	"math/rand"

	"pixelart/internal/errdefs"
)

// KMeans is the built-in clustering primitive: iterative refinement with
// random restarts, keeping the restart with the lowest within-cluster sum
// of squares.
type KMeans struct {
	opts Options
}

// NewKMeans returns a k-means clusterer with the given convergence policy.
// Zero-valued fields fall back to the defaults.
func NewKMeans(opts Options) *KMeans {
	def := DefaultOptions()
	if opts.Restarts <= 0 {
		opts.Restarts = def.Restarts
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = def.Epsilon
	}
	return &KMeans{opts: opts}
}

// Cluster implements Clusterer.
func (km *KMeans) Cluster(points [][3]float64, k int) ([][3]float64, []int, error) {
	if len(points) == 0 {
		return nil, nil, fmt.Errorf("%w: no points to cluster", errdefs.ErrInvalidInput)
	}
	if k < 1 {
		return nil, nil, fmt.Errorf("%w: k must be >= 1, got %d", errdefs.ErrInvalidParameter, k)
	}
	if k >= len(points) {
		// Trivially one cluster per point.
		centers := make([][3]float64, len(points))
		labels := make([]int, len(points))
		for i, p := range points {
			centers[i] = p
			labels[i] = i
		}
		return centers, labels, nil
	}

	var rng *rand.Rand
	if km.opts.Seed != 0 {
		rng = rand.New(rand.NewSource(km.opts.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	bestSSE := math.Inf(1)
	var bestCenters [][3]float64
	var bestLabels []int

	for r := 0; r < km.opts.Restarts; r++ {
		centers := km.initialCenters(points, k, rng)
		labels := make([]int, len(points))

		for it := 0; it < km.opts.MaxIterations; it++ {
			assign(points, centers, labels)
			moved := km.recompute(points, centers, labels, rng)
			if moved < km.opts.Epsilon {
				break
			}
		}
		assign(points, centers, labels)

		sse := 0.0
		for i, p := range points {
			sse += dist2(p, centers[labels[i]])
		}
		if sse < bestSSE {
			bestSSE = sse
			bestCenters = centers
			bestLabels = labels
		}
	}

	return bestCenters, bestLabels, nil
}

// initialCenters samples k distinct points as starting centers.
func (km *KMeans) initialCenters(points [][3]float64, k int, rng *rand.Rand) [][3]float64 {
	centers := make([][3]float64, 0, k)
	seen := make(map[int]struct{}, k)
	// Cap the rejection sampling; duplicate start centers are tolerable.
	for attempts := 0; len(centers) < k && attempts < k*20; attempts++ {
		i := rng.Intn(len(points))
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		centers = append(centers, points[i])
	}
	for len(centers) < k {
		centers = append(centers, points[rng.Intn(len(points))])
	}
	return centers
}

// recompute moves each center to the mean of its assigned points and returns
// the largest center displacement. Empty clusters are re-seeded from a random
// point so every palette slot stays usable.
func (km *KMeans) recompute(points [][3]float64, centers [][3]float64, labels []int, rng *rand.Rand) float64 {
	k := len(centers)
	sums := make([][3]float64, k)
	counts := make([]int, k)
	for i, p := range points {
		l := labels[i]
		sums[l][0] += p[0]
		sums[l][1] += p[1]
		sums[l][2] += p[2]
		counts[l]++
	}

	maxMove := 0.0
	for c := 0; c < k; c++ {
		var next [3]float64
		if counts[c] == 0 {
			next = points[rng.Intn(len(points))]
		} else {
			n := float64(counts[c])
			next = [3]float64{sums[c][0] / n, sums[c][1] / n, sums[c][2] / n}
		}
		if move := math.Sqrt(dist2(next, centers[c])); move > maxMove {
			maxMove = move
		}
		centers[c] = next
	}
	return maxMove
}

func assign(points [][3]float64, centers [][3]float64, labels []int) {
	for i, p := range points {
		best := 0
		bestD := dist2(p, centers[0])
		for c := 1; c < len(centers); c++ {
			if d := dist2(p, centers[c]); d < bestD {
				bestD = d
				best = c
			}
		}
		labels[i] = best
	}
}

func dist2(a, b [3]float64) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return dr*dr + dg*dg + db*db
}
