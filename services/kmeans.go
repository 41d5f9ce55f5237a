package services

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrTooFewPoints means there are fewer points than requested clusters.
var ErrTooFewPoints = errors.New("kmeans: fewer points than clusters")

// KMeans partitions vectors into K groups with k-means++ seeding and Lloyd
// iterations. The run is fully determined by Seed: NInit restarts draw from
// one PCG stream and the lowest-inertia restart wins, earliest on ties.
type KMeans struct {
	K       int
	Seed    uint64
	MaxIter int
	NInit   int
	Tol     float64
}

// Clustering is the outcome of KMeans.Fit. Labels are renumbered in order of
// first appearance, so point 0 is always in cluster 0.
type Clustering struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
	Clusters  int
}

// Fit clusters points. All points must share the same dimension.
func (km KMeans) Fit(points [][]float64) (*Clustering, error) {
	if km.K < 1 {
		return nil, fmt.Errorf("kmeans: invalid cluster count %d", km.K)
	}
	if len(points) < km.K {
		return nil, fmt.Errorf("%w: %d points, %d clusters", ErrTooFewPoints, len(points), km.K)
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("kmeans: point %d has dimension %d, want %d", i, len(p), dim)
		}
	}

	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}
	nInit := km.NInit
	if nInit <= 0 {
		nInit = 10
	}
	tol := km.Tol
	if tol <= 0 {
		tol = 1e-4
	}

	rng := rand.New(rand.NewPCG(km.Seed, km.Seed^0x9e3779b97f4a7c15))

	var best *Clustering
	for run := 0; run < nInit; run++ {
		centers := seedCenters(points, km.K, rng)
		labels, inertia := lloyd(points, centers, maxIter, tol)
		if best == nil || inertia < best.Inertia {
			best = &Clustering{Labels: labels, Centroids: centers, Inertia: inertia}
		}
	}

	best.renumber()
	return best, nil
}

// seedCenters picks k initial centers with k-means++: each new center is
// drawn with probability proportional to its squared distance from the
// nearest chosen one.
func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	chosen := make([]bool, n)
	centers := make([][]float64, 0, k)

	first := rng.IntN(n)
	chosen[first] = true
	centers = append(centers, clone(points[first]))

	dist := make([]float64, n)
	for i, p := range points {
		dist[i] = sqDist(p, centers[0])
	}

	for len(centers) < k {
		var total float64
		for _, d := range dist {
			total += d
		}

		next := -1
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				if d == 0 {
					continue
				}
				target -= d
				next = i
				if target <= 0 {
					break
				}
			}
		}
		if next < 0 {
			// Every remaining point coincides with a center.
			for i := range points {
				if !chosen[i] {
					next = i
					break
				}
			}
		}

		chosen[next] = true
		c := clone(points[next])
		centers = append(centers, c)
		for i, p := range points {
			if d := sqDist(p, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centers
}

// lloyd refines centers in place and returns the final labels and inertia.
func lloyd(points, centers [][]float64, maxIter int, tol float64) ([]int, float64) {
	dim := len(points[0])
	labels := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		assign(points, centers, labels)

		sums := make([][]float64, len(centers))
		counts := make([]int, len(centers))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for j, x := range p {
				sums[c][j] += x
			}
		}

		var shift float64
		for c := range centers {
			if counts[c] == 0 {
				// An empty cluster keeps its previous center.
				continue
			}
			for j := range sums[c] {
				sums[c][j] /= float64(counts[c])
			}
			shift += sqDist(centers[c], sums[c])
			centers[c] = sums[c]
		}
		if shift <= tol {
			break
		}
	}

	inertia := assign(points, centers, labels)
	return labels, inertia
}

// assign labels each point with its nearest center, lowest index on ties,
// and returns the summed squared distance.
func assign(points, centers [][]float64, labels []int) float64 {
	var inertia float64
	for i, p := range points {
		bestC, bestD := 0, math.Inf(1)
		for c, center := range centers {
			if d := sqDist(p, center); d < bestD {
				bestC, bestD = c, d
			}
		}
		labels[i] = bestC
		inertia += bestD
	}
	return inertia
}

func (c *Clustering) renumber() {
	mapping := make(map[int]int)
	centroids := make([][]float64, 0, len(c.Centroids))
	for i, l := range c.Labels {
		id, ok := mapping[l]
		if !ok {
			id = len(mapping)
			mapping[l] = id
			centroids = append(centroids, c.Centroids[l])
		}
		c.Labels[i] = id
	}
	c.Centroids = centroids
	c.Clusters = len(mapping)
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
