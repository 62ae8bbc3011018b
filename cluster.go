package img2ascii

import (
	"fmt"
	"math/rand/v2"

	"github.com/muesli/clusters"
)

const (
	// DefaultSeed is the k-means random_state used unless a seed is given.
	DefaultSeed          uint64 = 42
	DefaultMaxIterations        = 300
	DefaultRestarts             = 10
)

// Assignment is the result of clustering a brightness sequence. Labels has
// one entry per input value, in input order, each in [0, len(Centroids)).
type Assignment struct {
	Labels     []int
	Centroids  []float64
	Iterations int
	Inertia    float64
}

// Clusterer partitions scalar values into k groups.
type Clusterer interface {
	Name() string
	Cluster(values []float64, k int) (Assignment, error)
}

func validateClusterInput(values []float64, k int) error {
	if k < 1 {
		return fmt.Errorf("%w: cluster count must be at least 1, got %d", ErrClustering, k)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: no brightness values to cluster", ErrClustering)
	}
	return nil
}

// KMeans is Lloyd's algorithm with k-means++ seeding. All randomness comes
// from a PCG source keyed by Seed and the restart number, so identical input
// always produces an identical Assignment.
//
// Points are assigned to the nearest centre, ties going to the lower index.
// A centre that loses all its points keeps its last position. When the input
// has fewer distinct values than k the surplus centres start as copies of the
// first centre and stay empty.
type KMeans struct {
	Seed          uint64
	MaxIterations int
	Restarts      int
}

// NewKMeans returns a KMeans with the default iteration cap and restarts.
func NewKMeans(seed uint64) KMeans {
	return KMeans{
		Seed:          seed,
		MaxIterations: DefaultMaxIterations,
		Restarts:      DefaultRestarts,
	}
}

func (km KMeans) Name() string { return "kmeans" }

// Cluster runs Restarts independent seedings and keeps the one with the
// lowest inertia; on equal inertia the earlier run wins.
func (km KMeans) Cluster(values []float64, k int) (Assignment, error) {
	if err := validateClusterInput(values, k); err != nil {
		return Assignment{}, err
	}
	maxIter := km.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	restarts := max(km.Restarts, 1)

	dataset := make(clusters.Observations, len(values))
	for i, v := range values {
		dataset[i] = clusters.Coordinates{v}
	}

	var best Assignment
	for run := 0; run < restarts; run++ {
		rng := rand.New(rand.NewPCG(km.Seed, uint64(run)))
		a := lloyd(dataset, seedCenters(dataset, k, rng), maxIter)
		if run == 0 || a.Inertia < best.Inertia {
			best = a
		}
	}
	return best, nil
}

// seedCenters picks k initial centres with k-means++: the first uniformly,
// each next one with probability proportional to its squared distance from
// the nearest centre chosen so far.
func seedCenters(dataset clusters.Observations, k int, rng *rand.Rand) clusters.Clusters {
	cc := make(clusters.Clusters, 0, k)
	first := dataset[rng.IntN(len(dataset))]
	cc = append(cc, clusters.Cluster{Center: cloneCoordinates(first.Coordinates())})

	d2 := make([]float64, len(dataset))
	for i, o := range dataset {
		d2[i] = o.Distance(cc[0].Center)
	}

	for len(cc) < k {
		var total float64
		for _, d := range d2 {
			total += d
		}
		if total == 0 {
			// every point already sits on a centre
			cc = append(cc, clusters.Cluster{Center: cloneCoordinates(cc[0].Center)})
			continue
		}

		target := rng.Float64() * total
		pick := -1
		for i, d := range d2 {
			target -= d
			if target < 0 && d > 0 {
				pick = i
				break
			}
		}
		if pick < 0 {
			// rounding left target at or just above zero
			for i := len(d2) - 1; i >= 0; i-- {
				if d2[i] > 0 {
					pick = i
					break
				}
			}
		}

		center := cloneCoordinates(dataset[pick].Coordinates())
		cc = append(cc, clusters.Cluster{Center: center})
		for i, o := range dataset {
			d2[i] = min(d2[i], o.Distance(center))
		}
	}
	return cc
}

// lloyd alternates assignment and centre updates until no label changes or
// maxIter updates have run. The returned labels always belong to the
// returned centroids.
func lloyd(dataset clusters.Observations, cc clusters.Clusters, maxIter int) Assignment {
	labels := make([]int, len(dataset))
	for i := range labels {
		labels[i] = -1
	}

	iterations := 0
	for assign(cc, dataset, labels) && iterations < maxIter {
		recenter(cc)
		iterations++
	}

	a := Assignment{
		Labels:     labels,
		Centroids:  make([]float64, len(cc)),
		Iterations: iterations,
	}
	for i, c := range cc {
		a.Centroids[i] = c.Center[0]
	}
	for i, o := range dataset {
		a.Inertia += o.Distance(cc[labels[i]].Center)
	}
	return a
}

// assign moves every observation into its nearest cluster and reports
// whether any label changed.
func assign(cc clusters.Clusters, dataset clusters.Observations, labels []int) bool {
	for i := range cc {
		cc[i].Observations = cc[i].Observations[:0]
	}
	changed := false
	for i, o := range dataset {
		ci := cc.Nearest(o)
		cc[ci].Append(o)
		if labels[i] != ci {
			labels[i] = ci
			changed = true
		}
	}
	return changed
}

// recenter moves each non-empty cluster to the mean of its members.
func recenter(cc clusters.Clusters) {
	for i := range cc {
		center, err := cc[i].Observations.Center()
		if err != nil {
			continue
		}
		cc[i].Center = center
	}
}

func cloneCoordinates(c clusters.Coordinates) clusters.Coordinates {
	return append(clusters.Coordinates(nil), c...)
}
