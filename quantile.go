package img2ascii

import (
	"fmt"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// QuantileClusterer bins values at the i/k empirical quantiles. It needs no
// seed and always produces the same labels for the same multiset of values.
// A value equal to a cut point falls in the lower bin. Each centroid is the
// mean of its bin; an empty bin takes its lower cut as centroid.
type QuantileClusterer struct{}

func (QuantileClusterer) Name() string { return "quantile" }

func (QuantileClusterer) Cluster(values []float64, k int) (Assignment, error) {
	if err := validateClusterInput(values, k); err != nil {
		return Assignment{}, err
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	cuts := make([]float64, k-1)
	for i := 1; i < k; i++ {
		cuts[i-1] = stat.Quantile(float64(i)/float64(k), stat.Empirical, sorted, nil)
	}

	labels := make([]int, len(values))
	members := make([][]float64, k)
	for i, v := range values {
		label := sort.SearchFloat64s(cuts, v)
		labels[i] = label
		members[label] = append(members[label], v)
	}

	a := Assignment{
		Labels:    labels,
		Centroids: make([]float64, k),
	}
	for label, m := range members {
		switch {
		case len(m) > 0:
			a.Centroids[label] = stat.Mean(m, nil)
		case label == 0:
			a.Centroids[label] = sorted[0]
		default:
			a.Centroids[label] = cuts[label-1]
		}
	}
	for i, v := range values {
		d := v - a.Centroids[labels[i]]
		a.Inertia += d * d
	}
	return a, nil
}

// ParseClusterer returns the clusterer registered under name.
func ParseClusterer(name string, seed uint64) (Clusterer, error) {
	switch name {
	case "kmeans", "":
		return NewKMeans(seed), nil
	case "quantile":
		return QuantileClusterer{}, nil
	}
	return nil, fmt.Errorf("%w: unknown clustering method %q", ErrInvalidInput, name)
}
