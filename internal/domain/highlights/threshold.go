package highlights

import (
	"sort"

	"github.com/forPelevin/dmcut/internal/types"
)

// topDecile is the rank fraction used to relax the configured floor.
const topDecile = 0.1

// SelectThreshold returns min(configuredMin, p) where p is the score at rank
// floor(n*0.1) in descending order. With fewer than ten points p is the
// maximum score.
func SelectThreshold(points []types.DensityPoint, configuredMin float64) (float64, error) {
	if len(points) == 0 {
		return 0, ErrEmptyInput
	}
	scores := make([]float64, len(points))
	for i, p := range points {
		scores[i] = p.Score
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	p := scores[int(float64(len(scores))*topDecile)]
	return min(configuredMin, p), nil
}
