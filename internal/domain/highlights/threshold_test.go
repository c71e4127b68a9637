package highlights

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/forPelevin/dmcut/internal/types"
)

func pointsWithScores(scores ...float64) []types.DensityPoint {
	out := make([]types.DensityPoint, len(scores))
	for i, s := range scores {
		out[i] = types.DensityPoint{Second: i, Score: s, Count: 1}
	}
	return out
}

func TestSelectThreshold(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		min    float64
		want   float64
	}{
		{"top decile below configured floor", []float64{3}, 5, 3},
		{"configured floor is stricter", []float64{20, 12, 8}, 5, 5},
		{"single point", []float64{7}, 100, 7},
		{"fewer than ten points picks the max", []float64{1, 9, 4, 2, 8, 3, 7, 6, 5}, 100, 9},
		{"ten points picks the second highest", []float64{1, 10, 4, 2, 8, 3, 7, 6, 5, 9}, 100, 9},
		{"twenty five points picks rank two", []float64{
			25, 24, 23, 22, 21, 20, 19, 18, 17, 16, 15, 14, 13,
			12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1,
		}, 100, 23},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectThreshold(pointsWithScores(tt.scores...), tt.min)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SelectThreshold = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectThreshold_Empty(t *testing.T) {
	if _, err := SelectThreshold(nil, 5); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSelectThreshold_Bounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for round := 0; round < 50; round++ {
		scores := make([]float64, 1+rng.IntN(60))
		maxScore := 0.0
		for i := range scores {
			scores[i] = rng.Float64() * 50
			maxScore = max(maxScore, scores[i])
		}
		configured := rng.Float64() * 60
		got, err := SelectThreshold(pointsWithScores(scores...), configured)
		if err != nil {
			t.Fatal(err)
		}
		if got > configured {
			t.Fatalf("threshold %v above configured %v", got, configured)
		}
		if got > maxScore {
			t.Fatalf("threshold %v above max score %v", got, maxScore)
		}
	}
}

func TestSelectThreshold_DoesNotReorderInput(t *testing.T) {
	pts := pointsWithScores(1, 5, 3)
	if _, err := SelectThreshold(pts, 10); err != nil {
		t.Fatal(err)
	}
	if pts[0].Score != 1 || pts[1].Score != 5 || pts[2].Score != 3 {
		t.Fatalf("input mutated: %v", pts)
	}
}
