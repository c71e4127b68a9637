package highlights

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/forPelevin/dmcut/internal/types"
)

func TestEstimateDensity_ForwardWindow(t *testing.T) {
	w, err := NewWeigher([]Rule{{Pattern: "笑死", Score: 2.0}}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	events := []types.ChatEvent{
		{Time: 15, Text: "普通"},
		{Time: 10.9, Text: "笑死"},
		{Time: 12.2, Text: "笑死"},
	}
	got := EstimateDensity(events, w, 10)

	p, ok := got[10]
	if !ok {
		t.Fatalf("expected a point at second 10, got %v", got)
	}
	if p.Score != 5.0 || p.Count != 3 {
		t.Fatalf("second 10 = %+v, want score 5 count 3", p)
	}
	if got[11].Score != 3.0 {
		t.Fatalf("second 11 score = %v, want 3", got[11].Score)
	}
	if got[15].Score != 1.0 || got[15].Count != 1 {
		t.Fatalf("second 15 = %+v, want score 1 count 1", got[15])
	}
	if _, ok := got[9]; ok {
		t.Fatalf("no point expected before the first event second")
	}
	if _, ok := got[16]; ok {
		t.Fatalf("no point expected after the last event second")
	}
}

func TestEstimateDensity_WindowExcludesLateEvent(t *testing.T) {
	w, _ := NewWeigher([]Rule{{Pattern: "笑死", Score: 2.0}}, 0, 0)
	events := []types.ChatEvent{{Time: 10, Text: "笑死"}, {Time: 12, Text: "笑死"}, {Time: 15, Text: "普通"}}
	got := EstimateDensity(events, w, 5)
	if got[10].Score != 4.0 {
		t.Fatalf("second 10 score = %v, want 4 when 15 falls outside [10,15)", got[10].Score)
	}
}

func TestEstimateDensity_SkipsEmptyGaps(t *testing.T) {
	w, _ := NewWeigher(nil, 0, 0)
	events := []types.ChatEvent{{Time: 0.5, Text: "a"}, {Time: 100, Text: "b"}}
	got := EstimateDensity(events, w, 3)
	for sec := 1; sec < 98; sec++ {
		if _, ok := got[sec]; ok {
			t.Fatalf("unexpected point at %d", sec)
		}
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 points (0, 98, 99, 100), got %d: %v", len(got), SortedPoints(got))
	}
}

func TestEstimateDensity_Empty(t *testing.T) {
	w, _ := NewWeigher(nil, 0, 0)
	if got := EstimateDensity(nil, w, 10); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestEstimateDensity_BoxFilterIdentity(t *testing.T) {
	w, _ := NewWeigher(DefaultRules, DefaultLongTextChars, DefaultLongTextBonus)
	texts := []string{"普通", "笑死", "?", "哈哈哈", "可爱捏", "这是一条非常非常非常非常长的弹幕内容"}
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 20; round++ {
		window := 1 + rng.IntN(15)
		events := make([]types.ChatEvent, 1+rng.IntN(200))
		raw := map[int]float64{}
		for i := range events {
			ev := types.ChatEvent{Time: rng.Float64() * 300, Text: texts[rng.IntN(len(texts))]}
			events[i] = ev
			raw[int(ev.Time)] += w.Weight(ev.Text)
		}

		got := EstimateDensity(events, w, window)
		for sec, p := range got {
			var want float64
			for i := 0; i < window; i++ {
				want += raw[sec+i]
			}
			if math.Abs(p.Score-want) > 1e-9 {
				t.Fatalf("round %d second %d: score %v, want %v", round, sec, p.Score, want)
			}
			if p.Second != sec {
				t.Fatalf("point keyed %d carries second %d", sec, p.Second)
			}
		}
	}
}

func TestSortedPoints_Ascending(t *testing.T) {
	m := map[int]types.DensityPoint{
		5: {Second: 5, Score: 1},
		1: {Second: 1, Score: 3},
		3: {Second: 3, Score: 2},
	}
	got := SortedPoints(m)
	for i := 1; i < len(got); i++ {
		if got[i-1].Second >= got[i].Second {
			t.Fatalf("not ascending: %v", got)
		}
	}
}
