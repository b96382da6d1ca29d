package predict

import (
	"math"
	"testing"
)

func TestBuildTree_SimpleSplit(t *testing.T) {
	// Perfectly separable on feature 0
	features := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	targets := []float64{5, 5, 5, 50, 50, 50}

	tree := buildTree(features, targets, 0, 4)

	if got := tree.predict([]float64{2}); got != 5 {
		t.Errorf("predict(2) = %v, want 5", got)
	}
	if got := tree.predict([]float64{11}); got != 50 {
		t.Errorf("predict(11) = %v, want 50", got)
	}
}

func TestBuildTree_MaxDepthZero(t *testing.T) {
	features := [][]float64{{1}, {2}, {3}, {4}}
	targets := []float64{10, 20, 30, 40}

	tree := buildTree(features, targets, 0, 0)
	if !tree.leaf {
		t.Fatal("Depth 0 must produce a leaf")
	}
	if tree.value != 25 {
		t.Errorf("Leaf value = %v, want 25", tree.value)
	}
}

func TestTrainForest_PredictionsWithinTargetRange(t *testing.T) {
	// Every leaf is a mean of targets, so forest output must stay in range
	features := make([][]float64, 40)
	targets := make([]float64, 40)
	for i := range features {
		features[i] = []float64{float64(i), float64(i % 7)}
		targets[i] = float64(i) * 2.5
	}

	model := trainForest(features, targets, forestConfig{trees: 20, maxDepth: 5, seed: 42})

	for i := range features {
		got := model.predict(features[i])
		if math.IsNaN(got) || got < 0 || got > 97.5 {
			t.Fatalf("predict(%v) = %v, outside target range [0, 97.5]", features[i], got)
		}
	}
}

func TestTrainForest_Deterministic(t *testing.T) {
	features := [][]float64{{1, 0}, {2, 1}, {3, 2}, {4, 3}, {5, 4}, {6, 5}, {7, 6}, {8, 0}}
	targets := []float64{10, 12, 15, 20, 28, 35, 40, 44}

	cfg := forestConfig{trees: 10, maxDepth: 4, seed: 7}
	a := trainForest(features, targets, cfg)
	b := trainForest(features, targets, cfg)

	for i := range features {
		if a.predict(features[i]) != b.predict(features[i]) {
			t.Fatalf("Same seed produced different predictions for sample %d", i)
		}
	}
}

func TestCandidateThresholds(t *testing.T) {
	features := [][]float64{{1}, {3}, {3}, {5}}
	got := candidateThresholds(features, 0)

	want := []float64{2, 4}
	if len(got) != len(want) {
		t.Fatalf("Got %v thresholds, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Threshold %d = %v, want %v", i, got[i], want[i])
		}
	}
}
