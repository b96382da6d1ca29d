package predict

import "math/rand"

// forestConfig holds the ensemble hyperparameters
type forestConfig struct {
	trees    int
	maxDepth int
	seed     int64
}

// forestModel is a bagged ensemble of regression trees. Training with the
// same data and seed always produces the same model.
type forestModel struct {
	trees []*treeNode
}

// trainForest fits the ensemble: each tree is grown on a bootstrap sample of
// the training set drawn from a single seeded source.
func trainForest(features [][]float64, targets []float64, cfg forestConfig) *forestModel {
	rng := rand.New(rand.NewSource(cfg.seed))
	n := len(targets)

	trees := make([]*treeNode, cfg.trees)
	for t := range trees {
		sampleX := make([][]float64, n)
		sampleY := make([]float64, n)
		for i := 0; i < n; i++ {
			idx := rng.Intn(n)
			sampleX[i] = features[idx]
			sampleY[i] = targets[idx]
		}
		trees[t] = buildTree(sampleX, sampleY, 0, cfg.maxDepth)
	}

	return &forestModel{trees: trees}
}

// predict averages the tree predictions for one sample
func (m *forestModel) predict(sample []float64) float64 {
	if len(m.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, tree := range m.trees {
		sum += tree.predict(sample)
	}
	return sum / float64(len(m.trees))
}
