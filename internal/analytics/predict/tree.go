package predict

import "sort"

// treeNode is one node of a regression tree. Leaves carry the mean target of
// the samples that reached them.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

// minLeafSamples is the smallest sample set a split may produce
const minLeafSamples = 2

// buildTree grows a regression tree by recursively choosing the split that
// most reduces the sum of squared errors of the target.
func buildTree(features [][]float64, targets []float64, depth, maxDepth int) *treeNode {
	if depth >= maxDepth || len(targets) < 2*minLeafSamples || allEqual(targets) {
		return &treeNode{leaf: true, value: mean(targets)}
	}

	bestFeature, bestThreshold, found := bestSplit(features, targets)
	if !found {
		return &treeNode{leaf: true, value: mean(targets)}
	}

	leftX, leftY, rightX, rightY := partition(features, targets, bestFeature, bestThreshold)
	if len(leftY) < minLeafSamples || len(rightY) < minLeafSamples {
		return &treeNode{leaf: true, value: mean(targets)}
	}

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      buildTree(leftX, leftY, depth+1, maxDepth),
		right:     buildTree(rightX, rightY, depth+1, maxDepth),
	}
}

// predict walks the tree for one sample
func (n *treeNode) predict(sample []float64) float64 {
	if n.leaf {
		return n.value
	}
	if sample[n.feature] <= n.threshold {
		return n.left.predict(sample)
	}
	return n.right.predict(sample)
}

// bestSplit scans every feature and candidate threshold for the split with
// the lowest weighted squared error. Candidate thresholds are midpoints
// between consecutive distinct feature values.
func bestSplit(features [][]float64, targets []float64) (int, float64, bool) {
	bestErr := sse(targets)
	bestFeature, bestThreshold := -1, 0.0

	numFeatures := len(features[0])
	for f := 0; f < numFeatures; f++ {
		for _, threshold := range candidateThresholds(features, f) {
			_, leftY, _, rightY := partition(features, targets, f, threshold)
			if len(leftY) < minLeafSamples || len(rightY) < minLeafSamples {
				continue
			}
			if err := sse(leftY) + sse(rightY); err < bestErr {
				bestErr = err
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// candidateThresholds returns midpoints between consecutive distinct values
// of the given feature column.
func candidateThresholds(features [][]float64, feature int) []float64 {
	values := make([]float64, len(features))
	for i, row := range features {
		values[i] = row[feature]
	}
	sort.Float64s(values)

	thresholds := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			thresholds = append(thresholds, (values[i]+values[i-1])/2)
		}
	}
	return thresholds
}

// partition splits the samples around a feature threshold
func partition(features [][]float64, targets []float64, feature int, threshold float64) (
	leftX [][]float64, leftY []float64, rightX [][]float64, rightY []float64,
) {
	for i, row := range features {
		if row[feature] <= threshold {
			leftX = append(leftX, row)
			leftY = append(leftY, targets[i])
		} else {
			rightX = append(rightX, row)
			rightY = append(rightY, targets[i])
		}
	}
	return leftX, leftY, rightX, rightY
}

// sse is the sum of squared errors of the values around their mean
func sse(values []float64) float64 {
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return sum
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
