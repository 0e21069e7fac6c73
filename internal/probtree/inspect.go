package probtree

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/deepanalytics/reasoning-engines/internal/engineerr"
)

// InspectTree builds a full statistical snapshot of the tree: per-node
// aggregates, distributions, active-path counts, and deterministic
// rule-based recommendations. The independent aggregate passes below
// have no data dependency on one another, so they run concurrently via
// errgroup.
func (e *Engine) InspectTree(ctx context.Context) (*TreeSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}
	if !e.store.HasTree() {
		return nil, engineerr.NotFound("tree", "no tree created in this session")
	}

	nodes := e.store.All()
	snap := &TreeSnapshot{
		Revision:       e.store.Revision(),
		TotalNodes:     len(nodes),
		ConfidenceDist: map[int]int{},
		DepthDist:      map[int]int{},
	}

	var (
		probStats     probabilityStats
		lengthStats   lengthStats
		depthCounts   map[int]int
		confCounts    map[int]int
		active        int
		invalidated   int
		activePaths   int
		maxDepth      int
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		probStats = computeProbabilityStats(nodes)
		return nil
	})
	g.Go(func() error {
		lengthStats = computeLengthStats(nodes)
		return nil
	})
	g.Go(func() error {
		depthCounts, confCounts, maxDepth = computeDistributions(nodes)
		return nil
	})
	g.Go(func() error {
		active, invalidated, activePaths = computeCounts(nodes)
		return nil
	})

	_ = g.Wait() // none of the above can fail

	snap.AvgProbability = probStats.avg
	snap.MedianProbability = probStats.median
	snap.MinProbability = probStats.min
	snap.MaxProbability = probStats.max
	snap.AvgPremiseLen = lengthStats.avgPremise
	snap.AvgReasoningLen = lengthStats.avgReasoning
	snap.DepthDist = depthCounts
	snap.ConfidenceDist = confCounts
	snap.MaxDepth = maxDepth
	snap.ActiveNodes = active
	snap.Invalidated = invalidated
	snap.ActivePaths = activePaths

	var weightedDepth, countedNodes int
	for depth, count := range depthCounts {
		weightedDepth += depth * count
		countedNodes += count
	}
	if countedNodes > 0 {
		snap.AvgDepth = float64(weightedDepth) / float64(countedNodes)
	}

	snap.ComplexityScore = math.Sqrt(float64(maxDepth) * float64(snap.TotalNodes))
	snap.Recommendations = recommendationsFor(snap, e.store.Leaves())

	return snap, nil
}

type probabilityStats struct {
	avg, median, min, max float64
}

func computeProbabilityStats(nodes []*TreeNode) probabilityStats {
	if len(nodes) == 0 {
		return probabilityStats{}
	}
	probs := make([]float64, 0, len(nodes))
	var sum float64
	for _, n := range nodes {
		probs = append(probs, n.Probability)
		sum += n.Probability
	}
	sort.Float64s(probs)
	return probabilityStats{
		avg:    sum / float64(len(probs)),
		median: probs[len(probs)/2],
		min:    probs[0],
		max:    probs[len(probs)-1],
	}
}

type lengthStats struct {
	avgPremise, avgReasoning float64
}

func computeLengthStats(nodes []*TreeNode) lengthStats {
	if len(nodes) == 0 {
		return lengthStats{}
	}
	var premiseSum, reasoningSum int
	for _, n := range nodes {
		premiseSum += len(n.Premise)
		reasoningSum += len(n.Reasoning)
	}
	return lengthStats{
		avgPremise:   float64(premiseSum) / float64(len(nodes)),
		avgReasoning: float64(reasoningSum) / float64(len(nodes)),
	}
}

func computeDistributions(nodes []*TreeNode) (depthDist, confDist map[int]int, maxDepth int) {
	depthDist = map[int]int{}
	confDist = map[int]int{}
	for _, n := range nodes {
		depthDist[n.Depth]++
		confDist[n.Confidence]++
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}
	return
}

func computeCounts(nodes []*TreeNode) (active, invalidated, activePaths int) {
	for _, n := range nodes {
		if n.IsInvalidated {
			invalidated++
			continue
		}
		active++
		if n.IsLeaf() && n.ParentID != nil {
			activePaths++
		}
	}
	return
}

// recommendationsFor applies the deterministic rule-based advisories.
func recommendationsFor(snap *TreeSnapshot, leaves []*TreeNode) []string {
	var recs []string
	if len(leaves) < 2 {
		recs = append(recs, "add more leaves")
	}
	if snap.MaxDepth < 2 {
		recs = append(recs, "expand deeper")
	}
	if snap.AvgProbability < 0.3 {
		recs = append(recs, "review premises")
	}
	if snap.TotalNodes > 0 && snap.Invalidated > snap.TotalNodes/3 {
		recs = append(recs, "consider restructuring")
	}
	for _, l := range leaves {
		if l.Probability > 0.8 {
			recs = append(recs, "high-confidence paths identified")
			break
		}
	}
	return recs
}
