package accel

import (
	"math"
	"sync"
	"time"

	"github.com/surajsubudhi10/PistonOptix/log"
	"github.com/surajsubudhi10/PistonOptix/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The BVH builder will not attempt to calculate split candidates
	// if the node bbox along an axis is less than this threshold.
	minSideLength float32 = 1e-4

	// If the split step (calculated as side length / (1024 * depth+1))
	// is less than this threshold the BVH builder will not evaluate
	// split candidates.
	minSplitStep float32 = 1e-6

	// Upper bound of split candidates per axis and work list item.
	maxCandidatesPerItem = 16
)

var (
	// A split scoring strategy that uses the surface area heuristic (SAH).
	SurfaceAreaHeuristic = surfaceAreaHeuristic{}
)

// The BoundedVolume interface is implemented by all items that can be
// partitioned by the bvh builder.
type BoundedVolume interface {
	BBox() [2]types.Vec3
	Center() types.Vec3
}

// A callback that is called whenever the BVH builder creates a new leaf.
type LeafCallback func(leaf *Node, itemList []BoundedVolume)

// A split scoring strategy.
type ScoreStrategy interface {
	// Calculate a score for splitting workList at splitPoint along a particular Axis.
	ScoreSplit(workList []BoundedVolume, splitAxis Axis, splitPoint float32) (leftCount, rightCount int, score float32)

	// Calculate a score for all items in workList.
	ScorePartition(workList []BoundedVolume) (score float32)
}

// Node is a flattened BVH node; 32 bytes. Inner nodes store the indices of
// their children in LData and RData. Leaves store the negated index of
// their first item in LData and the item count in RData.
type Node struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set bounding box.
func (n *Node) SetBBox(bbox [2]types.Vec3) {
	n.Min = bbox[0]
	n.Max = bbox[1]
}

// Set left and right child node indices.
func (n *Node) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Set item index and count.
func (n *Node) SetPrimitives(firstPrimIndex, count uint32) {
	n.LData = -int32(firstPrimIndex)
	n.RData = int32(count)
}

// Get item index and count.
func (n *Node) GetPrimitives() (firstPrimIndex, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}

// Check if this is a leaf. The root node can never be a child so a
// positive LData always refers to a child node.
func (n *Node) IsLeaf() bool {
	return n.LData <= 0
}

type splitScore struct {
	axis       Axis
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

type stats struct {
	partitionedItems int
	totalItems       int
	nodes            int
	leafs            int
	maxDepth         int
}

type builder struct {
	logger log.Logger

	// Flattened nodes; the root is always at index 0.
	nodes []Node

	leafCb        LeafCallback
	minLeafItems  int
	scoreStrategy ScoreStrategy

	stats stats
}

// Construct a BVH from a set of bounded volumes. Work lists with at most
// minLeafItems entries always become leaves. The layout of the returned
// nodes only depends on the input order.
func BuildBVH(workList []BoundedVolume, minLeafItems int, leafCb LeafCallback, scoreStrategy ScoreStrategy) []Node {
	b := &builder{
		logger:        log.New("bvh builder"),
		leafCb:        leafCb,
		minLeafItems:  minLeafItems,
		scoreStrategy: scoreStrategy,
		stats: stats{
			totalItems: len(workList),
		},
	}

	start := time.Now()
	b.partition(workList, 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, items: %d, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.totalItems, b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
	)
	return b.nodes
}

// Partition worklist and return node index.
func (b *builder) partition(workList []BoundedVolume, depth int) uint32 {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	var node Node
	node.SetBBox(enclose(workList))

	if len(workList) <= b.minLeafItems {
		return b.createLeaf(&node, workList)
	}

	best := b.bestSplit(workList, node.Min, node.Max, depth)
	if best == nil {
		return b.createLeaf(&node, workList)
	}

	left := make([]BoundedVolume, 0, best.leftCount)
	right := make([]BoundedVolume, 0, best.rightCount)
	for _, item := range workList {
		if item.Center()[best.axis] < best.splitPoint {
			left = append(left, item)
		} else {
			right = append(right, item)
		}
	}

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.nodes++

	leftNodeIndex := b.partition(left, depth+1)
	rightNodeIndex := b.partition(right, depth+1)
	b.nodes[nodeIndex].SetChildNodes(leftNodeIndex, rightNodeIndex)

	return uint32(nodeIndex)
}

// Evaluate split candidates along each axis in parallel and return the
// split that beats the unsplit score, or nil if none does. Candidates get
// denser the deeper we go but never exceed what the items can tell apart.
func (b *builder) bestSplit(workList []BoundedVolume, min, max types.Vec3, depth int) *splitScore {
	stepCount := 1024.0 / float32(depth+1)
	if maxSteps := float32(maxCandidatesPerItem * len(workList)); stepCount > maxSteps {
		stepCount = maxSteps
	}

	var (
		wg      sync.WaitGroup
		perAxis [3]*splitScore
		side    = max.Sub(min)
	)
	for axis := XAxis; axis <= ZAxis; axis++ {
		if side[axis] < minSideLength {
			continue
		}
		splitStep := side[axis] / stepCount
		if splitStep < minSplitStep {
			continue
		}

		wg.Add(1)
		go func(axis Axis, splitStep float32) {
			defer wg.Done()
			for splitPoint := min[axis]; splitPoint < max[axis]; splitPoint += splitStep {
				lCount, rCount, score := b.scoreStrategy.ScoreSplit(workList, axis, splitPoint)
				if perAxis[axis] == nil || score < perAxis[axis].score {
					perAxis[axis] = &splitScore{axis, splitPoint, lCount, rCount, score}
				}
			}
		}(axis, splitStep)
	}
	wg.Wait()

	// Ties go to the lower axis.
	var best *splitScore
	bestScore := b.scoreStrategy.ScorePartition(workList)
	for _, candidate := range perAxis {
		if candidate != nil && candidate.score < bestScore {
			best, bestScore = candidate, candidate.score
		}
	}
	return best
}

// Turn node into a leaf holding every item of the work list and return
// its index.
func (b *builder) createLeaf(node *Node, workList []BoundedVolume) uint32 {
	b.leafCb(node, workList)

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, *node)

	b.stats.leafs++
	b.stats.partitionedItems += len(workList)

	return uint32(nodeIndex)
}

func enclose(items []BoundedVolume) [2]types.Vec3 {
	bbox := types.EmptyBBox()
	for _, item := range items {
		itemBBox := item.BBox()
		bbox[0] = types.MinVec3(bbox[0], itemBBox[0])
		bbox[1] = types.MaxVec3(bbox[1], itemBBox[1])
	}
	return bbox
}

// A score implementation that uses surface area heuristic for calculating split scores.
type surfaceAreaHeuristic struct{}

// Score a split as leftCount * leftArea + rightCount * rightArea where
// lower is better. Splits that leave one side empty score MaxFloat32.
func (h surfaceAreaHeuristic) ScoreSplit(workList []BoundedVolume, axis Axis, splitPoint float32) (leftCount, rightCount int, score float32) {
	lbox, rbox := types.EmptyBBox(), types.EmptyBBox()
	for _, item := range workList {
		itemBBox := item.BBox()
		side := &rbox
		if item.Center()[axis] < splitPoint {
			side = &lbox
			leftCount++
		} else {
			rightCount++
		}
		side[0] = types.MinVec3(side[0], itemBBox[0])
		side[1] = types.MaxVec3(side[1], itemBBox[1])
	}

	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	return leftCount, rightCount, float32(leftCount)*halfArea(lbox) + float32(rightCount)*halfArea(rbox)
}

// Score an unsplit work list as count * area. Empty lists score MaxFloat32.
func (h surfaceAreaHeuristic) ScorePartition(workList []BoundedVolume) (score float32) {
	if len(workList) == 0 {
		return math.MaxFloat32
	}

	return float32(len(workList)) * halfArea(enclose(workList))
}

func halfArea(bbox [2]types.Vec3) float32 {
	side := bbox[1].Sub(bbox[0])
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}
