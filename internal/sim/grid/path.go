package grid

import (
	"container/heap"
	"math"
)

// pathNode is one open-set entry during A*.
type pathNode struct {
	tile   Tile
	g      int     // steps from start
	f      float64 // g + Euclidean heuristic
	seq    int     // insertion order, breaks f ties stably
	parent *pathNode
}

// openSet is a container/heap min-heap ordered by f, then insertion order.
type openSet []*pathNode

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(a, b int) bool {
	if o[a].f != o[b].f {
		return o[a].f < o[b].f
	}
	return o[a].seq < o[b].seq
}

func (o openSet) Swap(a, b int) { o[a], o[b] = o[b], o[a] }

func (o *openSet) Push(x any) { *o = append(*o, x.(*pathNode)) }

func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	*o = old[:n-1]
	return item
}

// neighborOffsets is the 8-connected neighborhood, row by row.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// FindPath runs A* from start to goal over the current occupancy snapshot and
// returns the tile sequence including the start tile and ending at goal.
// Consecutive tiles are 8-adjacent; every tile after the start was walkable
// at call time. Step cost is uniform 1 for diagonal and orthogonal moves, the
// heuristic is Euclidean distance, so the result is optimal in step count.
//
// Returns nil when start or goal is out of bounds, goal is not walkable, or
// no route exists. The start tile itself is never checked for walkability:
// the mover occupies it.
//
// FindPath is a pure query. Other entities moving after the call can stale
// the result at any time; consumers re-check each waypoint before committing
// to it.
func (g *Grid) FindPath(start, goal Tile) []Tile {
	if !g.InBounds(start.I, start.J) || !g.InBounds(goal.I, goal.J) {
		return nil
	}
	if !g.IsWalkable(goal.I, goal.J) {
		return nil
	}
	if start == goal {
		return nil
	}

	open := &openSet{}
	heap.Init(open)

	seq := 0
	startNode := &pathNode{tile: start, g: 0, f: euclid(start, goal), seq: seq}
	heap.Push(open, startNode)

	bestG := map[Tile]int{start: 0}
	closed := map[Tile]bool{}

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.tile == goal {
			return reconstruct(current)
		}
		if closed[current.tile] {
			continue
		}
		closed[current.tile] = true

		for _, off := range neighborOffsets {
			next := Tile{I: current.tile.I + off[0], J: current.tile.J + off[1]}
			if closed[next] || !g.IsWalkable(next.I, next.J) {
				continue
			}
			nextG := current.g + 1
			if prev, seen := bestG[next]; seen && nextG >= prev {
				continue
			}
			bestG[next] = nextG
			seq++
			heap.Push(open, &pathNode{
				tile:   next,
				g:      nextG,
				f:      float64(nextG) + euclid(next, goal),
				seq:    seq,
				parent: current,
			})
		}
	}
	return nil
}

// euclid is the Euclidean distance heuristic. Admissible and consistent
// under uniform step cost 1, so A* stays optimal.
func euclid(a, b Tile) float64 {
	di := float64(a.I - b.I)
	dj := float64(a.J - b.J)
	return math.Sqrt(di*di + dj*dj)
}

// reconstruct walks parent links back to the start and reverses.
func reconstruct(node *pathNode) []Tile {
	var rev []Tile
	for n := node; n != nil; n = n.parent {
		rev = append(rev, n.tile)
	}
	out := make([]Tile, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}
