package graph

import (
	"container/heap"

	"go.uber.org/zap"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
)

// maxPaths is the number of distinct completed paths collected before the
// search terminates.
const maxPaths = 3

// PathResult is one introduction chain between two contacts.
type PathResult struct {
	ContactIDs []string                 `json:"contact_ids"`
	Kinds      []model.RelationshipKind `json:"kinds"` // per-hop relationship types
	TotalCost  float64                  `json:"total_cost"`
	Hops       int                      `json:"hops"`
}

// FindPaths returns up to three distinct weighted paths from fromID to toID.
// Only verified edges with strength >= minStrength participate; edge weight is
// 1 - strength so strong ties are cheap. Expansion is lowest-cumulative-cost
// first with a hard hop ceiling of maxDegrees and no repeated node within a
// path. Equal-cost paths keep discovery order; this is an accepted heuristic,
// not shortest-of-all-ties.
func FindPaths(s *Snapshot, fromID, toID string, maxDegrees int, minStrength float64) ([]PathResult, error) {
	if fromID == toID {
		return nil, resilience.InvalidInput("path endpoints must differ")
	}
	if maxDegrees <= 0 {
		return nil, resilience.InvalidInput("maxDegrees must be positive, got %d", maxDegrees)
	}
	if minStrength < 0 || minStrength > 1 {
		return nil, resilience.InvalidInput("minStrength must be in [0,1], got %v", minStrength)
	}
	if s.Contact(fromID) == nil {
		return nil, resilience.NotFound("contact %s", fromID)
	}
	if s.Contact(toID) == nil {
		return nil, resilience.NotFound("contact %s", toID)
	}

	pq := &frontier{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &partialPath{nodes: []string{fromID}, seq: seq})

	var results []PathResult
	seen := map[string]bool{}

	for pq.Len() > 0 && len(results) < maxPaths {
		cur := heap.Pop(pq).(*partialPath)
		last := cur.nodes[len(cur.nodes)-1]

		if last == toID {
			sig := pathSignature(cur.nodes)
			if !seen[sig] {
				seen[sig] = true
				results = append(results, PathResult{
					ContactIDs: cur.nodes,
					Kinds:      cur.kinds,
					TotalCost:  cur.cost,
					Hops:       len(cur.nodes) - 1,
				})
			}
			continue
		}

		if len(cur.nodes)-1 >= maxDegrees {
			continue
		}

		for _, e := range s.EdgesOf(last) {
			if !e.Verified || e.Strength < minStrength {
				continue
			}
			next := e.Other(last)
			if next == "" || cur.contains(next) {
				continue
			}
			seq++
			heap.Push(pq, &partialPath{
				nodes: appendCopy(cur.nodes, next),
				kinds: appendKindCopy(cur.kinds, e.Kind),
				cost:  cur.cost + (1 - e.Strength),
				seq:   seq,
			})
		}
	}

	zap.L().Debug("path search complete",
		zap.String("from", fromID),
		zap.String("to", toID),
		zap.Int("paths", len(results)),
	)

	// No path within constraints is an empty result, not an error.
	return results, nil
}

// partialPath is one frontier entry in the priority-queue expansion.
type partialPath struct {
	nodes []string
	kinds []model.RelationshipKind
	cost  float64
	seq   int // insertion order, breaks cost ties
}

func (p *partialPath) contains(id string) bool {
	for _, n := range p.nodes {
		if n == id {
			return true
		}
	}
	return false
}

// frontier implements heap.Interface ordered by cost, then insertion order.
type frontier []*partialPath

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(*partialPath)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}

func pathSignature(nodes []string) string {
	sig := ""
	for _, n := range nodes {
		sig += n + "|"
	}
	return sig
}

func appendCopy(nodes []string, next string) []string {
	out := make([]string, len(nodes)+1)
	copy(out, nodes)
	out[len(nodes)] = next
	return out
}

func appendKindCopy(kinds []model.RelationshipKind, k model.RelationshipKind) []model.RelationshipKind {
	out := make([]model.RelationshipKind, len(kinds)+1)
	copy(out, kinds)
	out[len(kinds)] = k
	return out
}
