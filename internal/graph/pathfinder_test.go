package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
	"github.com/sells-group/network-intel/internal/store/storetest"
)

func buildSnapshot(t *testing.T, edges ...model.Edge) *Snapshot {
	t.Helper()

	st := storetest.New()
	ids := map[string]bool{}
	for _, e := range edges {
		ids[e.FromContactID] = true
		ids[e.ToContactID] = true
	}
	for id := range ids {
		st.Seed(&model.Contact{ID: id, TenantID: "t1"})
	}
	st.SeedEdges(edges...)

	snap, err := Load(context.Background(), st, "t1")
	require.NoError(t, err)
	return snap
}

func verified(from, to string, strength float64) model.Edge {
	return model.Edge{
		TenantID:      "t1",
		FromContactID: from,
		ToContactID:   to,
		Kind:          model.KindColleague,
		Strength:      strength,
		Verified:      true,
	}
}

func TestFindPathsDirectEdge(t *testing.T) {
	snap := buildSnapshot(t,
		verified("a", "b", 0.9),
		verified("a", "m", 0.8),
		verified("m", "b", 0.8),
	)

	paths, err := FindPaths(snap, "a", "b", 4, 0.2)
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	// The strong direct edge is the cheapest path.
	first := paths[0]
	assert.Equal(t, []string{"a", "b"}, first.ContactIDs)
	assert.InDelta(t, 0.1, first.TotalCost, 1e-9)
	assert.Equal(t, 1, first.Hops)
	assert.Equal(t, []model.RelationshipKind{model.KindColleague}, first.Kinds)
}

func TestFindPathsDisconnected(t *testing.T) {
	snap := buildSnapshot(t,
		verified("a", "b", 0.9),
		verified("x", "y", 0.9),
	)

	paths, err := FindPaths(snap, "a", "y", 4, 0.2)
	require.NoError(t, err, "no path is an empty result, not an error")
	assert.Empty(t, paths)
}

func TestFindPathsRespectsStrengthFloor(t *testing.T) {
	snap := buildSnapshot(t,
		verified("a", "b", 0.1),
		verified("a", "m", 0.7),
		verified("m", "b", 0.7),
	)

	paths, err := FindPaths(snap, "a", "b", 4, 0.2)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"a", "m", "b"}, paths[0].ContactIDs, "the weak direct edge is excluded")
}

func TestFindPathsSkipsUnverifiedEdges(t *testing.T) {
	direct := verified("a", "b", 0.9)
	direct.Verified = false

	snap := buildSnapshot(t,
		direct,
		verified("a", "m", 0.7),
		verified("m", "b", 0.7),
	)

	paths, err := FindPaths(snap, "a", "b", 4, 0.2)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"a", "m", "b"}, paths[0].ContactIDs)
}

func TestFindPathsHopCeiling(t *testing.T) {
	snap := buildSnapshot(t,
		verified("a", "b", 0.9),
		verified("b", "c", 0.9),
		verified("c", "d", 0.9),
	)

	paths, err := FindPaths(snap, "a", "d", 2, 0.2)
	require.NoError(t, err)
	assert.Empty(t, paths, "three hops needed but ceiling is two")

	paths, err = FindPaths(snap, "a", "d", 3, 0.2)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 3, paths[0].Hops)
}

func TestFindPathsReturnsAtMostThree(t *testing.T) {
	// Four disjoint two-hop routes from a to z with distinct costs.
	snap := buildSnapshot(t,
		verified("a", "m1", 0.9), verified("m1", "z", 0.9),
		verified("a", "m2", 0.8), verified("m2", "z", 0.8),
		verified("a", "m3", 0.7), verified("m3", "z", 0.7),
		verified("a", "m4", 0.6), verified("m4", "z", 0.6),
	)

	paths, err := FindPaths(snap, "a", "z", 4, 0.2)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	// Cheapest first, strongest intermediaries win.
	assert.Equal(t, []string{"a", "m1", "z"}, paths[0].ContactIDs)
	assert.Equal(t, []string{"a", "m2", "z"}, paths[1].ContactIDs)
	assert.Equal(t, []string{"a", "m3", "z"}, paths[2].ContactIDs)
	assert.LessOrEqual(t, paths[0].TotalCost, paths[1].TotalCost)
	assert.LessOrEqual(t, paths[1].TotalCost, paths[2].TotalCost)
}

func TestFindPathsNoRepeatedNodes(t *testing.T) {
	snap := buildSnapshot(t,
		verified("a", "b", 0.9),
		verified("b", "a", 0.9),
		verified("b", "c", 0.9),
	)

	paths, err := FindPaths(snap, "a", "c", 4, 0.2)
	require.NoError(t, err)
	for _, p := range paths {
		seen := map[string]bool{}
		for _, id := range p.ContactIDs {
			assert.False(t, seen[id], "node %s repeats in path %v", id, p.ContactIDs)
			seen[id] = true
		}
	}
}

func TestFindPathsInputValidation(t *testing.T) {
	snap := buildSnapshot(t, verified("a", "b", 0.9))

	tests := []struct {
		name        string
		from, to    string
		maxDegrees  int
		minStrength float64
		kind        resilience.Kind
	}{
		{"same endpoints", "a", "a", 4, 0.2, resilience.KindInvalidInput},
		{"zero degrees", "a", "b", 0, 0.2, resilience.KindInvalidInput},
		{"strength above one", "a", "b", 4, 1.5, resilience.KindInvalidInput},
		{"unknown from", "nope", "b", 4, 0.2, resilience.KindNotFound},
		{"unknown to", "a", "nope", 4, 0.2, resilience.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindPaths(snap, tt.from, tt.to, tt.maxDegrees, tt.minStrength)
			require.Error(t, err)
			assert.Equal(t, tt.kind, resilience.KindOf(err))
		})
	}
}
