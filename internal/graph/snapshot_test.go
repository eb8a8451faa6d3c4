package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/store/storetest"
)

func TestSnapshotAdjacency(t *testing.T) {
	st := storetest.New().Seed(
		&model.Contact{ID: "a", TenantID: "t1"},
		&model.Contact{ID: "b", TenantID: "t1"},
		&model.Contact{ID: "c", TenantID: "t1"},
	)
	st.SeedEdges(
		model.Edge{TenantID: "t1", FromContactID: "a", ToContactID: "b", Strength: 0.8},
		model.Edge{TenantID: "t1", FromContactID: "c", ToContactID: "a", Strength: 0.6},
	)

	snap, err := Load(context.Background(), st, "t1")
	require.NoError(t, err)

	assert.Equal(t, 3, snap.ContactCount())
	assert.Equal(t, 2, snap.EdgeCount())

	// Edges are indexed undirected regardless of storage direction.
	assert.True(t, snap.Connected("a", "b"))
	assert.True(t, snap.Connected("b", "a"))
	assert.True(t, snap.Connected("a", "c"))
	assert.False(t, snap.Connected("b", "c"))

	assert.Len(t, snap.EdgesOf("a"), 2)
	assert.Len(t, snap.EdgesOf("b"), 1)

	edge := snap.Edge("b", "a")
	require.NotNil(t, edge)
	assert.Equal(t, 0.8, edge.Strength)

	assert.Nil(t, snap.Contact("missing"))
}

func TestSnapshotMutualConnections(t *testing.T) {
	st := storetest.New().Seed(
		&model.Contact{ID: "a", TenantID: "t1"},
		&model.Contact{ID: "b", TenantID: "t1"},
		&model.Contact{ID: "m1", TenantID: "t1"},
		&model.Contact{ID: "m2", TenantID: "t1"},
		&model.Contact{ID: "solo", TenantID: "t1"},
	)
	st.SeedEdges(
		model.Edge{TenantID: "t1", FromContactID: "a", ToContactID: "m1", Strength: 0.5},
		model.Edge{TenantID: "t1", FromContactID: "m1", ToContactID: "b", Strength: 0.5},
		model.Edge{TenantID: "t1", FromContactID: "a", ToContactID: "m2", Strength: 0.5},
		model.Edge{TenantID: "t1", FromContactID: "b", ToContactID: "m2", Strength: 0.5},
		model.Edge{TenantID: "t1", FromContactID: "a", ToContactID: "solo", Strength: 0.5},
	)

	snap, err := Load(context.Background(), st, "t1")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"m1", "m2"}, snap.MutualConnections("a", "b"))
	assert.Empty(t, snap.MutualConnections("solo", "b"))
	assert.Equal(t, 3, snap.NeighborSet("a").Cardinality())
}

func TestSnapshotContactsLoadOrder(t *testing.T) {
	st := storetest.New()
	st.Seed(&model.Contact{ID: "only", TenantID: "t1", FirstName: "Dana"})

	snap, err := Load(context.Background(), st, "t1")
	require.NoError(t, err)

	contacts := snap.Contacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, "Dana", contacts[0].FirstName)
}
