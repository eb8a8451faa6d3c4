// Package graph provides a read-only, in-memory view of one tenant's
// relationship graph plus weighted path search over it. A Snapshot is loaded
// once per analysis so every engine sees a consistent picture.
package graph

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rotisserie/eris"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/store"
)

// Snapshot is a consistent read of one tenant's contacts and confirmed edges.
// Edges are stored directionally but indexed undirected here.
type Snapshot struct {
	TenantID string

	contacts map[string]*model.Contact
	order    []string // contact IDs in load order
	edges    []model.Edge
	adj      map[string][]int // contact ID -> indexes into edges
}

// Load reads all contacts and edges for a tenant into a Snapshot.
func Load(ctx context.Context, st store.Store, tenantID string) (*Snapshot, error) {
	contacts, err := st.ListContacts(ctx, tenantID, store.ContactFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "graph: load contacts")
	}
	edges, err := st.ListEdges(ctx, tenantID, nil, 0)
	if err != nil {
		return nil, eris.Wrap(err, "graph: load edges")
	}

	s := &Snapshot{
		TenantID: tenantID,
		contacts: make(map[string]*model.Contact, len(contacts)),
		edges:    edges,
		adj:      make(map[string][]int),
	}
	for i := range contacts {
		c := &contacts[i]
		s.contacts[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	for i := range edges {
		e := &edges[i]
		s.adj[e.FromContactID] = append(s.adj[e.FromContactID], i)
		s.adj[e.ToContactID] = append(s.adj[e.ToContactID], i)
	}
	return s, nil
}

// Contact returns the contact with the given ID, or nil.
func (s *Snapshot) Contact(id string) *model.Contact {
	return s.contacts[id]
}

// Contacts returns all contacts in load order.
func (s *Snapshot) Contacts() []*model.Contact {
	out := make([]*model.Contact, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.contacts[id])
	}
	return out
}

// ContactCount returns the number of contacts in the snapshot.
func (s *Snapshot) ContactCount() int { return len(s.contacts) }

// EdgeCount returns the number of confirmed edges in the snapshot.
func (s *Snapshot) EdgeCount() int { return len(s.edges) }

// EdgesOf returns all edges touching the given contact.
func (s *Snapshot) EdgesOf(id string) []model.Edge {
	idxs := s.adj[id]
	out := make([]model.Edge, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.edges[i])
	}
	return out
}

// Edge returns the edge between a and b in either direction, or nil.
func (s *Snapshot) Edge(a, b string) *model.Edge {
	for _, i := range s.adj[a] {
		if s.edges[i].Other(a) == b {
			return &s.edges[i]
		}
	}
	return nil
}

// Connected reports whether a and b share a confirmed edge.
func (s *Snapshot) Connected(a, b string) bool {
	return s.Edge(a, b) != nil
}

// NeighborSet returns the set of contact IDs directly connected to id.
func (s *Snapshot) NeighborSet(id string) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, i := range s.adj[id] {
		if other := s.edges[i].Other(id); other != "" {
			set.Add(other)
		}
	}
	return set
}

// MutualConnections returns the contact IDs connected to both a and b.
func (s *Snapshot) MutualConnections(a, b string) []string {
	return s.NeighborSet(a).Intersect(s.NeighborSet(b)).ToSlice()
}
