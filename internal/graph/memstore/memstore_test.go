package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := New(catalog.Hockey())
	_, err := s.Save(ctx, "Player", "p1", map[string]any{"firstName": "Jaromir", "lastName": "Jagr"})
	require.NoError(t, err)
	_, err = s.Save(ctx, "Team", "t1", map[string]any{"name": "Kladno"})
	require.NoError(t, err)
	_, err = s.Save(ctx, "Team", "t2", map[string]any{"name": "Pittsburgh"})
	require.NoError(t, err)
	return s
}

func TestConnectIsVisibleFromBothSides(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	require.NoError(t, s.Connect(ctx, "Player", "p1", "teams", "t1", map[string]any{"position": "RW", "jersey": 68}))

	fromPlayer, err := s.Related(ctx, "Player", "p1", "teams")
	require.NoError(t, err)
	require.Len(t, fromPlayer, 1)
	assert.Equal(t, "t1", fromPlayer[0].Node.ID)
	assert.Equal(t, 68, fromPlayer[0].Props["jersey"])

	fromTeam, err := s.Related(ctx, "Team", "t1", "players")
	require.NoError(t, err)
	require.Len(t, fromTeam, 1)
	assert.Equal(t, "p1", fromTeam[0].Node.ID)
	assert.Equal(t, "RW", fromTeam[0].Props["position"])
}

func TestConnectTwiceMergesEdgeAttributes(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	require.NoError(t, s.Connect(ctx, "Player", "p1", "teams", "t1", map[string]any{"position": "RW", "jersey": 68}))
	require.NoError(t, s.Connect(ctx, "Team", "t1", "players", "p1", map[string]any{"jersey": 88}))

	edges, err := s.Related(ctx, "Player", "p1", "teams")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, map[string]any{"position": "RW", "jersey": 88}, edges[0].Props)
}

func TestConnectSingleCardinalityReplacesTarget(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	_, err := s.Save(ctx, "Organization", "o1", map[string]any{"name": "HC"})
	require.NoError(t, err)
	_, err = s.Save(ctx, "Organization", "o2", map[string]any{"name": "Penguins"})
	require.NoError(t, err)

	require.NoError(t, s.Connect(ctx, "Team", "t1", "organization", "o1", nil))
	require.NoError(t, s.Connect(ctx, "Team", "t1", "organization", "o2", nil))

	edges, err := s.Related(ctx, "Team", "t1", "organization")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "o2", edges[0].Node.ID)

	owned, err := s.Related(ctx, "Organization", "o1", "teams")
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestConnectFromManySideReplacesSingleOwner(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	_, err := s.Save(ctx, "Organization", "o1", map[string]any{"name": "HC"})
	require.NoError(t, err)
	_, err = s.Save(ctx, "Organization", "o2", map[string]any{"name": "Penguins"})
	require.NoError(t, err)

	require.NoError(t, s.Connect(ctx, "Organization", "o1", "teams", "t1", nil))
	require.NoError(t, s.Connect(ctx, "Organization", "o1", "teams", "t2", nil))
	require.NoError(t, s.Connect(ctx, "Organization", "o2", "teams", "t1", nil))

	owner, err := s.Related(ctx, "Team", "t1", "organization")
	require.NoError(t, err)
	require.Len(t, owner, 1)
	assert.Equal(t, "o2", owner[0].Node.ID)

	left, err := s.Related(ctx, "Organization", "o1", "teams")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "t2", left[0].Node.ID)
}

func TestConnectUnknownTarget(t *testing.T) {
	s := seeded(t)
	err := s.Connect(context.Background(), "Player", "p1", "teams", "missing", nil)
	assert.ErrorIs(t, err, graph.ErrNotFound)

	err = s.Connect(context.Background(), "Player", "p1", "nope", "t1", nil)
	assert.ErrorIs(t, err, graph.ErrUnknownRelation)
}

func TestDeleteDetachesEdges(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	require.NoError(t, s.Connect(ctx, "Player", "p1", "teams", "t1", nil))
	require.NoError(t, s.Connect(ctx, "Player", "p1", "teams", "t2", nil))

	info, err := s.Delete(ctx, "Player", "p1")
	require.NoError(t, err)
	assert.Equal(t, graph.DeleteInfo{NodesDeleted: 1, RelationshipsDeleted: 2}, info)

	_, err = s.Get(ctx, "Player", "p1")
	assert.ErrorIs(t, err, graph.ErrNotFound)

	players, err := s.Related(ctx, "Team", "t1", "players")
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	all, err := s.List(ctx, "Team", graph.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t1", all[0].ID)

	some, err := s.List(ctx, "Team", graph.Filter{IDs: []string{"t2", "missing"}})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "Pittsburgh", some[0].Props["name"])
}
