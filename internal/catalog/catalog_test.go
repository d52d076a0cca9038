package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHockeyCatalogIsValid(t *testing.T) {
	c := Hockey()
	require.NotNil(t, c)

	player, ok := c.Entity("Player")
	require.True(t, ok)
	assert.Equal(t, "playerId", player.IDField())
	assert.Equal(t, "players", player.Plural)

	settings, ok := c.Entity("SystemSettings")
	require.True(t, ok)
	assert.Equal(t, "systemSettingsId", settings.IDField())
	assert.Equal(t, "systemSettings", settings.Plural)

	byPath, ok := c.ByPath("system-settings")
	require.True(t, ok)
	assert.Same(t, settings, byPath)
}

func TestHockeyInverseRelationsShareAttributes(t *testing.T) {
	c := Hockey()
	for _, e := range c.Entities() {
		for _, r := range e.Relations {
			_, inv, ok := c.Inverse(e, r)
			if !ok {
				continue
			}
			assert.Equal(t, r.Attributes, inv.Attributes, "%s.%s vs %s.%s", e.Name, r.Name, r.Target, inv.Name)
		}
	}
}

func TestPlayerTeamsCarriesPositionAndJersey(t *testing.T) {
	player, _ := Hockey().Entity("Player")
	teams, ok := player.Relation("teams")
	require.True(t, ok)
	assert.True(t, teams.IsMany())
	assert.Equal(t, "PLAYS_FOR", teams.Type)

	pos, ok := teams.Attribute("position")
	require.True(t, ok)
	assert.Equal(t, KindString, pos.Kind)
	jersey, ok := teams.Attribute("jersey")
	require.True(t, ok)
	assert.Equal(t, KindInt, jersey.Kind)
}

func TestNewRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		entities []*Entity
	}{
		{"non-identifier name", []*Entity{{Name: "Bad Name", Plural: "bads", Path: "bads"}}},
		{"duplicate entity", []*Entity{
			{Name: "Team", Plural: "teams", Path: "teams"},
			{Name: "Team", Plural: "teams2", Path: "teams2"},
		}},
		{"unknown target", []*Entity{{
			Name: "Team", Plural: "teams", Path: "teams",
			Relations: []Relation{many("players", "Players", "PLAYS_FOR", In, "Player")},
		}}},
		{"injected relation type", []*Entity{{
			Name: "Team", Plural: "teams", Path: "teams",
			Relations: []Relation{many("teams", "Teams", "X]-() DELETE n //", Out, "Team")},
		}}},
		{"field shadows id", []*Entity{{
			Name: "Team", Plural: "teams", Path: "teams",
			Fields: []Field{str("teamId", "Id")},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entities...)
			assert.Error(t, err)
		})
	}
}

func TestTitle(t *testing.T) {
	player, _ := Hockey().Entity("Player")
	assert.Equal(t, "Jaromir Jagr", player.Title(map[string]any{"firstName": "Jaromir", "lastName": "Jagr"}))
	assert.Equal(t, "p-68", player.Title(map[string]any{"playerId": "p-68"}))
}
