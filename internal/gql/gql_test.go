package gql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/graph/memstore"
)

func newSchema(t *testing.T) (*Schema, *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	cat := catalog.Hockey()
	store := memstore.New(cat)
	for _, n := range []struct {
		entity, id string
		props      map[string]any
	}{
		{"Player", "p1", map[string]any{"firstName": "Jaromir", "lastName": "Jagr"}},
		{"Team", "t1", map[string]any{"name": "Kladno"}},
		{"Team", "t2", map[string]any{"name": "Pittsburgh"}},
		{"Organization", "o1", map[string]any{"name": "HC Kladno"}},
		{"Organization", "o2", map[string]any{"name": "Penguins"}},
		{"SystemSettings", "settings", map[string]any{"name": "Default", "language": "cs"}},
	} {
		_, err := store.Save(ctx, n.entity, n.id, n.props)
		require.NoError(t, err)
	}
	s, err := New(store, cat, WithIDGenerator(func() string { return "gen-1" }))
	require.NoError(t, err)
	return s, store
}

// run executes query and returns the data as JSON, failing on any error.
func run(t *testing.T, s *Schema, query string, vars map[string]any) string {
	t.Helper()
	res := s.Do(context.Background(), Request{Query: query, Variables: vars})
	require.False(t, res.HasErrors(), "%v", res.Errors)
	out, err := json.Marshal(res.Data)
	require.NoError(t, err)
	return string(out)
}

func TestCreateGeneratesID(t *testing.T) {
	s, _ := newSchema(t)
	got := run(t, s, `mutation {
		createPlayers(input: [{firstName: "Patrik", lastName: "Elias", birthday: "1976-04-13"}]) {
			players { playerId firstName birthday }
		}
	}`, nil)
	assert.JSONEq(t, `{"createPlayers":{"players":[
		{"playerId":"gen-1","firstName":"Patrik","birthday":"1976-04-13"}
	]}}`, got)
}

func TestCreateKeepsGivenIDAndUsesVariables(t *testing.T) {
	s, store := newSchema(t)
	run(t, s, `mutation Create($input: [TeamCreateInput!]!) {
		createTeams(input: $input) { teams { teamId } }
	}`, map[string]any{"input": []any{map[string]any{"teamId": "t9", "name": "Rangers"}}})

	n, err := store.Get(context.Background(), "Team", "t9")
	require.NoError(t, err)
	assert.Equal(t, "Rangers", n.Props["name"])
}

func TestCreateRejectsInvalidDate(t *testing.T) {
	s, _ := newSchema(t)
	res := s.Do(context.Background(), Request{Query: `mutation {
		createPlayers(input: [{firstName: "A", lastName: "B", birthday: "15/02/1972"}]) { players { playerId } }
	}`})
	require.True(t, res.HasErrors())
	assert.Contains(t, res.Errors[0].Message, "Birthday")
}

func TestCreateRequiresRequiredFields(t *testing.T) {
	s, _ := newSchema(t)
	res := s.Do(context.Background(), Request{Query: `mutation {
		createPlayers(input: [{firstName: "A"}]) { players { playerId } }
	}`})
	assert.True(t, res.HasErrors())
}

func TestQueryWhere(t *testing.T) {
	s, _ := newSchema(t)
	assert.JSONEq(t, `{"teams":[{"teamId":"t1","name":"Kladno"}]}`,
		run(t, s, `{ teams(where: {teamId: "t1"}) { teamId name } }`, nil))
	assert.JSONEq(t, `{"teams":[{"teamId":"t2"}]}`,
		run(t, s, `{ teams(where: {teamId_IN: ["t2", "nope"]}) { teamId } }`, nil))
	assert.JSONEq(t, `{"teams":[]}`,
		run(t, s, `{ teams(where: {teamId_IN: []}) { teamId } }`, nil))
	assert.JSONEq(t, `{"teams":[{"teamId":"t1"},{"teamId":"t2"}]}`,
		run(t, s, `{ teams { teamId } }`, nil))
	assert.JSONEq(t, `{"systemSettings":[{"systemSettingsId":"settings","language":"cs","rulePack":null}]}`,
		run(t, s, `{ systemSettings { systemSettingsId language rulePack { name } } }`, nil))
}

func TestUpdateConnectWithEdgeAttributes(t *testing.T) {
	s, _ := newSchema(t)
	got := run(t, s, `mutation {
		updatePlayers(
			where: {playerId: "p1"}
			update: {height: 191, stick: "LEFT"}
			connect: {teams: [{where: {node: {teamId: "t1"}}, edge: {jersey: 68, position: "RW"}}]}
		) {
			players {
				playerId height stick
				teams { name }
				teamsConnection { totalCount edges { jersey position node { teamId } } }
			}
		}
	}`, nil)
	assert.JSONEq(t, `{"updatePlayers":{"players":[{
		"playerId":"p1","height":191,"stick":"LEFT",
		"teams":[{"name":"Kladno"}],
		"teamsConnection":{"totalCount":1,"edges":[{"jersey":68,"position":"RW","node":{"teamId":"t1"}}]}
	}]}}`, got)

	// The inverse side sees the same edge attributes.
	assert.JSONEq(t, `{"teams":[{"playersConnection":{"edges":[{"jersey":68,"node":{"lastName":"Jagr"}}]}}]}`,
		run(t, s, `{ teams(where: {teamId: "t1"}) { playersConnection { edges { jersey node { lastName } } } } }`, nil))
}

func TestUpdateDisconnectThenConnectMovesEdge(t *testing.T) {
	s, _ := newSchema(t)
	run(t, s, `mutation { updatePlayers(where: {playerId: "p1"}, connect: {teams: [{where: {node: {teamId: "t1"}}}]}) { players { playerId } } }`, nil)
	got := run(t, s, `mutation {
		updatePlayers(
			where: {playerId: "p1"}
			disconnect: {teams: [{where: {node: {teamId: "t1"}}}]}
			connect: {teams: [{where: {node: {teamId: "t2"}}}]}
		) { players { teams { teamId } } }
	}`, nil)
	assert.JSONEq(t, `{"updatePlayers":{"players":[{"teams":[{"teamId":"t2"}]}]}}`, got)
}

func TestConnectSingleCardinalityReplaces(t *testing.T) {
	s, _ := newSchema(t)
	for _, org := range []string{"o1", "o2"} {
		run(t, s, `mutation($org: ID) {
			updateTeams(where: {teamId: "t1"}, connect: {organization: [{where: {node: {organizationId: $org}}}]}) { teams { teamId } }
		}`, map[string]any{"org": org})
	}
	assert.JSONEq(t, `{"teams":[{"organization":{"organizationId":"o2"}}]}`,
		run(t, s, `{ teams(where: {teamId: "t1"}) { organization { organizationId } } }`, nil))
}

func TestConnectRequiresTarget(t *testing.T) {
	s, _ := newSchema(t)
	res := s.Do(context.Background(), Request{Query: `mutation {
		updatePlayers(where: {playerId: "p1"}, connect: {teams: [{where: {node: {}}}]}) { players { playerId } }
	}`})
	require.True(t, res.HasErrors())
	assert.Contains(t, res.Errors[0].Message, "teamId is required")
}

func TestUpdateUnmatchedWhereIsEmpty(t *testing.T) {
	s, _ := newSchema(t)
	assert.JSONEq(t, `{"updateTeams":{"teams":[]}}`,
		run(t, s, `mutation { updateTeams(where: {teamId: "ghost"}, update: {name: "x"}) { teams { teamId } } }`, nil))
}

func TestDeleteReportsInfo(t *testing.T) {
	s, _ := newSchema(t)
	run(t, s, `mutation { updatePlayers(where: {playerId: "p1"}, connect: {teams: [{where: {node: {teamId: "t1"}}}]}) { players { playerId } } }`, nil)
	assert.JSONEq(t, `{"deleteTeams":{"nodesDeleted":1,"relationshipsDeleted":1}}`,
		run(t, s, `mutation { deleteTeams(where: {teamId: "t1"}) { nodesDeleted relationshipsDeleted } }`, nil))
	assert.JSONEq(t, `{"players":[{"teams":[]}]}`,
		run(t, s, `{ players { teams { teamId } } }`, nil))
}

// --------------------------------------------------------------------------
// HTTP
// --------------------------------------------------------------------------

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHandlerPost(t *testing.T) {
	s, _ := newSchema(t)
	h := NewHandler(s, quietLogger())

	r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ teams(where: {teamId: \"t1\"}) { name } }"}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"teams":[{"name":"Kladno"}]}}`, w.Body.String())
}

func TestHandlerGetAndRawBody(t *testing.T) {
	s, _ := newSchema(t)
	h := NewHandler(s, quietLogger())

	q := url.Values{"query": {`query T($id: ID) { teams(where: {teamId: $id}) { name } }`}, "variables": {`{"id":"t2"}`}}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pittsburgh")

	r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ organizations { name } }`))
	r.Header.Set("Content-Type", "application/graphql")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Penguins")
}

func TestHandlerRejectsUndecodableRequests(t *testing.T) {
	s, _ := newSchema(t)
	h := NewHandler(s, quietLogger())

	for name, body := range map[string]string{
		"not json":    `{query`,
		"empty query": `{"query":"  "}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"errors"`)
		})
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graphql?query=x&variables=nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/graphql", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandlerResolverErrorIsOK(t *testing.T) {
	s, _ := newSchema(t)
	h := NewHandler(s, quietLogger())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql",
		strings.NewReader(`{"query":"{ teams { nonexistent } }"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"errors"`)
}
