// Package routes builds admin page paths. Every page is scoped by an
// organization slug; links are the only way pages hand state to each other.
package routes

import (
	"net/url"
	"path"
)

// Prefix is where the admin surface is mounted.
const Prefix = "/admin"

func join(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return path.Join(append([]string{Prefix}, escaped...)...)
}

// Organization is the dashboard of one organization.
func Organization(org string) string { return join(org) }

// EntityList lists the entities stored under a catalogue path.
func EntityList(org, entityPath string) string { return join(org, entityPath) }

// EntityDetail is the edit page of one entity.
func EntityDetail(org, entityPath, id string) string { return join(org, entityPath, id) }

// RelationAction is the form target of a sub-panel action.
func RelationAction(org, entityPath, id, relation, action string) string {
	return join(org, entityPath, id, "relations", relation, action)
}

// PlayerDetail is the edit page of a player.
func PlayerDetail(org, playerID string) string { return EntityDetail(org, "players", playerID) }

// GamePlay is the live game page.
func GamePlay(org, gameID string) string { return join(org, "games", gameID, "play") }

// GamePlayPeriod is the form target that stores the selected period.
func GamePlayPeriod(org, gameID string) string { return GamePlay(org, gameID) + "/period" }

// WithQuery appends q to p when q is not empty.
func WithQuery(p string, q url.Values) string {
	if len(q) == 0 {
		return p
	}
	return p + "?" + q.Encode()
}
