// Package uistate holds the interaction state of one admin page: which
// dialog is open and which relation row is staged for edit. A State lives for
// one request; it travels between requests only through the page URL.
package uistate

import (
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Dialog names. The set is fixed; unknown names are ignored when decoding.
const (
	DialogConnect    = "connect"
	DialogEdgeEdit   = "edge"
	DialogDisconnect = "disconnect"
	DialogDelete     = "delete"
	DialogGoal       = "goal"
	DialogPenalty    = "penalty"
	DialogShot       = "shot"
	DialogLineup     = "lineup"
)

var dialogs = []string{
	DialogConnect, DialogEdgeEdit, DialogDisconnect, DialogDelete,
	DialogGoal, DialogPenalty, DialogShot, DialogLineup,
}

// Staged is a relation row pending edit.
type Staged struct {
	Relation   string
	TargetID   string
	Attributes map[string]string
}

// State is the scoped UI context of one page tree.
type State struct {
	open   map[string]bool
	staged *Staged
}

// Default returns the initial state: every dialog closed, nothing staged.
func Default() *State {
	return &State{open: make(map[string]bool, len(dialogs))}
}

// Dialog reports whether the named dialog is open.
func (s *State) Dialog(name string) bool {
	return s.open[name]
}

// SetDialog opens or closes a dialog. Unknown names are ignored.
func (s *State) SetDialog(name string, open bool) {
	if !slices.Contains(dialogs, name) {
		return
	}
	if open {
		s.open[name] = true
	} else {
		delete(s.open, name)
	}
}

// StagedRecord returns the staged row, if any.
func (s *State) StagedRecord() (Staged, bool) {
	if s.staged == nil {
		return Staged{}, false
	}
	return *s.staged, true
}

// Stage replaces the staged row.
func (s *State) Stage(rec Staged) {
	rec.Attributes = maps.Clone(rec.Attributes)
	s.staged = &rec
}

// ClearStaged drops the staged row.
func (s *State) ClearStaged() {
	s.staged = nil
}

// IsStaged reports whether the given relation row is the staged one.
func (s *State) IsStaged(relation, targetID string) bool {
	return s.staged != nil && s.staged.Relation == relation && s.staged.TargetID == targetID
}

// --------------------------------------------------------------------------
// URL encoding
// --------------------------------------------------------------------------

const (
	paramDialog   = "dialog"
	paramRelation = "rel"
	paramTarget   = "target"
	attrPrefix    = "attr."
)

// FromQuery decodes a State from page query parameters.
func FromQuery(q url.Values) *State {
	s := Default()
	for _, name := range q[paramDialog] {
		s.SetDialog(name, true)
	}
	// A connect dialog stages its relation before a target is chosen.
	rel, target := q.Get(paramRelation), q.Get(paramTarget)
	if rel != "" && (target != "" || s.Dialog(DialogConnect)) {
		attrs := map[string]string{}
		for k, v := range q {
			if name, ok := strings.CutPrefix(k, attrPrefix); ok && len(v) > 0 {
				attrs[name] = v[0]
			}
		}
		s.Stage(Staged{Relation: rel, TargetID: target, Attributes: attrs})
	}
	return s
}

// Query encodes the state into query parameters.
func (s *State) Query() url.Values {
	q := url.Values{}
	for _, name := range dialogs {
		if s.open[name] {
			q.Add(paramDialog, name)
		}
	}
	if s.staged != nil {
		q.Set(paramRelation, s.staged.Relation)
		if s.staged.TargetID != "" {
			q.Set(paramTarget, s.staged.TargetID)
		}
		for k, v := range s.staged.Attributes {
			q.Set(attrPrefix+k, v)
		}
	}
	return q
}

// With returns a copy of the state with one dialog toggled and an optional
// staged row; used to build links that open a dialog.
func (s *State) With(dialog string, staged *Staged) *State {
	c := &State{open: maps.Clone(s.open)}
	if s.staged != nil {
		st := *s.staged
		c.staged = &st
	}
	c.SetDialog(dialog, true)
	if staged != nil {
		c.Stage(*staged)
	}
	return c
}
