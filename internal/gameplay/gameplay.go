// Package gameplay is the state behind the live game play page: the selected
// period and game clock, which persist per client, and the event dialogs
// (goal, penalty, shot, lineup), which live for one page only.
package gameplay

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/vladpavlovski/phm-sub006/internal/config"
	"github.com/vladpavlovski/phm-sub006/internal/prefs"
	"github.com/vladpavlovski/phm-sub006/internal/uistate"
)

// Periods lists the selectable periods in game order.
var Periods = []string{"1", "2", "3", "OT", "SO"}

// DefaultPeriod is used until a client picks one.
const DefaultPeriod = "1"

// Dialogs are the event dialogs of the game play page.
var Dialogs = []string{
	uistate.DialogGoal,
	uistate.DialogPenalty,
	uistate.DialogShot,
	uistate.DialogLineup,
}

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidGameTime = errors.New("invalid game time")
)

// mm:ss with minutes up to 99.
var gameTimeRe = regexp.MustCompile(`^[0-9]{1,2}:[0-5][0-9]$`)

// Provider holds the game play state of one client.
type Provider struct {
	store    prefs.Store
	clientID string
	period   string
	gameTime string

	// UI holds the dialog flags; it is never persisted.
	UI *uistate.State
}

// Mount loads the persisted selection of clientID. Stored values that are no
// longer valid are ignored. ui may be nil.
func Mount(ctx context.Context, store prefs.Store, clientID string, ui *uistate.State) (*Provider, error) {
	if ui == nil {
		ui = uistate.Default()
	}
	p := &Provider{store: store, clientID: clientID, period: DefaultPeriod, UI: ui}

	period, ok, err := store.Get(ctx, clientID, config.GamePlayPeriodKey)
	if err != nil {
		return nil, fmt.Errorf("load period: %w", err)
	}
	if ok && ValidPeriod(period) {
		p.period = period
	}

	gameTime, ok, err := store.Get(ctx, clientID, config.GamePlayTimeKey)
	if err != nil {
		return nil, fmt.Errorf("load game time: %w", err)
	}
	if ok && gameTimeRe.MatchString(gameTime) {
		p.gameTime = gameTime
	}
	return p, nil
}

// ValidPeriod reports whether s is one of Periods.
func ValidPeriod(s string) bool { return slices.Contains(Periods, s) }

func (p *Provider) Period() string { return p.period }

// SetPeriod persists the selected period.
func (p *Provider) SetPeriod(ctx context.Context, period string) error {
	if !ValidPeriod(period) {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	if err := p.store.Set(ctx, p.clientID, config.GamePlayPeriodKey, period); err != nil {
		return err
	}
	p.period = period
	return nil
}

// GameTime is the game clock as mm:ss, or "" if never set.
func (p *Provider) GameTime() string { return p.gameTime }

// SetGameTime persists the game clock. An empty value clears it.
func (p *Provider) SetGameTime(ctx context.Context, t string) error {
	if t != "" && !gameTimeRe.MatchString(t) {
		return fmt.Errorf("%w: %q", ErrInvalidGameTime, t)
	}
	if err := p.store.Set(ctx, p.clientID, config.GamePlayTimeKey, t); err != nil {
		return err
	}
	p.gameTime = t
	return nil
}

// OpenDialog opens one of the event dialogs, closing the others.
func (p *Provider) OpenDialog(name string) {
	if !slices.Contains(Dialogs, name) {
		return
	}
	for _, d := range Dialogs {
		p.UI.SetDialog(d, d == name)
	}
}

// OpenDialogName returns the open event dialog, or "".
func (p *Provider) OpenDialogName() string {
	for _, d := range Dialogs {
		if p.UI.Dialog(d) {
			return d
		}
	}
	return ""
}
