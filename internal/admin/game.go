package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vladpavlovski/phm-sub006/internal/gameplay"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/panel"
	"github.com/vladpavlovski/phm-sub006/internal/routes"
	"github.com/vladpavlovski/phm-sub006/internal/uistate"
)

var dialogLabels = map[string]string{
	uistate.DialogGoal:    "Goal",
	uistate.DialogPenalty: "Penalty",
	uistate.DialogShot:    "Shot",
	uistate.DialogLineup:  "Lineup",
}

type gamePage struct {
	page
	GameLink     string
	Periods      []string
	Period       string
	GameTime     string
	PeriodAction string
	Error        string
	Dialogs      []link
	Dialog       string
	DialogLabel  string
	CloseLink    string
	Teams        *panel.SubPanel
	Lineup       *panel.SubPanel
}

func (h *Handler) gamePlay(w http.ResponseWriter, r *http.Request) {
	p, err := gameplay.Mount(r.Context(), h.prefs, ClientID(r.Context()), uistate.FromQuery(r.URL.Query()))
	if err != nil {
		h.logger.Error("Game play state load failed", "error", err)
		http.Error(w, "could not load game play state", http.StatusBadGateway)
		return
	}
	h.renderGame(w, r, http.StatusOK, p, "")
}

func (h *Handler) setPeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org, id := chi.URLParam(r, "org"), chi.URLParam(r, "id")
	p, err := gameplay.Mount(ctx, h.prefs, ClientID(ctx), nil)
	if err != nil {
		h.logger.Error("Game play state load failed", "error", err)
		http.Error(w, "could not load game play state", http.StatusBadGateway)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if err := p.SetPeriod(ctx, r.PostForm.Get("period")); err != nil {
		h.renderGame(w, r, gameStatus(err), p, "Period must be one of 1, 2, 3, OT, SO")
		return
	}
	if _, ok := r.PostForm["gameTime"]; ok {
		if err := p.SetGameTime(ctx, r.PostForm.Get("gameTime")); err != nil {
			h.renderGame(w, r, gameStatus(err), p, "Game time must be mm:ss")
			return
		}
	}
	redirect(w, r, routes.GamePlay(org, id))
}

func gameStatus(err error) int {
	if errors.Is(err, gameplay.ErrInvalidPeriod) || errors.Is(err, gameplay.ErrInvalidGameTime) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func (h *Handler) renderGame(w http.ResponseWriter, r *http.Request, status int, gp *gameplay.Provider, errText string) {
	ctx := r.Context()
	org, id := chi.URLParam(r, "org"), chi.URLParam(r, "id")
	def, _ := h.cat.Entity("Game")

	node, err := h.store.Get(ctx, def.Name, id)
	if errors.Is(err, graph.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	title := id
	if err != nil {
		h.logger.Error("Game load failed", "id", id, "error", err)
		errText = "Could not load game: " + err.Error()
		status = statusFor(err)
	} else {
		title = def.Title(node.Props)
	}

	self := routes.GamePlay(org, id)
	p := gamePage{
		page:         h.newPage(r, "Game play: "+title),
		GameLink:     routes.EntityDetail(org, def.Path, id),
		Periods:      gameplay.Periods,
		Period:       gp.Period(),
		GameTime:     gp.GameTime(),
		PeriodAction: routes.GamePlayPeriod(org, id),
		Error:        errText,
		Dialog:       gp.OpenDialogName(),
		CloseLink:    self,
	}
	p.DialogLabel = dialogLabels[p.Dialog]
	for _, d := range gameplay.Dialogs {
		p.Dialogs = append(p.Dialogs, link{Label: dialogLabels[d], URL: routes.WithQuery(self, uistate.Default().With(d, nil).Query())})
	}

	pnl, err := h.engine.Load(ctx, def.Name, id, nil)
	if err == nil {
		p.Teams = pnl.SubPanel("teams")
		p.Lineup = pnl.SubPanel("players")
	}
	h.render(w, r, status, "game", p)
}
