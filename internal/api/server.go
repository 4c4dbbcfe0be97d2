package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bigboss/internal/game"
)

type Server struct {
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/studio", s.handleStudio)
		r.Post("/game/new", s.handleNewGame)
		r.Post("/turn", s.handleTurn)
		r.Get("/report", s.handleReport)

		r.Route("/draft", func(r chi.Router) {
			r.Get("/", s.handleDraft)
			r.Post("/", s.handleStartProject)
			r.Delete("/", s.handleCancelProject)
			r.Get("/pool", s.handlePool)
			r.Get("/scripts", s.handleScripts)
			r.Post("/title", s.handleSetTitle)
			r.Post("/genre", s.handleSetGenre)
			r.Post("/script", s.handleBuyScript)
			r.Post("/hire", s.handleHire)
			r.Post("/dismiss", s.handleDismiss)
			r.Post("/bid", s.handleBid)
			r.Post("/returnees/toggle", s.handleToggleReturnee)
			r.Post("/returnees/confirm", s.handleConfirmReturnees)
			r.Post("/casting", s.handleToCasting)
			r.Post("/budgeting", s.handleToBudgeting)
			r.Post("/budget", s.handleSetBudget)
			r.Post("/channel", s.handleSetChannel)
			r.Post("/launch", s.handleLaunch)
		})

		r.Post("/projects/{id}/release", s.handleRelease)
		r.Get("/upgrades", s.handleUpgrades)
		r.Post("/upgrades/{id}/buy", s.handleBuyUpgrade)
		r.Get("/rights", s.handleRights)
		r.Post("/rights/{id}/buy", s.handleBuyRights)
		r.Post("/loans/take", s.handleTakeLoan)
		r.Post("/loans/repay", s.handleRepayLoan)
	})
}

func (s *Server) handleStudio(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.State())
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if !decodeOptional(w, r, &in) {
		return
	}
	st, err := s.game.NewGame(r.Context(), in.Name)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	rep, err := s.game.AdvanceTurn(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.LastReport())
}

func (s *Server) handleDraft(w http.ResponseWriter, _ *http.Request) {
	d, ok := s.game.Draft()
	if !ok {
		s.writeDomainError(w, game.ErrNoDraft)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	var in game.ProjectContext
	if !decodeOptional(w, r, &in) {
		return
	}
	d, err := s.game.StartProject(in)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleCancelProject(w http.ResponseWriter, _ *http.Request) {
	if err := s.game.CancelProject(); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePool(w http.ResponseWriter, _ *http.Request) {
	pool, err := s.game.TalentPool()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

func (s *Server) handleScripts(w http.ResponseWriter, _ *http.Request) {
	scripts, err := s.game.ScriptsForSale()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scripts": scripts})
}

type idInput struct {
	ID string `json:"id"`
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.draftResult(w)(s.game.SetTitle(in.Title))
}

func (s *Server) handleSetGenre(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Genre string `json:"genre"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.draftResult(w)(s.game.SetGenre(in.Genre))
}

func (s *Server) handleBuyScript(w http.ResponseWriter, r *http.Request) {
	var in idInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.draftResult(w)(s.game.BuyScript(in.ID))
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	var in idInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.game.HireTalent(in.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if res.BiddingWar != nil {
		status = http.StatusAccepted
	}
	writeJSON(w, status, res)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var in idInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.draftResult(w)(s.game.DismissTalent(in.ID))
}

func (s *Server) handleBid(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Accept bool `json:"accept"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.draftResult(w)(s.game.ResolveBiddingWar(in.Accept))
}

func (s *Server) handleToggleReturnee(w http.ResponseWriter, r *http.Request) {
	var in idInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.draftResult(w)(s.game.ToggleReturnee(in.ID))
}

func (s *Server) handleConfirmReturnees(w http.ResponseWriter, _ *http.Request) {
	s.draftResult(w)(s.game.ConfirmReturnees())
}

func (s *Server) handleToCasting(w http.ResponseWriter, _ *http.Request) {
	s.draftResult(w)(s.game.AdvanceToCasting())
}

func (s *Server) handleToBudgeting(w http.ResponseWriter, _ *http.Request) {
	s.draftResult(w)(s.game.AdvanceToBudgeting())
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Line   string `json:"line"`
		Amount int64  `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	line := game.BudgetLine(strings.ToLower(strings.TrimSpace(in.Line)))
	s.draftResult(w)(s.game.SetBudget(line, in.Amount))
}

func (s *Server) handleSetChannel(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Channel string `json:"channel"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ch := game.Channel(strings.ToLower(strings.TrimSpace(in.Channel)))
	s.draftResult(w)(s.game.SetReleaseChannel(ch))
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	p, err := s.game.LaunchProduction(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	res, err := s.game.ReleaseFinishedProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpgrades(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"upgrades": s.game.Upgrades()})
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	s.studioResult(w)(s.game.BuyUpgradeLevel(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleRights(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rights": s.game.Rights()})
}

func (s *Server) handleBuyRights(w http.ResponseWriter, r *http.Request) {
	s.studioResult(w)(s.game.BuyRights(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleTakeLoan(w http.ResponseWriter, r *http.Request) {
	s.studioResult(w)(s.game.TakeLoan(r.Context()))
}

func (s *Server) handleRepayLoan(w http.ResponseWriter, r *http.Request) {
	s.studioResult(w)(s.game.RepayLoan(r.Context()))
}

func (s *Server) draftResult(w http.ResponseWriter) func(game.Draft, error) {
	return func(d game.Draft, err error) {
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) studioResult(w http.ResponseWriter) func(game.StudioState, error) {
	return func(st game.StudioState, err error) {
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, game.ErrNoDraft),
		errors.Is(err, game.ErrTalentNotFound),
		errors.Is(err, game.ErrProjectNotFound),
		errors.Is(err, game.ErrFranchiseNotFound),
		errors.Is(err, game.ErrUnknownUpgrade),
		errors.Is(err, game.ErrUnknownRights),
		errors.Is(err, game.ErrUnknownScript):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrDraftInProgress),
		errors.Is(err, game.ErrInvalidStage),
		errors.Is(err, game.ErrBiddingWarPending),
		errors.Is(err, game.ErrNoBiddingWar),
		errors.Is(err, game.ErrReturneesPending),
		errors.Is(err, game.ErrNoReturnees),
		errors.Is(err, game.ErrAlreadyHired),
		errors.Is(err, game.ErrRosterFull),
		errors.Is(err, game.ErrProjectNotFinished),
		errors.Is(err, game.ErrUpgradeMaxed),
		errors.Is(err, game.ErrRightsOwned),
		errors.Is(err, game.ErrNoLoan):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, game.ErrRightsNotOwned), errors.Is(err, game.ErrMerchLocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrTitleRequired),
		errors.Is(err, game.ErrGenreRequired),
		errors.Is(err, game.ErrScriptRequired),
		errors.Is(err, game.ErrDirectorRequired),
		errors.Is(err, game.ErrCastRequired),
		errors.Is(err, game.ErrUnknownGenre),
		errors.Is(err, game.ErrBudgetOutOfRange),
		errors.Is(err, game.ErrUnknownChannel),
		errors.Is(err, game.ErrUnknownBudget),
		errors.Is(err, game.ErrSequelNotAllowed):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

// decodeOptional accepts an empty body as the zero value.
func decodeOptional(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := decodeJSON(r, out); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
