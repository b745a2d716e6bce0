package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trading-journal/internal/errors"
	"trading-journal/internal/levels"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/pnl"
	"trading-journal/internal/scoring"
	"trading-journal/internal/security"
	"trading-journal/internal/store"
	"trading-journal/internal/streak"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type streakRequest struct {
	TradeDates   []string `json:"trade_dates" validate:"omitempty,dive,civildate"`
	CheckinDates []string `json:"checkin_dates" validate:"omitempty,dive,civildate"`
	// Nil falls back to the server's configured allowance.
	AllowedRestDaysPerWeek *int   `json:"allowed_rest_days_per_week" validate:"omitempty,min=0,max=7"`
	AsOf                   string `json:"as_of" validate:"omitempty,civildate"`
}

type consistencyEntry struct {
	TradeDate     string   `json:"trade_date" validate:"required,civildate"`
	Outcome       string   `json:"outcome" validate:"omitempty,oneof=win loss breakeven"`
	StopLoss      *float64 `json:"stop_loss"`
	EmotionBefore string   `json:"emotion_before"`
	RulesFollowed []string `json:"rules_followed"`
}

type consistencyRequest struct {
	Entries []consistencyEntry `json:"entries" validate:"dive"`
}

type checkinRequest struct {
	Date string `json:"date" validate:"omitempty,civildate"`
	Mood string `json:"mood"`
	Note string `json:"note" validate:"max=2000"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	var req streakRequest
	if !s.decode(w, r, &req) {
		return
	}

	allowance := s.cfg.RestDaysPerWeek
	if req.AllowedRestDaysPerWeek != nil {
		allowance = *req.AllowedRestDaysPerWeek
	}

	if req.AsOf != "" {
		day, _ := streak.NormalizeDate(req.AsOf)
		now, _ := time.Parse(models.DateLayout, day)
		writeJSON(w, http.StatusOK, streak.Calculate(now, req.TradeDates, req.CheckinDates, allowance))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Streaks.Calculate(req.TradeDates, req.CheckinDates, allowance))
}

func (s *Server) handleConsistency(w http.ResponseWriter, r *http.Request) {
	var req consistencyRequest
	if !s.decode(w, r, &req) {
		return
	}

	entries := make([]scoring.Entry, len(req.Entries))
	for i, e := range req.Entries {
		day, _ := streak.NormalizeDate(e.TradeDate)
		date, _ := time.Parse(models.DateLayout, day)
		outcome, _ := models.ParseOutcome(e.Outcome)
		entries[i] = scoring.Entry{
			TradeDate:     date,
			Outcome:       outcome,
			StopLoss:      e.StopLoss,
			EmotionBefore: e.EmotionBefore,
			RulesFollowed: e.RulesFollowed,
		}
	}
	writeJSON(w, http.StatusOK, scoring.Calculate(entries))
}

func (s *Server) handlePnL(w http.ResponseWriter, r *http.Request) {
	var in pnl.Input
	if !s.decode(w, r, &in) {
		return
	}

	res, err := s.deps.PnL.Calculate(in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("trades")
	count, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, r, errors.NewValidationError("trades", raw, "must be an integer"))
		return
	}
	writeJSON(w, http.StatusOK, levels.ForTradeCount(count))
}

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	catalog := s.deps.PnL.Catalog()
	symbols := catalog.Symbols()
	out := make([]pnl.Instrument, 0, len(symbols))
	for _, sym := range symbols {
		if inst, err := catalog.Lookup(sym); err == nil {
			out = append(out, inst)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Insights.Dashboard(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TradeFilter{
		UserID: chi.URLParam(r, "userID"),
		Symbol: pnl.NormalizeSymbol(q.Get("symbol")),
	}
	for key, dst := range map[string]*time.Time{"from": &filter.StartDate, "to": &filter.EndDate} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			s.writeError(w, r, errors.NewValidationError(key, v, "must be a date (YYYY-MM-DD)"))
			return
		}
		*dst = t
	}
	rep, err := s.deps.Insights.Report(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req checkinRequest
	if !s.decode(w, r, &req) {
		return
	}

	date := s.deps.Streaks.Today()
	if req.Date != "" {
		date, _ = streak.NormalizeDate(req.Date)
	}

	c := &models.Checkin{
		UserID: userID,
		Date:   date,
		Mood:   security.SanitizeText(req.Mood),
		Note:   security.SanitizeText(req.Note),
	}
	if err := s.deps.Store.SaveCheckin(r.Context(), c); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Insights != nil {
		s.deps.Insights.Invalidate(userID)
	}
	logging.LogCheckin(logging.FromContext(r.Context()), userID, c.Date)
	writeJSON(w, http.StatusCreated, c)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errors.ErrInputValidation.Error(), Fields: FieldErrors(err)})
		return false
	}
	return true
}

// statusFor maps journal errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrInputValidation):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrUnknownInstrument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrDuplicateCheckin):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = http.StatusText(status)
	}

	resp := errorResponse{Error: msg}
	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = map[string]string{verr.Field: verr.Message}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
