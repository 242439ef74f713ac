package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadiminshakov/roulette/internal/domain"
	"go.uber.org/zap"
)

const (
	requestIDHeader  = "X-Request-Id"
	defaultListLimit = 50
	maxListLimit     = 500
)

// createBetRequest uses pointers so zero values (result 0, win false) still count as present.
type createBetRequest struct {
	Player  *string  `json:"player" validate:"required,min=1"`
	Amount  *float64 `json:"amount" validate:"required,gt=0"`
	BetType *string  `json:"betType" validate:"required,min=1"`
	Result  *int     `json:"result" validate:"required,min=0,max=36"`
	Win     *bool    `json:"win" validate:"required"`
}

func (r createBetRequest) record() domain.BetRecord {
	return domain.NewBetRecord(*r.Player, *r.Amount, *r.BetType, *r.Result, *r.Win)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateBet(w http.ResponseWriter, r *http.Request) {
	const op = "web.handleCreateBet"

	log := s.logger.With(
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req createBetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("failed to decode request body", zap.Error(err))
		writeError(w, r, http.StatusBadRequest, "failed to decode request body")
		return
	}

	if err := s.validator.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			log.Warn("invalid request", zap.Error(err))
			writeError(w, r, http.StatusBadRequest, validationMessage(validateErr))
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	replayKey := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if replayKey != "" {
		s.createMu.Lock()
		defer s.createMu.Unlock()

		if prior, ok := s.replays.Get(replayKey); ok {
			log.Info("repeated request, returning stored bet", zap.Uint64("id", prior.(domain.BetRecord).ID))
			render.Status(r, http.StatusCreated)
			render.JSON(w, r, prior)
			return
		}
	}

	stored, err := s.store.Append(r.Context(), req.record())
	if err != nil {
		log.Error("failed to store bet", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if replayKey != "" {
		s.replays.SetDefault(replayKey, stored)
	}
	s.cache.Flush()
	s.hub.Publish(stored)

	log.Info("bet stored",
		zap.Uint64("id", stored.ID),
		zap.String("player", stored.Player),
		zap.String("bet_type", stored.BetType),
		zap.Bool("win", stored.Win))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, stored)
}

func (s *Server) handleListBets(w http.ResponseWriter, r *http.Request) {
	player := strings.TrimSpace(r.URL.Query().Get("player"))

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("%s|%d", player, limit)
	if cached, ok := s.cache.Get(key); ok {
		render.JSON(w, r, cached)
		return
	}

	records, err := s.store.Recent(r.Context(), player, limit)
	if err != nil {
		s.logger.Error("failed to list bets",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []domain.BetRecord{}
	}

	s.cache.SetDefault(key, records)
	render.JSON(w, r, records)
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", err.Field()))
		case "min", "max", "gt":
			msgs = append(msgs, fmt.Sprintf("field %s is out of range", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", err.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}
