package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/application"
	"telegram-clinic-support/internal/usecase"
)

// Server exposes the staff-facing read-only API: login, the daily
// brief and the follow-up queue. It reuses the same usecases the bot
// commands run; nothing here can mutate clinic data.
type Server struct {
	statsUC usecase.StatsUseCase
	auth    *AuthManager
	apiKey  string
	health  func() map[string]bool
	log     *zerolog.Logger
}

func NewServer(statsUC usecase.StatsUseCase, auth *AuthManager, apiKey string, health func() map[string]bool, logger *zerolog.Logger) *Server {
	if health == nil {
		health = func() map[string]bool { return map[string]bool{} }
	}
	return &Server{statsUC: statsUC, auth: auth, apiKey: apiKey, health: health, log: logger}
}

// Router builds the chi router with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/brief", s.handleBrief)
			r.Get("/followups", s.handleFollowups)
		})
	})

	return Chain(r,
		Recover(s.log),
		TraceID(s.log),
		RequestLog(s.log),
		Timeout(15*time.Second),
	)
}

// requireAuth accepts a minted session token or the raw API key as a
// bearer credential. Rejections share one body so probes learn nothing.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin api key is not configured")
			s.forbidden(w)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}
		if hdr := r.Header.Get("Authorization"); hdr != "" {
			parts := strings.SplitN(hdr, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] == s.apiKey {
				next.ServeHTTP(w, r)
				return
			}
		}
		s.forbidden(w)
	})
}

func (s *Server) forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if s.apiKey == "" || req.APIKey != s.apiKey {
		s.forbidden(w)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleBrief serves GET /api/v1/brief?date=YYYY-MM-DD (default today).
func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	date := application.ParseBriefDate(r.URL.Query().Get("date"))
	brief := s.statsUC.DailyBrief(r.Context(), date)
	writeJSON(w, http.StatusOK, brief)
}

// handleFollowups serves GET /api/v1/followups?limit=N.
func (s *Server) handleFollowups(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if arg := r.URL.Query().Get("limit"); arg != "" {
		if n, err := strconv.Atoi(arg); err == nil {
			limit = n
		}
	}
	appts := s.statsUC.Followups(r.Context(), limit)

	type row struct {
		PatientName  string    `json:"patient_name"`
		TimeSlotText string    `json:"time_slot_text"`
		Status       string    `json:"status"`
		CreatedAt    time.Time `json:"created_at"`
	}
	rows := make([]row, 0, len(appts))
	for _, a := range appts {
		rows = append(rows, row{
			PatientName:  a.PatientName,
			TimeSlotText: a.TimeSlotText,
			Status:       string(a.Status),
			CreatedAt:    a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"followups": rows, "count": len(rows)})
}

// handleHealth reports configured collaborator availability. It never
// performs live calls; the flags reflect wiring, not liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "components": s.health()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
