package simulation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/cache"
)

// Handler serves the simulation backend API.
type Handler struct {
	simulator *Simulator
	cache     cache.SimulationCache
	sem       *semaphore.Weighted
}

// NewHandler limits concurrent simulations to maxConcurrent.
func NewHandler(simulator *Simulator, cacheImpl cache.SimulationCache, maxConcurrent int64) *Handler {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSimulationCache()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Handler{
		simulator: simulator,
		cache:     cacheImpl,
		sem:       semaphore.NewWeighted(maxConcurrent),
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/scenario/run", h.RunScenario).Methods(http.MethodPost, http.MethodOptions)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	req := DefaultRequest()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid JSON body"})
		return
	}

	sc, err := req.Validate()
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	ctx := r.Context()
	key := fingerprint(sc)
	if payload, ok, err := h.cache.Get(ctx, key); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
		return
	} else if err != nil {
		log.Warn().Err(err).Msg("simulation: cache get failed")
	}

	resp, err := h.run(ctx, sc)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "simulation cancelled"})
			return
		}
		log.Error().Err(err).Msg("simulation: run failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "simulation failed"})
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("simulation: encode response failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "simulation failed"})
		return
	}

	if err := h.cache.Set(ctx, key, payload); err != nil {
		log.Warn().Err(err).Msg("simulation: cache set failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (h *Handler) run(ctx context.Context, sc Scenario) (*Response, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	log.Debug().
		Float64("demand", sc.Demand).
		Float64("lead_time", sc.LeadTime).
		Str("scenario_type", sc.ScenarioType).
		Msg("simulation: running scenario")

	return h.simulator.Run(ctx, sc)
}

func fingerprint(sc Scenario) string {
	sc.ScenarioType = strings.ToLower(sc.ScenarioType)
	raw, _ := json.Marshal(sc)
	hash := sha1.Sum(raw)
	return hex.EncodeToString(hash[:])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// CORS allows the listed origins; "*" allows any.
func CORS(allowedOrigins []string) mux.MiddlewareFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		for _, part := range strings.Split(origin, ",") {
			part = strings.TrimSpace(part)
			if part == "*" {
				allowAll = true
			} else if part != "" {
				allowed[part] = struct{}{}
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; ok || (allowAll && origin != "") {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
