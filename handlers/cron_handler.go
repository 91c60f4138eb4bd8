package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"rezzmoAPI/services"
)

// CronHandler exposes the scheduled entry points. The external scheduler is
// expected to call each at most once per slot; an accidental retry is made
// harmless by the per-window guard inside the cycle.
type CronHandler struct {
	gamificationService *services.GamificationService
}

func NewCronHandler(gamificationService *services.GamificationService) *CronHandler {
	return &CronHandler{
		gamificationService: gamificationService,
	}
}

// POST /internal/cron/gamification - full daily cycle (missions + streaks)
func (h *CronHandler) RunGamificationCycle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	summary := h.gamificationService.RunDailyCycle(ctx, time.Now().UTC())

	code := http.StatusOK
	if !summary.Success {
		code = http.StatusInternalServerError
	}
	respondWithJSON(w, code, summary)
}

// POST /internal/cron/streaks - streak evaluation only, for deployments
// that run the streak pass on its own schedule
func (h *CronHandler) RunStreakCycle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	summary := h.gamificationService.RunStreakCycle(ctx, time.Now().UTC())

	code := http.StatusOK
	if !summary.Success {
		code = http.StatusInternalServerError
	}
	respondWithJSON(w, code, summary)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
