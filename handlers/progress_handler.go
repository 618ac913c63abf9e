package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"habitHiveAPI/middleware"
	"habitHiveAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// GetWeeklyTracker serves the trailing-7-day tracker. An optional
// habitIds query param (comma separated) narrows it to a subset.
func (h *ProgressHandler) GetWeeklyTracker(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var habitIDs []uuid.UUID
	if raw := r.URL.Query().Get("habitIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Invalid habit id in habitIds")
				return
			}
			habitIDs = append(habitIDs, id)
		}
	}

	days, err := h.progressService.GetWeeklyTracker(ctx, clerkID, habitIDs)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"days": days})
}

func (h *ProgressHandler) GetHabitProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := uuid.Parse(mux.Vars(r)["habitId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit id")
		return
	}

	p, err := h.progressService.GetHabitProgress(ctx, clerkID, habitID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}
