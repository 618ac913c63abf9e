package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"habitHiveAPI/internal/apperrors"
	"habitHiveAPI/internal/types/completion"
	"habitHiveAPI/internal/types/habit"
	"habitHiveAPI/middleware"
	"habitHiveAPI/services"
)

type HabitHandler struct {
	habitService      *services.HabitService
	completionService *services.CompletionService
}

func NewHabitHandler(habitService *services.HabitService, completionService *services.CompletionService) *HabitHandler {
	return &HabitHandler{
		habitService:      habitService,
		completionService: completionService,
	}
}

func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.habitService.CreateUserHabit(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HabitHandler) GetHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habits, err := h.habitService.GetUserHabits(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
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

	found, err := h.habitService.GetUserHabit(ctx, clerkID, habitID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *HabitHandler) DeactivateHabit(w http.ResponseWriter, r *http.Request) {
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

	if err := h.habitService.DeactivateHabit(ctx, clerkID, habitID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Habit deactivated"})
}

func (h *HabitHandler) RecordCompletion(w http.ResponseWriter, r *http.Request) {
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

	// body is optional, an empty post records a default-amount completion
	var req completion.RecordCompletionRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := h.completionService.RecordCompletion(ctx, clerkID, habitID, &req)
	if err != nil {
		log.Printf("RecordCompletion: %v", err)
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *HabitHandler) UndoCompletion(w http.ResponseWriter, r *http.Request) {
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

	onDay := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		onDay, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
	}

	result, err := h.completionService.UndoLastCompletion(ctx, clerkID, habitID, onDay)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
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

// respondWithServiceError maps the core error taxonomy to HTTP statuses.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case apperrors.IsNotFound(err):
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperrors.IsConflict(err):
		respondWithError(w, http.StatusConflict, err.Error())
	case apperrors.IsAuthorization(err):
		respondWithError(w, http.StatusForbidden, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
