package completion

import (
	"time"

	"github.com/google/uuid"
)

// Completion is one recorded event in the ledger. Rows are append-only;
// the only delete path is the undo of the most recent event of a day.
type Completion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserHabitID uuid.UUID `json:"user_habit_id" db:"user_habit_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	Amount      int       `json:"amount" db:"amount"`
}

type RecordCompletionRequest struct {
	Amount *int `json:"amount,omitempty"`
}

// RecordResult carries the updated derived state back with the mutation
// so the client does not need a follow-up fetch.
type RecordResult struct {
	Completion     *Completion `json:"completion"`
	CompletedToday int         `json:"completed_today"`
	CurrentStreak  int         `json:"current_streak"`
	BestStreak     int         `json:"best_streak"`
}

type UndoResult struct {
	Removed        *Completion `json:"removed"`
	CompletedOnDay int         `json:"completed_on_day"`
	CurrentStreak  int         `json:"current_streak"`
	BestStreak     int         `json:"best_streak"`
}
