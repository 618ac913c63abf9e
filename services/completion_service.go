package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitHiveAPI/internal/apperrors"
	"habitHiveAPI/internal/streak"
	"habitHiveAPI/internal/types/completion"
)

// CompletionService is the append-only completion ledger. Every
// mutation runs in one transaction that locks the habit row, so two
// concurrent records (or a record racing an undo) on the same habit
// serialize, and the streak recompute always sees a settled ledger.
// Operations on different habits don't contend.
type CompletionService struct {
	db *pgxpool.Pool
}

func NewCompletionService(db *pgxpool.Pool) *CompletionService {
	return &CompletionService{db: db}
}

func (s *CompletionService) RecordCompletion(ctx context.Context, clerkID string, habitID uuid.UUID, req *completion.RecordCompletionRequest) (*completion.RecordResult, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var timesPerDay, bestStreak int
	var customAmount *int
	err = tx.QueryRow(ctx, `
		SELECT times_per_day, custom_amount, best_streak
		FROM user_habits
		WHERE id = $1 AND user_id = $2 AND is_active = true
		FOR UPDATE`,
		habitID, userID).Scan(&timesPerDay, &customAmount, &bestStreak)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("habit not found")
		}
		return nil, fmt.Errorf("failed to lock habit: %w", err)
	}

	amount := 1
	if customAmount != nil {
		amount = *customAmount
	}
	if req != nil && req.Amount != nil {
		amount = *req.Amount
	}
	if amount < 1 {
		return nil, apperrors.Validation("amount must be at least 1")
	}

	c := &completion.Completion{
		ID:          uuid.New(),
		UserHabitID: habitID,
		Amount:      amount,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO completions (id, user_habit_id, completed_at, amount)
		VALUES ($1, $2, NOW(), $3)
		RETURNING completed_at`,
		c.ID, c.UserHabitID, c.Amount).Scan(&c.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	counts, err := dayCounts(ctx, tx, habitID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	currentStreak := streak.Current(counts, timesPerDay, now)
	if currentStreak > bestStreak {
		bestStreak = currentStreak
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_habits SET current_streak = $2, best_streak = $3 WHERE id = $1`,
		habitID, currentStreak, bestStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to update streaks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	return &completion.RecordResult{
		Completion:     c,
		CompletedToday: counts[streak.DayKey(now)],
		CurrentStreak:  currentStreak,
		BestStreak:     bestStreak,
	}, nil
}

func (s *CompletionService) UndoLastCompletion(ctx context.Context, clerkID string, habitID uuid.UUID, onDay time.Time) (*completion.UndoResult, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	dayStart := streak.StartOfDay(onDay)
	dayEnd := dayStart.AddDate(0, 0, 1)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var timesPerDay, bestStreak int
	err = tx.QueryRow(ctx, `
		SELECT times_per_day, best_streak
		FROM user_habits
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`,
		habitID, userID).Scan(&timesPerDay, &bestStreak)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("habit not found")
		}
		return nil, fmt.Errorf("failed to lock habit: %w", err)
	}

	removed := &completion.Completion{UserHabitID: habitID}
	err = tx.QueryRow(ctx, `
		DELETE FROM completions
		WHERE id = (
			SELECT id FROM completions
			WHERE user_habit_id = $1 AND completed_at >= $2 AND completed_at < $3
			ORDER BY completed_at DESC, id DESC
			LIMIT 1
		)
		RETURNING id, completed_at, amount`,
		habitID, dayStart, dayEnd).Scan(&removed.ID, &removed.CompletedAt, &removed.Amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("no completion to undo on %s", dayStart.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to undo completion: %w", err)
	}

	counts, err := dayCounts(ctx, tx, habitID)
	if err != nil {
		return nil, err
	}

	currentStreak := streak.Current(counts, timesPerDay, time.Now())
	// best streak never decreases, even when an undo shrinks the run
	if currentStreak > bestStreak {
		bestStreak = currentStreak
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_habits SET current_streak = $2, best_streak = $3 WHERE id = $1`,
		habitID, currentStreak, bestStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to update streaks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit undo: %w", err)
	}

	return &completion.UndoResult{
		Removed:        removed,
		CompletedOnDay: counts[streak.DayKey(dayStart)],
		CurrentStreak:  currentStreak,
		BestStreak:     bestStreak,
	}, nil
}

// CompletionsOn counts a habit's completions within one UTC calendar day.
func (s *CompletionService) CompletionsOn(ctx context.Context, clerkID string, habitID uuid.UUID, day time.Time) (int, error) {
	dayStart := streak.StartOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
	SELECT COUNT(*)
	FROM completions c
	JOIN user_habits h ON c.user_habit_id = h.id
	JOIN users u ON h.user_id = u.id
	WHERE c.user_habit_id = $1 AND u.clerk_id = $2
		AND c.completed_at >= $3 AND c.completed_at < $4
	`

	var count int
	err := s.db.QueryRow(ctx, query, habitID, clerkID, dayStart, dayEnd).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}

	return count, nil
}

// CompletionsInRange fetches completions for many habits in one query,
// [from, to) on completed_at. The aggregator depends on this batched
// form so a week view is not one query per day per habit.
func (s *CompletionService) CompletionsInRange(ctx context.Context, userID uuid.UUID, habitIDs []uuid.UUID, from, to time.Time) ([]*completion.Completion, error) {
	if len(habitIDs) == 0 {
		return []*completion.Completion{}, nil
	}

	query := `
	SELECT c.id, c.user_habit_id, c.completed_at, c.amount
	FROM completions c
	JOIN user_habits h ON c.user_habit_id = h.id
	WHERE c.user_habit_id = ANY($1) AND h.user_id = $2
		AND c.completed_at >= $3 AND c.completed_at < $4
	ORDER BY c.completed_at
	`

	rows, err := s.db.Query(ctx, query, habitIDs, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %w", err)
	}
	defer rows.Close()

	completions := make([]*completion.Completion, 0)
	for rows.Next() {
		c := &completion.Completion{}
		if err := rows.Scan(&c.ID, &c.UserHabitID, &c.CompletedAt, &c.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return completions, nil
}

// dayCounts groups a habit's full ledger into per-UTC-day event counts
// for the streak recompute. Runs on the ledger transaction so it sees
// the mutation it follows.
func dayCounts(ctx context.Context, tx pgx.Tx, habitID uuid.UUID) (map[string]int, error) {
	rows, err := tx.Query(ctx, `
		SELECT to_char(completed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM completions
		WHERE user_habit_id = $1
		GROUP BY 1`,
		habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch day counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		counts[day] = n
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}
