package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitHiveAPI/internal/apperrors"
	"habitHiveAPI/internal/progress"
	"habitHiveAPI/internal/streak"
)

// ProgressService is the read-only aggregation layer over the ledger
// and the habit registry.
type ProgressService struct {
	db          *pgxpool.Pool
	completions *CompletionService
}

func NewProgressService(db *pgxpool.Pool, completions *CompletionService) *ProgressService {
	return &ProgressService{db: db, completions: completions}
}

// GetWeeklyTracker builds the trailing-7-day tracker across the user's
// active habits, or the given subset of them.
func (s *ProgressService) GetWeeklyTracker(ctx context.Context, clerkID string, habitIDs []uuid.UUID) ([]progress.DayStat, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT id, created_at
	FROM user_habits
	WHERE user_id = $1 AND is_active = true
	`
	args := []any{userID}
	if len(habitIDs) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, habitIDs)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer rows.Close()

	createdAt := make(map[uuid.UUID]time.Time)
	for rows.Next() {
		var id uuid.UUID
		var created time.Time
		if err := rows.Scan(&id, &created); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		createdAt[id] = created
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	now := time.Now()
	to := streak.StartOfDay(now).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -7)

	ids := make([]uuid.UUID, 0, len(createdAt))
	for id := range createdAt {
		ids = append(ids, id)
	}

	completions, err := s.completions.CompletionsInRange(ctx, userID, ids, from, to)
	if err != nil {
		return nil, err
	}

	counts := make(progress.DayHabitCounts)
	for _, c := range completions {
		key := streak.DayKey(c.CompletedAt)
		if counts[key] == nil {
			counts[key] = make(map[uuid.UUID]int)
		}
		counts[key][c.UserHabitID]++
	}

	return progress.BuildWeeklyTracker(createdAt, counts, now), nil
}

// GetHabitProgress builds the all-time view for one habit the caller owns.
func (s *ProgressService) GetHabitProgress(ctx context.Context, clerkID string, habitID uuid.UUID) (*progress.HabitProgress, error) {
	var createdAt time.Time
	err := s.db.QueryRow(ctx, `
		SELECT h.created_at
		FROM user_habits h
		JOIN users u ON h.user_id = u.id
		WHERE h.id = $1 AND u.clerk_id = $2`,
		habitID, clerkID).Scan(&createdAt)
	if err != nil {
		return nil, apperrors.NotFound("habit not found")
	}

	rows, err := s.db.Query(ctx, `
		SELECT to_char(completed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM completions
		WHERE user_habit_id = $1
		GROUP BY 1`,
		habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completion counts: %w", err)
	}
	defer rows.Close()

	perDay := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		perDay[day] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	p := progress.BuildHabitProgress(habitID, createdAt, perDay, time.Now())
	return &p, nil
}
