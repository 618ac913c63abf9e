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
	"habitHiveAPI/internal/types/habit"
)

// HabitService manages the habits a user tracks. Abandoned habits are
// deactivated, never hard-deleted, so their ledger history survives.
type HabitService struct {
	db *pgxpool.Pool
}

func NewHabitService(db *pgxpool.Pool) *HabitService {
	return &HabitService{db: db}
}

func (s *HabitService) CreateUserHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.UserHabit, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apperrors.Validation("invalid category id")
	}

	timesPerDay := req.TimesPerDay
	if timesPerDay == 0 {
		timesPerDay = 1
	}
	if timesPerDay < 1 {
		return nil, apperrors.Validation("timesPerDay must be at least 1")
	}

	if req.CustomAmount != nil && *req.CustomAmount < 1 {
		return nil, apperrors.Validation("customAmount must be at least 1")
	}

	// duplicates allowed, order preserved
	for _, r := range req.ReminderTimes {
		if _, err := time.Parse("15:04", r); err != nil {
			return nil, apperrors.Validation("invalid reminder time %q, expected HH:MM", r)
		}
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM habit_categories WHERE id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check habit category: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("habit category not found")
	}

	reminders := req.ReminderTimes
	if reminders == nil {
		reminders = []string{}
	}

	h := &habit.UserHabit{
		ID:            uuid.New(),
		UserID:        userID,
		CategoryID:    categoryID,
		IsActive:      true,
		TimesPerDay:   timesPerDay,
		CustomAmount:  req.CustomAmount,
		ReminderTimes: reminders,
	}

	query := `
	INSERT INTO user_habits (id, user_id, category_id, is_active, current_streak, best_streak, times_per_day, custom_amount, reminder_times, created_at)
	VALUES ($1, $2, $3, true, 0, 0, $4, $5, $6, NOW())
	RETURNING created_at
	`

	err = s.db.QueryRow(
		ctx,
		query,
		h.ID,
		h.UserID,
		h.CategoryID,
		h.TimesPerDay,
		h.CustomAmount,
		h.ReminderTimes,
	).Scan(&h.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create user habit: %w", err)
	}

	return h, nil
}

func (s *HabitService) GetUserHabits(ctx context.Context, clerkID string) ([]*habit.UserHabit, error) {
	query := `
	SELECT h.id, h.user_id, h.category_id, h.is_active, h.current_streak, h.best_streak,
	       h.times_per_day, h.custom_amount, h.reminder_times, h.created_at
	FROM user_habits h
	JOIN users u ON h.user_id = u.id
	WHERE u.clerk_id = $1 AND h.is_active = true
	ORDER BY h.created_at
	`

	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user habits: %w", err)
	}
	defer rows.Close()

	habits := make([]*habit.UserHabit, 0)
	for rows.Next() {
		h := &habit.UserHabit{}
		err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.CategoryID,
			&h.IsActive,
			&h.CurrentStreak,
			&h.BestStreak,
			&h.TimesPerDay,
			&h.CustomAmount,
			&h.ReminderTimes,
			&h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user habit: %w", err)
		}
		habits = append(habits, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return habits, nil
}

func (s *HabitService) GetUserHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*habit.UserHabit, error) {
	query := `
	SELECT h.id, h.user_id, h.category_id, h.is_active, h.current_streak, h.best_streak,
	       h.times_per_day, h.custom_amount, h.reminder_times, h.created_at
	FROM user_habits h
	JOIN users u ON h.user_id = u.id
	WHERE h.id = $1 AND u.clerk_id = $2
	`

	h := &habit.UserHabit{}
	err := s.db.QueryRow(ctx, query, habitID, clerkID).Scan(
		&h.ID,
		&h.UserID,
		&h.CategoryID,
		&h.IsActive,
		&h.CurrentStreak,
		&h.BestStreak,
		&h.TimesPerDay,
		&h.CustomAmount,
		&h.ReminderTimes,
		&h.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("habit not found")
		}
		return nil, fmt.Errorf("failed to get user habit: %w", err)
	}

	return h, nil
}

func (s *HabitService) DeactivateHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error {
	query := `
	UPDATE user_habits h
	SET is_active = false
	FROM users u
	WHERE h.id = $1 AND h.user_id = u.id AND u.clerk_id = $2
	`

	result, err := s.db.Exec(ctx, query, habitID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to deactivate habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound("habit not found")
	}

	return nil
}
