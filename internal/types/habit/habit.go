package habit

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindBuild Kind = "build"
	KindBreak Kind = "break"
)

// Category is an administered reference habit. Read-only at runtime.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Kind        Kind      `json:"kind" db:"kind"`
	Description string    `json:"description" db:"description"`
	Methods     string    `json:"methods" db:"methods"`
	Quote       *string   `json:"quote,omitempty" db:"quote"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UserHabit is one user's tracked instance of a category.
type UserHabit struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	CategoryID    uuid.UUID `json:"category_id" db:"category_id"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	BestStreak    int       `json:"best_streak" db:"best_streak"`
	TimesPerDay   int       `json:"times_per_day" db:"times_per_day"`
	CustomAmount  *int      `json:"custom_amount,omitempty" db:"custom_amount"`
	ReminderTimes []string  `json:"reminder_times" db:"reminder_times"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
