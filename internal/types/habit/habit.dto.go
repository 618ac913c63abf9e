package habit

type CreateHabitRequest struct {
	CategoryID    string   `json:"categoryId" validate:"required"`
	TimesPerDay   int      `json:"timesPerDay"`
	CustomAmount  *int     `json:"customAmount,omitempty"`
	ReminderTimes []string `json:"reminderTimes,omitempty"`
}
