package workspace

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studybuddy/studybuddy/internal/quiz"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Reminder is the daily study reminder.
type Reminder struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
}

// Due reports whether now is at or past today's reminder time. A disabled
// or unparsable reminder is never due.
func (r Reminder) Due(now time.Time) bool {
	if !r.Enabled {
		return false
	}
	at, err := time.Parse("15:04", r.Time)
	if err != nil {
		return false
	}
	return now.Hour()*60+now.Minute() >= at.Hour()*60+at.Minute()
}

// Settings are the user's preferences.
type Settings struct {
	Theme             string   `json:"theme" validate:"oneof=light dark"`
	DefaultDifficulty string   `json:"defaultDifficulty" validate:"oneof=Easy Medium Hard"`
	Reminder          Reminder `json:"reminder"`
}

// DefaultSettings returns the settings of a new user.
func DefaultSettings() Settings {
	return Settings{
		Theme:             ThemeDark,
		DefaultDifficulty: quiz.DifficultyMedium,
		Reminder:          Reminder{Enabled: false, Time: "17:00"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	return validate.Struct(s)
}
