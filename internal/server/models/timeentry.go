package models

import "time"

// Time-entry category labels as displayed by the Hebrew UI.
const (
	TimeCategoryDevelopment = "פיתוח"
	TimeCategoryDesign      = "עיצוב"
	TimeCategoryMeeting     = "פגישה"
	TimeCategoryOther       = "אחר"
)

// TimeCategories lists the allowed category labels.
var TimeCategories = []string{
	TimeCategoryDevelopment,
	TimeCategoryDesign,
	TimeCategoryMeeting,
	TimeCategoryOther,
}

type TimeEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	DurationSeconds int64     `json:"durationSeconds"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TimerState is the single persisted record representing an open
// time-tracking interval for one user. Writes overwrite unconditionally;
// the last writer wins across devices.
type TimerState struct {
	UserID    string    `json:"userId"`
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"startedAt"`
}
