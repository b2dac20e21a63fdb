package models

import (
	"time"
)

// DateLayout is the format of Settings.StartDate.
const DateLayout = "2006-01-02"

// Settings is the persisted app-settings object.
type Settings struct {
	StartDate      string               `json:"startDate,omitempty"`
	CurrentProgram string               `json:"currentProgram,omitempty"`
	Units          string               `json:"units"`
	DarkMode       bool                 `json:"darkMode"`
	Notifications  NotificationSettings `json:"notifications"`
	Privacy        PrivacySettings      `json:"privacy"`
	Backup         BackupSettings       `json:"backup"`
}

// NotificationSettings controls workout reminders.
type NotificationSettings struct {
	Enabled      bool   `json:"enabled"`
	ReminderTime string `json:"reminderTime,omitempty"` // HH:MM
}

// PrivacySettings controls what leaves the device.
type PrivacySettings struct {
	Analytics bool `json:"analytics"`
	ShareData bool `json:"shareData"`
}

// BackupSettings controls automatic backups through the sync outbox.
type BackupSettings struct {
	AutoBackup bool   `json:"autoBackup"`
	Frequency  string `json:"frequency,omitempty"` // daily, weekly
}

// Valid unit systems.
const (
	UnitsImperial = "imperial"
	UnitsMetric   = "metric"
)

// DefaultSettings returns the settings of a fresh install: no start date
// (program not started) and imperial units.
func DefaultSettings() Settings {
	return Settings{
		Units: UnitsImperial,
		Backup: BackupSettings{
			Frequency: "weekly",
		},
	}
}

// Validate checks the recognized options.
func (s Settings) Validate() error {
	if s.StartDate != "" {
		if _, err := time.ParseInLocation(DateLayout, s.StartDate, time.Local); err != nil {
			return &ValidationError{Field: "startDate", Message: "must be YYYY-MM-DD"}
		}
	}
	switch s.Units {
	case UnitsImperial, UnitsMetric:
	default:
		return &ValidationError{Field: "units", Message: "must be imperial or metric"}
	}
	if s.Notifications.ReminderTime != "" {
		if _, err := time.Parse("15:04", s.Notifications.ReminderTime); err != nil {
			return &ValidationError{Field: "notifications.reminderTime", Message: "must be HH:MM"}
		}
	}
	switch s.Backup.Frequency {
	case "", "daily", "weekly":
	default:
		return &ValidationError{Field: "backup.frequency", Message: "must be daily or weekly"}
	}
	return nil
}

// Start returns the program start date at local midnight. ok is false when
// no start date is set or it does not parse.
func (s Settings) Start() (start time.Time, ok bool) {
	if s.StartDate == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s.StartDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
