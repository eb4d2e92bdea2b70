package settingsstore

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/entities"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// GetDailyVerseSchedule returns the prefetch cron schedule (database > config)
func (s *SettingsStore) GetDailyVerseSchedule(cfg config.DailyVerse) string {
	setting, err := s.db.GetSetting(entities.SettingKeyDailySchedule)
	if err == nil && setting.Value != "" {
		return setting.Value
	}
	if cfg.Schedule != "" {
		return cfg.Schedule
	}
	return "5 0 * * *"
}

// SetDailyVerseSchedule validates and saves the prefetch schedule.
func (s *SettingsStore) SetDailyVerseSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeyDailySchedule, schedule)
}

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// GetNextRunTime calculates when the schedule fires next after from.
func GetNextRunTime(schedule string, from time.Time) (*time.Time, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}
