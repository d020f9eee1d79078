package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings is the user configuration of the reminder.
// It is read from an optional YAML file and overridden by GO_REMINDER_* variables.
type Settings struct {
	Backend         string           `mapstructure:"backend" yaml:"backend" validate:"required,oneof=csv sqlite"`
	DataDir         string           `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	DatabasePath    string           `mapstructure:"database_path" yaml:"database_path"`
	Language        string           `mapstructure:"language" yaml:"language" validate:"required,oneof=ro en"`
	Schedule        string           `mapstructure:"schedule" yaml:"schedule" validate:"required,cronspec"`
	ServerPort      int              `mapstructure:"server_port" yaml:"server_port" validate:"min=1,max=65535"`
	JournalPath     string           `mapstructure:"journal_path" yaml:"journal_path"`
	Filters         FilterSettings   `mapstructure:"filters" yaml:"filters"`
	UseWorkSchedule bool             `mapstructure:"use_work_schedule" yaml:"use_work_schedule"`
	WorkSchedule    map[string]Shift `mapstructure:"work_schedule" yaml:"work_schedule" validate:"dive"`
	VCard           VCardSettings    `mapstructure:"vcard" yaml:"vcard"`
}

// FilterSettings are the persisted visibility toggles.
type FilterSettings struct {
	HideCompleted  bool `mapstructure:"hide_completed" yaml:"hide_completed"`
	HideWorkEvents bool `mapstructure:"hide_work_events" yaml:"hide_work_events"`
	ShowHolidays   bool `mapstructure:"show_holidays" yaml:"show_holidays"`
}

// Shift is one day of the work schedule, times formatted as HH:MM.
type Shift struct {
	Start  string `mapstructure:"start" yaml:"start" validate:"omitempty,clock"`
	End    string `mapstructure:"end" yaml:"end" validate:"omitempty,clock"`
	DayOff bool   `mapstructure:"day_off" yaml:"day_off"`
}

// VCardSettings describes where anniversaries are imported from.
// The web password is never stored here; it lives in the OS keyring.
type VCardSettings struct {
	Mode       string `mapstructure:"mode" yaml:"mode" validate:"omitempty,oneof=local web"`
	LocalPath  string `mapstructure:"local_path" yaml:"local_path"`
	WebURL     string `mapstructure:"web_url" yaml:"web_url" validate:"omitempty,url"`
	WebUser    string `mapstructure:"web_user" yaml:"web_user"`
	LeadDays   int    `mapstructure:"lead_days" yaml:"lead_days" validate:"min=0"`
	UrgentDays int    `mapstructure:"urgent_days" yaml:"urgent_days" validate:"min=0"`
}

const clockLayout = "15:04"

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("cronspec", validateCronSpec); err != nil {
		panic(fmt.Sprintf("failed to register cronspec validator: %v", err))
	}
	if err := validate.RegisterValidation("clock", validateClock); err != nil {
		panic(fmt.Sprintf("failed to register clock validator: %v", err))
	}
}

func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := time.Parse(clockLayout, fl.Field().String())
	return err == nil
}

// DefaultDir returns the directory holding settings, tables and the database.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppID)
}

// DefaultSettingsPath returns the settings file used when none is given.
func DefaultSettingsPath() string {
	if p := os.Getenv(EnvSettingsPath); p != "" {
		return p
	}
	return filepath.Join(DefaultDir(), SettingsFileName)
}

// weekdayKeys maps time.Weekday to the work schedule keys.
var weekdayKeys = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendCSV)
	v.SetDefault("data_dir", DefaultDir())
	v.SetDefault("database_path", "")
	v.SetDefault("language", DefaultLanguage)
	v.SetDefault("schedule", DefaultSchedule)
	v.SetDefault("server_port", DefaultPort)
	v.SetDefault("journal_path", "")
	v.SetDefault("filters.hide_completed", true)
	v.SetDefault("filters.hide_work_events", false)
	v.SetDefault("filters.show_holidays", true)
	v.SetDefault("use_work_schedule", false)
	v.SetDefault("vcard.mode", SourceModeLocal)
	v.SetDefault("vcard.lead_days", 7)
	v.SetDefault("vcard.urgent_days", 1)

	schedule := make(map[string]any, len(weekdayKeys))
	for i, day := range weekdayKeys {
		weekend := i == int(time.Saturday) || i == int(time.Sunday)
		shift := map[string]any{"start": "08:00", "end": "16:00", "day_off": false}
		if weekend {
			shift = map[string]any{"start": "00:00", "end": "00:00", "day_off": true}
		}
		schedule[day] = shift
	}
	v.SetDefault("work_schedule", schedule)
}

// Load reads the settings file at path (or the default location when empty).
// A missing file is not an error: defaults and environment overrides apply.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName(strings.TrimSuffix(SettingsFileName, filepath.Ext(SettingsFileName)))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
		}
		slog.Debug(MsgSettingsDefault,
			LogKeyComponent, CompSettings,
			LogKeyFile, path,
		)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}
	s.fillPaths()

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Default returns the settings Load produces without a file or environment.
func Default() Settings {
	v := viper.New()
	setDefaults(v)
	var s Settings
	_ = v.Unmarshal(&s)
	s.fillPaths()
	return s
}

func (s *Settings) fillPaths() {
	if s.DatabasePath == "" {
		s.DatabasePath = filepath.Join(s.DataDir, DatabaseFileName)
	}
	if s.JournalPath == "" {
		s.JournalPath = filepath.Join(s.DataDir, JournalFileName)
	}
}

// Validate checks the settings against their declared constraints.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}
	return nil
}

// ShowWorkEvents reports whether work-related events are visible at now.
// With the work schedule enabled, they are visible only inside today's shift.
func (s Settings) ShowWorkEvents(now time.Time) bool {
	if !s.UseWorkSchedule {
		return !s.Filters.HideWorkEvents
	}

	shift, ok := s.WorkSchedule[weekdayKeys[now.Weekday()]]
	if !ok || shift.DayOff {
		return false
	}

	start, err := time.Parse(clockLayout, shift.Start)
	if err != nil {
		return false
	}
	end, err := time.Parse(clockLayout, shift.End)
	if err != nil {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	return minute >= start.Hour()*60+start.Minute() && minute <= end.Hour()*60+end.Minute()
}

// Save writes the settings to path atomically (temp file + rename, 0600).
func Save(path string, s Settings) error {
	if path == "" {
		return errors.New(ErrSettingsPathEmpty)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}

	tmp, err := os.CreateTemp(dir, ".go-reminder-settings-*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	if err := os.Chmod(tmpName, FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	return nil
}
