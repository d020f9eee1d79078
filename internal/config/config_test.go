package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-reminder/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"DateLayout", config.DateLayout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Reminder/"), "UserAgent must start with AppName/")
}

// TestDateLayout_DayMonthYear pins the table date format to dd-mm-yyyy.
func TestDateLayout_DayMonthYear(t *testing.T) {
	d, err := time.Parse(config.DateLayout, "15-06-1990")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC), d)
}

// TestTableColumns ensures every table keeps the label, notification and next-date columns.
func TestTableColumns(t *testing.T) {
	for name, cols := range map[string][]string{
		config.TableEvents:        config.EventColumns,
		config.TableAnniversaries: config.AnniversaryColumns,
		config.TableHolidays:      config.HolidayColumns,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, config.ColLabel, cols[0])
			assert.Contains(t, cols, config.ColNotifyDate)
			assert.Contains(t, cols, config.ColNextDate)
			assert.Contains(t, cols, config.ColLeadDays)
			assert.Contains(t, cols, config.ColUrgentDays)
		})
	}
}

// TestTimeoutsAndLimits ensures that operational constraints are reasonable.
func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second, "HTTPTimeout must be positive")
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute, "HTTPTimeout should not be excessively long")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second, "ShutdownTimeout must be positive")
	assert.Greater(t, config.MaxHTTPResponseSize, 0, "MaxHTTPResponseSize must be positive")
	assert.Greater(t, config.MaxAdvanceSteps, 1000, "Advance cap must cover decades of monthly steps")
}
