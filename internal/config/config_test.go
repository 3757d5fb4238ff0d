package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-lifeweeks/internal/config"
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
		{"NextBirthdayName", config.NextBirthdayName},
		{"DefaultTheme", config.DefaultTheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestWeeks_Sanity checks that the horizon bounds are coherent.
func TestWeeks_Sanity(t *testing.T) {
	assert.Less(t, config.MinWeeks, config.MaxWeeks)
	assert.GreaterOrEqual(t, config.DefaultWeeks, config.MinWeeks)
	assert.LessOrEqual(t, config.DefaultWeeks, config.MaxWeeks)
	assert.Equal(t, 0, config.DefaultWeeks%config.WeeksStep, "Default horizon should be a whole number of years")
	assert.Equal(t, 7*24*time.Hour, time.Duration(config.Week))
}

func TestZoom_Sanity(t *testing.T) {
	assert.Less(t, config.MinZoom, config.DefaultZoom)
	assert.Greater(t, config.MaxZoom, config.DefaultZoom)
	assert.Greater(t, config.ZoomStep, 0.0)
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-LifeWeeks/"), "UserAgent must start with AppName/")
}

func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second, "HTTPTimeout must be positive")
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute, "HTTPTimeout should not be excessively long")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second, "ShutdownTimeout must be positive")
	assert.Greater(t, config.MaxHTTPResponseSize, 0, "MaxHTTPResponseSize must be positive")
}
