package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ELS_PORT", "")
	t.Setenv("RATE_LIMIT", "")
	t.Setenv("MONGO_DB", "")

	s := newSettings()
	assert.Equal(t, "5000", s.PORT)
	assert.Equal(t, 9200, s.ELS_PORT)
	assert.Equal(t, uint(7), s.RATE_LIMIT)
	assert.Equal(t, "english_center", s.MONGO_DB)
}

func TestNewSettingsFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("ELS_PORT", "9300")
	t.Setenv("RATE_LIMIT", "20")
	t.Setenv("JWT_SECRET_KEY", "secret")

	s := newSettings()
	assert.Equal(t, "8081", s.PORT)
	assert.Equal(t, 9300, s.ELS_PORT)
	assert.Equal(t, uint(20), s.RATE_LIMIT)
	assert.Equal(t, "secret", s.JWT_SECRET_KEY)
}

func TestNewSettingsBadPort(t *testing.T) {
	t.Setenv("ELS_PORT", "not-a-port")
	require.Panics(t, func() { newSettings() })
}
