package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	prev := Env
	Env = values
	t.Cleanup(func() { Env = prev })
}

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	withEnv(t, map[string]string{"APP_PORT": "5000"})
	t.Setenv("APP_PORT", "6000")

	assert.Equal(t, "5000", GetEnv("APP_PORT", "4000"))
}

func TestGetEnvFallsBackToOS(t *testing.T) {
	withEnv(t, map[string]string{})
	t.Setenv("CACHE_HOST", "redis")

	assert.Equal(t, "redis", GetEnv("CACHE_HOST", "localhost"))
	assert.Equal(t, "fallback", GetEnv("FETANPAY_UNSET_KEY", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	withEnv(t, map[string]string{"GOOD": "15", "BAD": "fifteen"})

	assert.Equal(t, 15, GetEnvInt("GOOD", 1))
	assert.Equal(t, 1, GetEnvInt("BAD", 1))
	assert.Equal(t, 7, GetEnvInt("MISSING", 7))
}

func TestGetEnvBool(t *testing.T) {
	withEnv(t, map[string]string{"ON": "yes", "OFF": "0"})

	assert.True(t, GetEnvBool("ON", false))
	assert.False(t, GetEnvBool("OFF", true))
	assert.True(t, GetEnvBool("MISSING", true))
}

func TestRequire(t *testing.T) {
	withEnv(t, map[string]string{"DATABASE_URL": "  "})

	_, err := Require("DATABASE_URL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	Env["DATABASE_URL"] = "u:p@tcp(db:3306)/fetanpay"
	val, err := Require("DATABASE_URL")
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(db:3306)/fetanpay", val)
}
