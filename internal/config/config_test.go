package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("GYM_TIMEZONE", "UTC")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, StoreMemory, c.StoreDriver)
	assert.False(t, c.MonthlyDailyLimit)
	assert.False(t, c.AdminEnabled())
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, c.CORSAllowedOrigins)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("GYM_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := App{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "gym", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=gym sslmode=disable", c.DSN())
}
