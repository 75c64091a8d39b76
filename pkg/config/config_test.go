package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "3000", c.Server.Port)
	assert.Equal(t, DriverSQLite, c.Storage.Driver)
	assert.Equal(t, time.Second, c.Storage.SyncDebounce)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("SYNC_DEBOUNCE", "250ms")
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Server.Port)
	assert.Equal(t, DriverFile, c.Storage.Driver)
	assert.Equal(t, 250*time.Millisecond, c.Storage.SyncDebounce)
	assert.Equal(t, "s3cret", c.Auth.InviteSecret, "invite secret falls back to the session secret")
}

func TestFromViper_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := FromViper(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromViper_SeparateInviteSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("INVITE_SECRET", "invite-s3cret")

	c, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "invite-s3cret", c.Auth.InviteSecret)
}

func TestFromViper_UnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "floppy")

	_, err := FromViper(viper.New())
	assert.Error(t, err)
}
