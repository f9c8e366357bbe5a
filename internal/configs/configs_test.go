package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	req := require.New(t)

	cfg, err := LoadConfig()
	req.NoError(err)

	req.Equal("development", cfg.Environment)
	req.Equal(8080, cfg.Port)
	req.Equal(5*time.Minute, cfg.RoomGracePeriod)
	req.Equal(int64(268435456), cfg.MaxUploadBytes)
	req.Equal(2, cfg.CreateBurst)
	req.Equal(5, cfg.ConnectBurst)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	req := require.New(t)

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("ROOM_GRACE_PERIOD", "30s")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := LoadConfig()
	req.NoError(err)

	req.Equal("production", cfg.Environment)
	req.Equal(9090, cfg.Port)
	req.Equal(30*time.Second, cfg.RoomGracePeriod)
	req.Equal(int64(1024), cfg.MaxUploadBytes)
	req.Equal([]string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Run("privileged port", func(t *testing.T) {
		t.Setenv("PORT", "80")
		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("zero grace period", func(t *testing.T) {
		t.Setenv("ROOM_GRACE_PERIOD", "0s")
		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("negative upload cap", func(t *testing.T) {
		t.Setenv("MAX_UPLOAD_BYTES", "-1")
		_, err := LoadConfig()
		require.Error(t, err)
	})
}
