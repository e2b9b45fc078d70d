package main

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("PEINFO_NO_COLOR")
	os.Unsetenv("PEINFO_LOG_LEVEL")

	cfg := loadConfig()
	require.False(t, cfg.noColor)
	require.Equal(t, logrus.WarnLevel, cfg.logLevel)
}

func TestLoadConfigInvalidLevelFallsBackToWarn(t *testing.T) {
	os.Setenv("PEINFO_LOG_LEVEL", "not-a-level")
	defer os.Unsetenv("PEINFO_LOG_LEVEL")

	cfg := loadConfig()
	require.Equal(t, logrus.WarnLevel, cfg.logLevel)
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	cfg := config{logLevel: logrus.DebugLevel}
	log := newLogger(cfg)
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
}
