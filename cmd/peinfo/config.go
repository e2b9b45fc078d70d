package main

import (
	"github.com/sirupsen/logrus"
	env "github.com/xyproto/env/v2"
)

// config holds the environment-driven defaults for peinfo's output, mirroring
// the teacher's own use of xyproto/env/v2 for runtime tuning knobs.
type config struct {
	noColor  bool
	logLevel logrus.Level
}

func loadConfig() config {
	level, err := logrus.ParseLevel(env.Str("PEINFO_LOG_LEVEL", "warning"))
	if err != nil {
		level = logrus.WarnLevel
	}
	return config{
		noColor:  env.Bool("PEINFO_NO_COLOR"),
		logLevel: level,
	}
}

func newLogger(cfg config) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(cfg.logLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: cfg.noColor})
	return log
}
