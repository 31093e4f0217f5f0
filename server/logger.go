package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. initLogger must run before it is used.
var Log = logrus.New()

// initLogger configures Log from LOG_LEVEL (default info) and LOG_FORMAT
// ("json" for machine-readable output, colored text otherwise).
func initLogger() {
	level, err := logrus.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}
	Log.SetOutput(os.Stdout)
}
