package logging

import (
	"os"

	log "github.com/sirupsen/logrus"

	"housing-allocation-backend/config"
)

// Setup configures the process-wide logrus logger from the log section of the config.
func Setup(cfg config.LogConfig) {
	log.SetOutput(os.Stdout)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
