// Package logging builds the shared structured logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger configured from the LOG_LEVEL environment variable.
// An unset or unparsable level means Info.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if level, err := logrus.ParseLevel(raw); err == nil {
			log.SetLevel(level)
		}
	}
	return log
}
