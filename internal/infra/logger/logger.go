// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"

	"homework_status_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger: stdout plus an append-only rotating file.
// The returned closer releases the log file.
func New(cfg *config.AppConfig) (*logrus.Logger, io.Closer) {
	log := logrus.New()

	rotating := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotating))

	// Set Log Level
	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(level)
	}

	log.SetFormatter(formatterFor(cfg.Environment))

	log.Debugf("Log level set to: %s", log.GetLevel().String())
	log.Debugf("Log file: %s (max %d MB x %d backups)", cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
	return log, rotating
}

func formatterFor(environment string) logrus.Formatter {
	switch strings.ToLower(environment) {
	case "production", "staging":
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		}
	default:
		// Colors would end up in the log file as escape codes.
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   true,
		}
	}
}
