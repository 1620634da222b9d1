package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/orandin/lumberjackrus"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

type Options struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	// Console receives log lines in addition to the file; nil discards them.
	Console io.Writer
}

// New returns a run-scoped entry that appends to a rotating log file.
func New(opts Options) (*logrus.Entry, error) {
	level := logrus.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat, DisableColors: true})
	if opts.Console != nil {
		logger.SetOutput(opts.Console)
	} else {
		logger.SetOutput(io.Discard)
	}

	if opts.File != "" {
		hook, err := lumberjackrus.NewHook(
			&lumberjackrus.LogFile{
				Filename:   opts.File,
				MaxSize:    opts.MaxSizeMB,
				MaxBackups: opts.MaxBackups,
				Compress:   false,
				LocalTime:  true,
			},
			level,
			&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat, DisableColors: true},
			&lumberjackrus.LogFileOpts{},
		)
		if err != nil {
			return nil, fmt.Errorf("create log file hook: %w", err)
		}
		logger.AddHook(hook)
	}

	return logger.WithField("run_id", uuid.NewString()), nil
}
