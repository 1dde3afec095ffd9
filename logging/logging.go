// Package logging adapts the teacher's utils.LogError/LogFatal caller-aware
// helpers to this watcher's ambient logging concern, and adds the
// InitLogger entrypoint its cmd/ binaries call at startup.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// Config controls InitLogger, mirroring the teacher's types.Config.Logging
// block (output level/destination plus an optional secondary file sink).
type Config struct {
	OutputLevel  string
	OutputFormat string // "text" (default) or "json"
	FilePath     string
	FileLevel    string
}

// InitLogger configures the root logrus logger from cfg and returns it.
// A FilePath additionally tees output to a log file, filtered by its own
// FileLevel. The file only sees entries that OutputLevel already lets
// through, so a FileLevel more verbose than OutputLevel adds nothing.
func InitLogger(cfg Config) (*logger.Logger, error) {
	root := logger.New()
	root.SetOutput(os.Stderr)

	level, err := parseLevel(cfg.OutputLevel, logger.InfoLevel)
	if err != nil {
		return nil, err
	}
	root.SetLevel(level)

	if cfg.OutputFormat == "json" {
		root.SetFormatter(&logger.JSONFormatter{})
	} else {
		root.SetFormatter(&logger.TextFormatter{FullTimestamp: true})
	}

	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %v: %w", cfg.FilePath, err)
		}
		fileLevel, err := parseLevel(cfg.FileLevel, level)
		if err != nil {
			return nil, err
		}
		root.AddHook(&fileHook{writer: f, level: fileLevel, formatter: root.Formatter})
	}

	return root, nil
}

func parseLevel(s string, def logger.Level) (logger.Level, error) {
	if s == "" {
		return def, nil
	}
	return logger.ParseLevel(s)
}

// fileHook tees every entry at least as severe as level to writer. It is
// fired only for entries the logger's own level has already let through.
type fileHook struct {
	writer    io.Writer
	level     logger.Level
	formatter logger.Formatter
}

func (h *fileHook) Levels() []logger.Level {
	return logger.AllLevels
}

func (h *fileHook) Fire(entry *logger.Entry) error {
	if entry.Level > h.level {
		return nil
	}
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}

// LogFatal logs a fatal error with callstack info that skips callerSkip
// many levels, with arbitrarily many additional fields.
// callerSkip equal to 0 gives info directly where LogFatal is called.
func LogFatal(err error, errorMsg interface{}, callerSkip int, additionalInfos ...map[string]interface{}) {
	logErrorInfo(err, callerSkip, additionalInfos...).Fatal(errorMsg)
}

// LogError logs an error with callstack info that skips callerSkip many
// levels, with arbitrarily many additional fields.
func LogError(err error, errorMsg interface{}, callerSkip int, additionalInfos ...map[string]interface{}) {
	logErrorInfo(err, callerSkip, additionalInfos...).Error(errorMsg)
}

func logErrorInfo(err error, callerSkip int, additionalInfos ...map[string]interface{}) *logger.Entry {
	logFields := logger.NewEntry(logger.New())

	pc, fullFilePath, line, ok := runtime.Caller(callerSkip + 2)
	if ok {
		logFields = logFields.WithFields(logger.Fields{
			"_file":     filepath.Base(fullFilePath),
			"_function": runtime.FuncForPC(pc).Name(),
			"_line":     line,
		})
	} else {
		logFields = logFields.WithField("runtime", "callstack cannot be read")
	}

	errColl := []string{}
	for {
		errColl = append(errColl, fmt.Sprint(err))
		nextErr := errors.Unwrap(err)
		if nextErr != nil {
			err = nextErr
		} else {
			break
		}
	}

	errMarkSign := "~"
	for idx := 0; idx < (len(errColl) - 1); idx++ {
		errInfoText := fmt.Sprintf("%serrInfo_%v%s", errMarkSign, idx, errMarkSign)
		nextErrInfoText := fmt.Sprintf("%serrInfo_%v%s", errMarkSign, idx+1, errMarkSign)
		if idx == (len(errColl) - 2) {
			nextErrInfoText = fmt.Sprintf("%serror%s", errMarkSign, errMarkSign)
		}

		lastIdx := strings.LastIndex(errColl[idx], errColl[idx+1])
		if lastIdx != -1 {
			errColl[idx] = errColl[idx][:lastIdx] + nextErrInfoText + errColl[idx][lastIdx+len(errColl[idx+1]):]
		}

		errInfoText = strings.ReplaceAll(errInfoText, errMarkSign, "")
		logFields = logFields.WithField(errInfoText, errColl[idx])
	}

	if err != nil {
		logFields = logFields.WithField("errType", fmt.Sprintf("%T", err)).WithError(err)
	}

	for _, infoMap := range additionalInfos {
		for name, info := range infoMap {
			logFields = logFields.WithField(name, info)
		}
	}

	return logFields
}
