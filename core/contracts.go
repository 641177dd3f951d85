package core

import (
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// ComponentLogger returns the named logger from provider, falling back to
// fallback (or a nop logger) when no provider is available.
func ComponentLogger(provider LoggerProvider, name string, fallback Logger) Logger {
	if provider != nil {
		if logger := provider.GetLogger(name); logger != nil {
			return logger
		}
	}
	return glog.Ensure(fallback)
}

// LogWithFields emits message through logger at the given level. Fields are
// attached as structured context when the logger supports it, and always
// carried as sorted key/value args.
func LogWithFields(logger Logger, level string, message string, fields map[string]any) {
	if logger == nil {
		return
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(CloneFields(fields))
	}
	args := FlattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}

// FlattenFields turns a field map into the sorted key/value arg list the
// logger contract expects.
func FlattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func CloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}
