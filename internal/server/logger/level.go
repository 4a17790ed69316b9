package logger

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	TRACE = iota
	DEBUG
	INFO
	WARN
	ERROR
	FATAL
)

type LogLevel int

// ParseLevel maps a config string to a LogLevel, rejecting unknown names.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return TRACE, nil
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal", "panic":
		return FATAL, nil
	}
	return INFO, errors.Errorf("unknown log level %q", level)
}

// LevelFromString is ParseLevel with INFO as the fallback.
func LevelFromString(level string) LogLevel {
	l, err := ParseLevel(level)
	if err != nil {
		return INFO
	}
	return l
}

func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	}

	return "UNKNOWN"
}
