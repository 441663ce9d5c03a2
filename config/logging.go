package config

import (
	"strings"

	"github.com/labstack/gommon/log"
)

// ParseLogLevel maps debug/info/warn/error/off to a log level. Unknown values mean info.
func ParseLogLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// SetupLogging configures the global logger
func SetupLogging(level string) {
	log.SetHeader("${time_rfc3339} ${level}")
	log.SetLevel(ParseLogLevel(level))
}
