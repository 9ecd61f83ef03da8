// Package logger holds the process-wide logger used by the carbon
// commands.
package logger

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the shared instance; commands configure it once at startup.
var Logger *log.Logger

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure applies the requested level and, for non-interactive
// output, switches to plain logfmt rendering.
func Configure(level string, interactive bool) {
	Logger.SetLevel(parseLevel(level))
	if !interactive {
		Logger.SetFormatter(log.LogfmtFormatter)
	}
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info", "":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
