package killboard

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	debugOut = os.Stdout
	errorOut = os.Stderr
)

// LogOut implements zerolog.LevelWriter
type LogOut struct{}

// Write should not be called
func (l LogOut) Write(p []byte) (n int, err error) {
	return os.Stdout.Write(p)
}

// WriteLevel write to the appropriate output
func (l LogOut) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	if level < zerolog.WarnLevel {
		return debugOut.Write(p)
	} else {
		return errorOut.Write(p)
	}
}

// NewLogger builds the process logger, debug-level outside production.
func NewLogger(environment string) zerolog.Logger {
	if environment == EnvironmentProduction {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	return log.Output(LogOut{})
}
