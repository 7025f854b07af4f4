// Package logging builds the diagnostic logger.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w. Only errors are logged unless
// debug is set. Command output never goes through this logger.
func New(debug bool, w io.Writer) *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core).Named("evotodo")
}
