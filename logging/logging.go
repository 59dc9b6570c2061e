// Package logging adapts structured loggers to batch.Logger.
//
//	zl, _ := zap.NewProduction()
//	d.WithLogger(logging.Zap(zl))
package logging

import (
	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/MasterOfBinary/debounce/batch"
)

type zapLogger struct {
	l *zap.SugaredLogger
}

// Zap returns a batch.Logger that writes to l. A nil l discards everything.
func Zap(l *zap.Logger) batch.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{l: l.Sugar()}
}

func (z *zapLogger) Debug(format string, args ...interface{}) { z.l.Debugf(format, args...) }
func (z *zapLogger) Info(format string, args ...interface{})  { z.l.Infof(format, args...) }
func (z *zapLogger) Warn(format string, args ...interface{})  { z.l.Warnf(format, args...) }
func (z *zapLogger) Error(format string, args ...interface{}) { z.l.Errorf(format, args...) }

type zerologLogger struct {
	l zerolog.Logger
}

// Zerolog returns a batch.Logger that writes to l.
func Zerolog(l zerolog.Logger) batch.Logger {
	return &zerologLogger{l: l}
}

func (z *zerologLogger) Debug(format string, args ...interface{}) { z.l.Debug().Msgf(format, args...) }
func (z *zerologLogger) Info(format string, args ...interface{})  { z.l.Info().Msgf(format, args...) }
func (z *zerologLogger) Warn(format string, args ...interface{})  { z.l.Warn().Msgf(format, args...) }
func (z *zerologLogger) Error(format string, args ...interface{}) { z.l.Error().Msgf(format, args...) }
