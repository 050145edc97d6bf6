package util

import (
	"go.uber.org/zap"
)

// NewLogger returns a development logger writing to stderr, so that tool
// output on stdout stays clean. The level can be raised or lowered later.
func NewLogger(level zap.AtomicLevel) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
