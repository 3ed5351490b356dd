package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewOperatorLogger builds the zap-backed logger the gate uses for
// phase-transition, warning, and blocked-verdict lines (spec §7). Debug
// mode surfaces per-stage detail; production mode keeps it to
// info/warn.
func NewOperatorLogger(debug bool) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
