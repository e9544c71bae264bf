package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Init builds the global logger. Production gets structured JSON output,
// anything else gets the human-readable development encoder.
func Init(env string) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	built, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	log = built
}

// L returns the global logger. Before Init is called (tests, mostly) it
// hands back a no-op logger.
func L() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
