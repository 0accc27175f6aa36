package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"blobqueue/model"
)

// New builds the process logger from the log section of the config.
func New(cfg model.Log) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	switch cfg.Level {
	case "debug":
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zc.Development = true
	case "warn":
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zc.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}
