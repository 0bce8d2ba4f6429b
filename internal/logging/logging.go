package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select the encoder and destination of the process logger.
type Options struct {
	Debug bool
	// File receives log output instead of stderr. Interactive screens set it
	// so log lines don't tear the rendered form.
	File string
	// Gate, when set, can divert output away from stderr later on.
	Gate *Gate
}

// New returns the process logger. Debug switches to the console encoder at
// debug level; otherwise JSON at warn level.
func New(opt Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opt.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	out := "stderr"
	if opt.File != "" {
		out = opt.File
	}
	cfg.OutputPaths = []string{out}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if opt.Gate == nil {
		return cfg.Build()
	}
	opt.Gate.level = cfg.Level
	opt.Gate.enc = cfg.EncoderConfig
	return cfg.Build(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return &gateCore{Core: c, gate: opt.Gate}
	}))
}
