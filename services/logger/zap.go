package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/darasa/core"
)

// NewZap builds the process-wide zap logger: JSON in production, colored console otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	var config zap.Config

	if conf.Debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.OutputPaths = []string{"stdout"}

	zl, err := config.Build()
	if err != nil {
		return nil, err
	}
	return zl.With(zap.String("app", conf.AppName), zap.String("env", conf.Env)), nil
}

// New returns the application logger, reporting to Rollbar outside debug mode.
func New(conf *core.Config) (*RollbarLogger, error) {
	zl, err := NewZap(conf)
	if err != nil {
		return nil, err
	}
	logger := NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger, nil
}
