package testutil

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/trezcool/darasa/core"
	logsvc "github.com/trezcool/darasa/services/logger"
)

// NewLogger returns a logger writing to t, with Rollbar disabled.
func NewLogger(t *testing.T) core.Logger {
	logger := logsvc.NewRollbarLogger(zaptest.NewLogger(t), &core.Config{Env: "test"})
	logger.Enable(false)
	return logger
}
